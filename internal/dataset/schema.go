package dataset

import (
	"fmt"
	"strings"

	contextutils "notlikethat/internal/utils"

	"github.com/xeipuuv/gojsonschema"
)

// maxReportedSchemaErrors caps how many violations end up in an error message
const maxReportedSchemaErrors = 5

// SchemaValidator checks raw dataset JSON against the list schema
type SchemaValidator struct {
	schema *gojsonschema.Schema
}

// NewSchemaValidator compiles the embedded list schema
func NewSchemaValidator() (*SchemaValidator, error) {
	raw, err := dataFS.ReadFile("data/schema.json")
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to read dataset schema")
	}
	return NewSchemaValidatorFromBytes(raw)
}

// NewSchemaValidatorFromBytes compiles a JSON schema document
func NewSchemaValidatorFromBytes(raw []byte) (*SchemaValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to compile dataset schema")
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate reports an ErrDatasetInvalid error when data does not match the schema
func (v *SchemaValidator) Validate(data []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		// Malformed JSON surfaces here rather than as a result error
		return contextutils.WrapErrorf(contextutils.ErrDatasetInvalid, "dataset is not valid JSON: %v", err)
	}

	if !result.Valid() {
		var validationErrors []string
		for i, validationErr := range result.Errors() {
			if i == maxReportedSchemaErrors {
				validationErrors = append(validationErrors, fmt.Sprintf("and %d more", len(result.Errors())-i))
				break
			}
			validationErrors = append(validationErrors, fmt.Sprintf("%s: %s", validationErr.Field(), validationErr.Description()))
		}
		return contextutils.WrapErrorf(contextutils.ErrDatasetInvalid, "schema validation failed: %s", strings.Join(validationErrors, "; "))
	}

	return nil
}
