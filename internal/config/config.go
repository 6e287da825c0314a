// Package config handles application configuration loading from YAML and environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	contextutils "notlikethat/internal/utils"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable pointing at the YAML config file
const ConfigFileEnv = "NOTLIKETHAT_CONFIG_FILE"

// Config holds all configuration for the application
type Config struct {
	// Widget behaviour
	App AppConfig `json:"app" yaml:"app"`

	// Key-value store backing the daily records
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Where the misconception lists come from
	Dataset DatasetConfig `json:"dataset" yaml:"dataset"`

	// OpenTelemetry Configuration
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`

	// Internal fields
	IsTest bool `json:"is_test" yaml:"is_test"`
}

// AppConfig represents user-facing settings
type AppConfig struct {
	// Language forces a dataset language; empty means detect from the environment
	Language string `json:"language" yaml:"language" validate:"omitempty,oneof=en es"`
	// Timezone is the IANA zone used to decide the calendar day; empty means local
	Timezone  string `json:"timezone" yaml:"timezone"`
	LogLevel  string `json:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	SiteURL   string `json:"site_url" yaml:"site_url" validate:"omitempty,url"`
	TextClamp int    `json:"text_clamp" yaml:"text_clamp" validate:"gte=0"`
	// RefreshSchedule is the cron spec that triggers a new selection in watch mode
	RefreshSchedule string `json:"refresh_schedule" yaml:"refresh_schedule"`
}

// StorageConfig represents the key-value store configuration
type StorageConfig struct {
	Driver          string        `json:"driver" yaml:"driver" validate:"oneof=memory sqlite postgres"`
	Path            string        `json:"path" yaml:"path"`
	URL             string        `json:"url" yaml:"url" validate:"required_if=Driver postgres"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`       // Maximum number of open connections to the database
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`       // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"` // Maximum amount of time a connection may be reused
	AutoMigrate     bool          `json:"auto_migrate" yaml:"auto_migrate"`
}

// DatasetConfig represents where item lists are loaded from
type DatasetConfig struct {
	Source  string        `json:"source" yaml:"source" validate:"oneof=embedded dir http"`
	Dir     string        `json:"dir" yaml:"dir" validate:"required_if=Source dir"`
	BaseURL string        `json:"base_url" yaml:"base_url" validate:"required_if=Source http,omitempty,url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OpenTelemetryConfig holds all OpenTelemetry-related configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`               // Default: "localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"`               // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`               // Default: true (for localhost)
	Headers        map[string]string `json:"headers" yaml:"headers"`                 // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`       // Default: "notlikethat"
	ServiceVersion string            `json:"service_version" yaml:"service_version"` // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"` // Default: 1.0 (100%)
	UseAutoSDK     bool              `json:"use_auto_sdk" yaml:"use_auto_sdk"`
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables
func NewConfig() (result0 *Config, err error) {
	// Load config from YAML file
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	// Override with environment variables
	config.overrideFromEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns a configuration with every default applied and no file or environment input.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Validate checks the struct tags of every section
func (c *Config) Validate() error {
	if err := contextutils.ValidateStruct(c); err != nil {
		return contextutils.WrapError(err, "invalid configuration")
	}
	return nil
}

// Location resolves App.Timezone, falling back to the local zone.
func (c *Config) Location() (*time.Location, error) {
	return contextutils.LoadLocationOrLocal(c.App.Timezone)
}

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = DefaultLogLevel
	}
	if c.App.SiteURL == "" {
		c.App.SiteURL = DefaultSiteURL
	}
	if c.App.TextClamp == 0 {
		c.App.TextClamp = DefaultTextClamp
	}
	if c.App.RefreshSchedule == "" {
		c.App.RefreshSchedule = DefaultRefreshSchedule
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Storage.Driver == "sqlite" && c.Storage.Path == "" {
		c.Storage.Path = DefaultStatePath()
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = DefaultMaxOpenConns
	}
	if c.Storage.MaxIdleConns == 0 {
		c.Storage.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.Storage.ConnMaxLifetime == 0 {
		c.Storage.ConnMaxLifetime = DatabaseConnMaxLifetime
	}

	if c.Dataset.Source == "" {
		c.Dataset.Source = DefaultDatasetSource
	}
	if c.Dataset.Timeout == 0 {
		c.Dataset.Timeout = DatasetFetchTimeout
	}

	if c.OpenTelemetry.Endpoint == "" {
		c.OpenTelemetry.Endpoint = DefaultOTLPEndpoint
	}
	if c.OpenTelemetry.Protocol == "" {
		c.OpenTelemetry.Protocol = "grpc"
	}
	if c.OpenTelemetry.ServiceName == "" {
		c.OpenTelemetry.ServiceName = ServiceName
	}
	if c.OpenTelemetry.SamplingRate == 0 {
		c.OpenTelemetry.SamplingRate = 1.0
	}
}

// DefaultStatePath returns the sqlite file used when storage.path is empty
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "notlikethat.db"
	}
	return filepath.Join(dir, "notlikethat", "state.db")
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnv(c)
}

// overrideStructFromEnv recursively overrides struct fields with environment variables
func overrideStructFromEnv(v interface{}) {
	overrideStructFromEnvWithPrefix(v, "")
}

var durationType = reflect.TypeOf(time.Duration(0))

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		// Get the yaml tag for the field
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Convert yaml tag to environment variable name
		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		if field.Type() == durationType {
			if envVal := os.Getenv(envKey); envVal != "" {
				if d, err := time.ParseDuration(envVal); err == nil {
					field.SetInt(int64(d))
				}
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if uintVal, err := strconv.ParseUint(envVal, 10, 64); err == nil {
					field.SetUint(uintVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				if field.Type().Elem().Kind() == reflect.String {
					slice := strings.Split(envVal, ",")
					field.Set(reflect.ValueOf(slice))
				}
			}
		case reflect.Struct:
			// Recursively process nested structs with the field name as prefix
			if field.CanAddr() {
				fieldPrefix := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
				if prefix != "" {
					fieldPrefix = prefix + "_" + fieldPrefix
				}
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), fieldPrefix)
			}
		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				fieldPrefix := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
				if prefix != "" {
					fieldPrefix = prefix + "_" + fieldPrefix
				}
				overrideStructFromEnvWithPrefix(field.Interface(), fieldPrefix)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file named by ConfigFileEnv, or config.yaml.
// A missing default config.yaml is not an error; the widget runs on defaults.
func loadConfigWithOverrides() (result0 *Config, err error) {
	if envPath := os.Getenv(ConfigFileEnv); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	config, err := loadConfigFromFile("config.yaml")
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return config, err
}

// LoadFile loads configuration from path and applies environment overrides and defaults.
// Used by the --config flag.
func LoadFile(path string) (*Config, error) {
	config, err := loadConfigFromFile(path)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", path, err)
	}
	config.overrideFromEnv()
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
