// Package store provides the key-value persistence used by the daily selector and the streak tracker.
package store

import (
	"context"
	"fmt"

	contextutils "notlikethat/internal/utils"
)

// KeyValueStore persists JSON-serializable values by string key.
// Implementations return *StorageError on failure; callers choose the fallback.
type KeyValueStore interface {
	// Get decodes the value stored under key into dst. found is false when the key is absent.
	Get(ctx context.Context, key string, dst any) (found bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value any) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases the underlying resources.
	Close() error
}

// Lister is implemented by stores that can enumerate their keys
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// StorageError describes a failed store operation
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap exposes the cause.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches contextutils.ErrStorageFailure so callers can use errors.Is.
// Decode failures also match contextutils.ErrStorageDecode.
func (e *StorageError) Is(target error) bool {
	appErr, ok := target.(*contextutils.AppError)
	if !ok {
		return false
	}
	if appErr.Code == contextutils.ErrorCodeStorageFailure {
		return true
	}
	return appErr.Code == contextutils.ErrorCodeStorageDecode && e.Op == OpDecode
}

// Store operations reported in StorageError.Op
const (
	OpGet    = "get"
	OpSet    = "set"
	OpRemove = "remove"
	OpDecode = "decode"
	OpEncode = "encode"
	OpKeys   = "keys"
)

func newStorageError(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

// GetOr reads key into a T. When the key is absent the fallback is returned with a nil error;
// when the read fails the fallback is returned together with the error.
func GetOr[T any](ctx context.Context, kv KeyValueStore, key string, fallback T) (T, error) {
	var v T
	found, err := kv.Get(ctx, key, &v)
	if err != nil {
		return fallback, err
	}
	if !found {
		return fallback, nil
	}
	return v, nil
}
