package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for storage operations.
var (
	// ErrStorage matches every *Error.
	ErrStorage = errors.New("storage operation failed")

	ErrInvalidTTL     = errors.New("invalid link expiry")
	ErrInvalidConfig  = errors.New("invalid storage configuration")
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrForeignLocator = errors.New("locator is outside the storage directory")
)

// Error describes a failed upload, presign or delete.
type Error struct {
	Op     string // "init", "put", "presign", "delete"
	Bucket string // empty for the local backend
	Key    string
	Err    error
}

func (e *Error) Error() string {
	target := e.Key
	if e.Bucket != "" {
		target = "s3://" + e.Bucket + "/" + e.Key
	}
	if target == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrStorage }
