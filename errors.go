package credcrypt

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of
// these through errors.Is, so callers can map them to status codes without
// inspecting messages.
var (
	// ErrUnsupportedFileType is returned when an upload's extension is not allowed
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrNoFileProvided is returned when a request carries no file
	ErrNoFileProvided = errors.New("no file uploaded")
	// ErrMalformedBlob is returned when the input is too short to hold an IV
	ErrMalformedBlob = errors.New("malformed encrypted blob")
	// ErrCipherFailure is returned when decryption fails. A wrong key and a
	// corrupted blob both end up here; CBC padding is the only signal and
	// there is no integrity tag to tell them apart.
	ErrCipherFailure = errors.New("cipher failure - wrong key or corrupted data")
	// ErrRemoteFetchFailure is returned when the object store cannot be read
	ErrRemoteFetchFailure = errors.New("remote fetch failed")
	// ErrObjectNotFound is returned by object stores for missing objects. It is
	// always wrapped in a FetchError by the gateway.
	ErrObjectNotFound = errors.New("object not found")
)

// Common sentinel errors
var (
	ErrInvalidKey     = errors.New("invalid encryption key")
	ErrNilStore       = errors.New("object store cannot be nil")
	ErrNilCodec       = errors.New("codec cannot be nil")
	ErrEmptyObjectKey = errors.New("object key cannot be empty")
	ErrNilObject      = errors.New("object store returned no object")
)

// EncryptionError operations
const (
	OpEncrypt = "encrypt"
	OpDecrypt = "decrypt"
	// OpResolve is the decryption of an object read back from a store
	OpResolve = "resolve"
)

// ValidationError represents a rejected input, such as an upload with a
// disallowed extension or a missing file
type ValidationError struct {
	Kind    error  // One of the Err* kinds
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// EncryptionError represents an encryption or decryption failure
type EncryptionError struct {
	Kind      error  // ErrMalformedBlob or ErrCipherFailure
	Operation string // OpEncrypt, OpDecrypt or OpResolve
	Path      string // Object key or file name, if applicable
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *EncryptionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error: %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Operation, e.Message)
}

func (e *EncryptionError) Unwrap() error {
	return e.Err
}

func (e *EncryptionError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// FetchError represents an object store access failure. It always matches
// ErrRemoteFetchFailure and unwraps to the store's own error, so
// errors.Is(err, ErrObjectNotFound) keeps working for missing objects.
type FetchError struct {
	Operation string // "get", "head", "put" or "resolve"
	Bucket    string
	Key       string
	Err       error
}

func (e *FetchError) Error() string {
	if e.Bucket != "" {
		return fmt.Sprintf("fetch error: %s %s/%s: %v", e.Operation, e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("fetch error: %s %s: %v", e.Operation, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrRemoteFetchFailure
}

// Helper functions for creating structured errors

// NewValidationError creates a new validation error of the given kind
func NewValidationError(kind error, field string, value any, message string) error {
	return &ValidationError{
		Kind:    kind,
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewEncryptionError creates a new encryption error of the given kind
func NewEncryptionError(kind error, operation, path string, err error) error {
	msg := kind.Error()
	if err != nil {
		msg = err.Error()
	}
	return &EncryptionError{
		Kind:      kind,
		Operation: operation,
		Path:      path,
		Message:   msg,
		Err:       err,
	}
}

// NewFetchError creates a new remote fetch error
func NewFetchError(operation string, ref ObjectRef, err error) error {
	return &FetchError{
		Operation: operation,
		Bucket:    ref.Bucket,
		Key:       ref.Key,
		Err:       err,
	}
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsEncryptionError checks if an error is an encryption error
func IsEncryptionError(err error) bool {
	var ee *EncryptionError
	return errors.As(err, &ee)
}

// IsFetchError checks if an error is a remote fetch error
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsUnsupportedFileType reports whether err was caused by the extension allow-list
func IsUnsupportedFileType(err error) bool {
	return errors.Is(err, ErrUnsupportedFileType)
}

// IsMalformedBlob reports whether err was caused by a too-short blob
func IsMalformedBlob(err error) bool {
	return errors.Is(err, ErrMalformedBlob)
}

// IsCipherFailure reports whether err was caused by a failed decryption
func IsCipherFailure(err error) bool {
	return errors.Is(err, ErrCipherFailure)
}

// IsRemoteFetchFailure reports whether err was caused by the object store
func IsRemoteFetchFailure(err error) bool {
	return errors.Is(err, ErrRemoteFetchFailure)
}
