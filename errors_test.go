package credcrypt

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &ValidationError{
				Field:   "file",
				Value:   "notes.txt",
				Message: "unsupported file type",
			},
			wantMsg: "validation error: file: unsupported file type",
		},
		{
			name: "without field",
			err: &ValidationError{
				Message: "no file uploaded",
			},
			wantMsg: "validation error: no file uploaded",
		},
		{
			name: "with wrapped error",
			err: &ValidationError{
				Field:   "key",
				Message: "invalid key",
				Err:     ErrInvalidKey,
			},
			wantMsg: "validation error: key: invalid key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
			if unwrapped := tt.err.Unwrap(); unwrapped != tt.err.Err {
				t.Errorf("ValidationError.Unwrap() = %v, want %v", unwrapped, tt.err.Err)
			}
		})
	}
}

func TestValidationError_Kind(t *testing.T) {
	err := NewValidationError(ErrUnsupportedFileType, "file", "a.exe", "unsupported file type")

	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Error("expected errors.Is to match the kind")
	}
	if errors.Is(err, ErrNoFileProvided) {
		t.Error("kind should not match other kinds")
	}
	if !IsValidationError(err) || !IsUnsupportedFileType(err) {
		t.Error("helpers should recognise the error")
	}

	// Without a kind nothing matches through Is.
	plain := &ValidationError{Message: "x"}
	if errors.Is(plain, ErrUnsupportedFileType) {
		t.Error("kindless validation error should not match")
	}
}

func TestEncryptionError(t *testing.T) {
	cause := errors.New("invalid padding")

	tests := []struct {
		name    string
		err     error
		wantMsg string
		kind    error
	}{
		{
			name:    "with path",
			err:     NewEncryptionError(ErrCipherFailure, "decrypt", "certs/a.cer", cause),
			wantMsg: "decrypt error: certs/a.cer: invalid padding",
			kind:    ErrCipherFailure,
		},
		{
			name:    "without path",
			err:     NewEncryptionError(ErrCipherFailure, "encrypt", "", cause),
			wantMsg: "encrypt error: invalid padding",
			kind:    ErrCipherFailure,
		},
		{
			name:    "kind message when no cause",
			err:     NewEncryptionError(ErrMalformedBlob, "decrypt", "", nil),
			wantMsg: "decrypt error: " + ErrMalformedBlob.Error(),
			kind:    ErrMalformedBlob,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("expected errors.Is(err, %v)", tt.kind)
			}
			if !IsEncryptionError(tt.err) {
				t.Error("IsEncryptionError() = false")
			}
		})
	}

	if !errors.Is(NewEncryptionError(ErrCipherFailure, "decrypt", "", cause), cause) {
		t.Error("cause should be reachable through Unwrap")
	}
}

func TestFetchError(t *testing.T) {
	ref := ObjectRef{Bucket: "creds", Key: "a.cer"}

	notFound := NewFetchError("get", ref, fmt.Errorf("s3: %w", ErrObjectNotFound))
	if got, want := notFound.Error(), "fetch error: get creds/a.cer: s3: object not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(notFound, ErrRemoteFetchFailure) {
		t.Error("fetch errors always match ErrRemoteFetchFailure")
	}
	if !errors.Is(notFound, ErrObjectNotFound) {
		t.Error("not found cause should be reachable")
	}
	if !IsFetchError(notFound) || !IsRemoteFetchFailure(notFound) {
		t.Error("helpers should recognise the error")
	}

	noBucket := NewFetchError("head", ObjectRef{Key: "a.cer"}, errors.New("timeout"))
	if got, want := noBucket.Error(), "fetch error: head a.cer: timeout"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	kinds := []error{
		ErrUnsupportedFileType,
		ErrNoFileProvided,
		ErrMalformedBlob,
		ErrCipherFailure,
		ErrRemoteFetchFailure,
	}
	for i, a := range kinds {
		for j, b := range kinds {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}
