package httperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/absfs/credcrypt"
	"github.com/labstack/echo/v4"
)

// HTTPError is an error with the status and public message sent to clients.
// Internal keeps the cause for logging only.
type HTTPError struct {
	Code     int
	Message  string
	Internal error
}

func (e *HTTPError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("HTTPError %d (%s): %v", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("HTTPError %d (%s)", e.Code, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// Body is the JSON error payload
type Body struct {
	Error string `json:"error"`
}

// NewHTTPError creates an HTTPError
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

// Wrap attaches a cause to a copy of e
func (e *HTTPError) Wrap(err error) *HTTPError {
	return &HTTPError{Code: e.Code, Message: e.Message, Internal: err}
}

var (
	ErrNoFileProvided      = NewHTTPError(http.StatusBadRequest, "No file uploaded")
	ErrUnsupportedFileType = NewHTTPError(http.StatusBadRequest, "Unsupported file type")
	ErrMalformedBlob       = NewHTTPError(http.StatusBadRequest, "Invalid encrypted file")
	ErrDecryptFailed       = NewHTTPError(http.StatusBadRequest, "Failed to decrypt file")
	ErrMissingObjectKey    = NewHTTPError(http.StatusBadRequest, "Object key is required")
	ErrObjectNotFound      = NewHTTPError(http.StatusNotFound, "File not found")
	ErrFileTooLarge        = NewHTTPError(http.StatusRequestEntityTooLarge, "File is too large")
	ErrRemoteFetch         = NewHTTPError(http.StatusBadGateway, "Failed to download file")
	ErrEncryptFailed       = NewHTTPError(http.StatusInternalServerError, "Failed to encrypt file")
	ErrStoredFileCorrupt   = NewHTTPError(http.StatusInternalServerError, "Stored file could not be decrypted")
	ErrInternal            = NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
)

// FromError maps any handler error to the response sent to the client. The
// order matters: not-found is checked before the generic fetch failure it is
// wrapped in.
func FromError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg := http.StatusText(echoErr.Code)
		if s, ok := echoErr.Message.(string); ok && s != "" {
			msg = s
		}
		return &HTTPError{Code: echoErr.Code, Message: msg, Internal: err}
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return ErrFileTooLarge.Wrap(err)
	}

	// Only blobs supplied by the client are the client's fault.
	var encErr *credcrypt.EncryptionError
	if errors.As(err, &encErr) {
		switch encErr.Operation {
		case credcrypt.OpEncrypt:
			return ErrEncryptFailed.Wrap(err)
		case credcrypt.OpResolve:
			return ErrStoredFileCorrupt.Wrap(err)
		}
	}

	switch {
	case errors.Is(err, credcrypt.ErrNoFileProvided):
		return ErrNoFileProvided.Wrap(err)
	case errors.Is(err, credcrypt.ErrUnsupportedFileType):
		return ErrUnsupportedFileType.Wrap(err)
	case errors.Is(err, credcrypt.ErrMalformedBlob):
		return ErrMalformedBlob.Wrap(err)
	case errors.Is(err, credcrypt.ErrCipherFailure):
		return ErrDecryptFailed.Wrap(err)
	case errors.Is(err, credcrypt.ErrEmptyObjectKey):
		return ErrMissingObjectKey.Wrap(err)
	case errors.Is(err, credcrypt.ErrObjectNotFound):
		return ErrObjectNotFound.Wrap(err)
	case errors.Is(err, credcrypt.ErrRemoteFetchFailure):
		return ErrRemoteFetch.Wrap(err)
	default:
		return ErrInternal.Wrap(err)
	}
}
