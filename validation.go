package credcrypt

import (
	"fmt"
)

// ValidateBlob checks that blob is at least long enough to hold an IV. A nil
// blob is treated as empty.
func ValidateBlob(blob []byte, ivSize int) error {
	if len(blob) < ivSize {
		return &ValidationError{
			Kind:    ErrMalformedBlob,
			Field:   "blob",
			Value:   len(blob),
			Message: fmt.Sprintf("blob too short: got %d bytes, need at least %d bytes", len(blob), ivSize),
		}
	}
	return nil
}

// ValidateKey checks if a key has the correct size
func ValidateKey(key []byte, expectedSize int) error {
	if key == nil {
		return &ValidationError{
			Field:   "key",
			Message: "key cannot be nil",
			Err:     ErrInvalidKey,
		}
	}

	if len(key) != expectedSize {
		return &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: fmt.Sprintf("invalid key size: got %d bytes, expected %d bytes", len(key), expectedSize),
			Err:     ErrInvalidKey,
		}
	}

	return nil
}

// ValidateObjectKey checks that an object key names something
func ValidateObjectKey(key string) error {
	if key == "" {
		return &ValidationError{
			Field:   "key",
			Message: "object key cannot be empty",
			Err:     ErrEmptyObjectKey,
		}
	}
	return nil
}
