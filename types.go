package credcrypt

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	// KeySize is the size of an AES-256 key in bytes
	KeySize = 32

	// IVSize is the size of the CBC initialization vector in bytes
	IVSize = 16

	// BlockSize is the AES block size; ciphertext is always a multiple of it
	BlockSize = 16
)

// CipherSuite represents the encryption algorithm used for blobs
type CipherSuite uint8

const (
	// CipherAES256CBC uses AES-256 in CBC mode with PKCS#7 padding
	CipherAES256CBC CipherSuite = iota
)

// String returns the string representation of the cipher suite
func (c CipherSuite) String() string {
	switch c {
	case CipherAES256CBC:
		return "aes-256-cbc"
	default:
		return "unknown"
	}
}

// Key is the process-wide symmetric key. It is a value type so a derived key
// cannot be mutated through a shared slice.
type Key [KeySize]byte

// Bytes returns a copy of the key material
func (k Key) Bytes() []byte {
	b := make([]byte, KeySize)
	copy(b, k[:])
	return b
}

// Fingerprint returns a short, non-reversible identifier for the key that is
// safe to log.
func (k Key) Fingerprint() string {
	sum := sha256.Sum256(k[:])
	return hex.EncodeToString(sum[:8])
}

// String never prints key material.
func (k Key) String() string {
	return "Key(" + k.Fingerprint() + ")"
}

// GoString keeps %#v from dumping the raw array.
func (k Key) GoString() string {
	return k.String()
}

// Info describes the codec parameters
type Info struct {
	Algorithm string `json:"algorithm"`
	KeyLength int    `json:"keyLength"`
	IVLength  int    `json:"ivLength"`
}
