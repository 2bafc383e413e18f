package credcrypt

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Codec turns buffers into encrypted blobs and back.
//
// Blob layout: IV (16 bytes) || AES-256-CBC ciphertext (PKCS#7 padded).
// There is no header, version byte, length prefix or integrity tag; the
// algorithm and key must be known by whoever decrypts.
//
// A Codec holds no mutable state and is safe for concurrent use.
type Codec struct {
	engine CipherEngine
	suite  CipherSuite
	random io.Reader
}

// NewCodec creates a codec bound to key
func NewCodec(key Key) (*Codec, error) {
	if err := ValidateKey(key[:], KeySize); err != nil {
		return nil, err
	}
	engine, err := NewAESCBCEngine(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher engine: %w", err)
	}
	return newCodecWithEngine(engine, rand.Reader), nil
}

// NewCodecFromProvider resolves the key from provider and creates a codec
func NewCodecFromProvider(provider KeyProvider) (*Codec, Key, error) {
	if provider == nil {
		return nil, Key{}, ErrInvalidKey
	}
	key, err := provider.ResolveKey()
	if err != nil {
		return nil, Key{}, fmt.Errorf("failed to resolve key: %w", err)
	}
	codec, err := NewCodec(key)
	if err != nil {
		return nil, Key{}, err
	}
	return codec, key, nil
}

func newCodecWithEngine(engine CipherEngine, random io.Reader) *Codec {
	return &Codec{
		engine: engine,
		suite:  CipherAES256CBC,
		random: random,
	}
}

// Encrypt returns IV || ciphertext for plaintext. Every call draws a fresh
// IV, so encrypting the same input twice gives different blobs.
func (c *Codec) Encrypt(plaintext []byte) ([]byte, error) {
	iv := make([]byte, c.engine.IVSize())
	if _, err := io.ReadFull(c.random, iv); err != nil {
		return nil, NewEncryptionError(ErrCipherFailure, OpEncrypt, "", fmt.Errorf("failed to generate iv: %w", err))
	}

	ciphertext, err := c.engine.Encrypt(iv, plaintext)
	if err != nil {
		return nil, NewEncryptionError(ErrCipherFailure, OpEncrypt, "", err)
	}

	blob := make([]byte, 0, len(iv)+len(ciphertext))
	blob = append(blob, iv...)
	return append(blob, ciphertext...), nil
}

// Decrypt reverses Encrypt. Inputs shorter than the IV fail with
// ErrMalformedBlob; everything the cipher rejects fails with ErrCipherFailure.
func (c *Codec) Decrypt(blob []byte) ([]byte, error) {
	return c.decrypt(blob, OpDecrypt, "")
}

func (c *Codec) decrypt(blob []byte, op, path string) ([]byte, error) {
	if err := ValidateBlob(blob, c.engine.IVSize()); err != nil {
		return nil, NewEncryptionError(ErrMalformedBlob, op, path, err)
	}

	ivSize := c.engine.IVSize()
	plaintext, err := c.engine.Decrypt(blob[:ivSize], blob[ivSize:])
	if err != nil {
		return nil, NewEncryptionError(ErrCipherFailure, op, path, err)
	}
	return plaintext, nil
}

// Describe returns the codec parameters
func (c *Codec) Describe() Info {
	return Info{
		Algorithm: c.suite.String(),
		KeyLength: KeySize,
		IVLength:  c.engine.IVSize(),
	}
}

// LooksEncrypted reports whether buf is long enough to be a blob. It is a
// length heuristic only; decryption decisions must come from object metadata.
func LooksEncrypted(buf []byte) bool {
	return len(buf) > IVSize
}
