package credcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

// CipherEngine provides block encryption/decryption with an explicit IV
type CipherEngine interface {
	// Encrypt pads and encrypts plaintext with the given IV
	Encrypt(iv, plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext with the given IV and strips the padding
	Decrypt(iv, ciphertext []byte) ([]byte, error)

	// IVSize returns the size of IVs in bytes
	IVSize() int
}

var (
	errBlockMultiple  = errors.New("ciphertext is not a multiple of the block size")
	errEmptyBlock     = errors.New("ciphertext is empty")
	errInvalidPadding = errors.New("invalid padding")
)

// AESCBCEngine implements CipherEngine using AES-256-CBC with PKCS#7 padding
type AESCBCEngine struct {
	block cipher.Block
}

// NewAESCBCEngine creates a new AES-256-CBC cipher engine
func NewAESCBCEngine(key []byte) (*AESCBCEngine, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("AES-256 requires a %d-byte key, got %d bytes", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	return &AESCBCEngine{block: block}, nil
}

// Encrypt encrypts plaintext using AES-256-CBC
func (e *AESCBCEngine) Encrypt(iv, plaintext []byte) ([]byte, error) {
	if len(iv) != e.IVSize() {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", e.IVSize(), len(iv))
	}

	padded := pkcs7Pad(plaintext, e.block.BlockSize())
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(e.block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// Decrypt decrypts ciphertext using AES-256-CBC
func (e *AESCBCEngine) Decrypt(iv, ciphertext []byte) ([]byte, error) {
	if len(iv) != e.IVSize() {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", e.IVSize(), len(iv))
	}
	if len(ciphertext) == 0 {
		return nil, errEmptyBlock
	}
	if len(ciphertext)%e.block.BlockSize() != 0 {
		return nil, errBlockMultiple
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(e.block, iv).CryptBlocks(plaintext, ciphertext)
	return pkcs7Unpad(plaintext, e.block.BlockSize())
}

// IVSize returns the IV size for AES-CBC (16 bytes)
func (e *AESCBCEngine) IVSize() int {
	return e.block.BlockSize()
}

// pkcs7Pad always appends between 1 and blockSize bytes, so an empty input
// becomes one full block.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errBlockMultiple
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}
