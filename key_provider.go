package credcrypt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

// SecretEnvVar is the environment variable holding the process-wide secret
const SecretEnvVar = "ENCRYPTION_SECRET_KEY"

// KeyProvider resolves the process-wide key
type KeyProvider interface {
	// ResolveKey returns the key to inject into the codec
	ResolveKey() (Key, error)
}

// DeriveKey turns a configured textual secret into a key.
//
// A secret of exactly 64 hex characters is decoded as the key itself. Any
// other non-empty secret is hashed with SHA-256. An empty secret yields a
// random key and logs a warning: blobs encrypted with it cannot be decrypted
// after the process restarts.
func DeriveKey(secret string) Key {
	if secret == "" {
		return insecureRandomKey()
	}
	if len(secret) == 2*KeySize {
		if raw, err := hex.DecodeString(secret); err == nil {
			var k Key
			copy(k[:], raw)
			return k
		}
	}
	return sha256.Sum256([]byte(secret))
}

// DeriveKeyFromBytes turns raw secret bytes into a key. Exactly 32 bytes are
// used unchanged, other non-empty inputs are hashed with SHA-256, and an empty
// input falls back to a random key like DeriveKey.
func DeriveKeyFromBytes(raw []byte) Key {
	if len(raw) == 0 {
		return insecureRandomKey()
	}
	if len(raw) == KeySize {
		var k Key
		copy(k[:], raw)
		return k
	}
	return sha256.Sum256(raw)
}

// GenerateKey returns a fresh random key
func GenerateKey() Key {
	var k Key
	// crypto/rand.Read never returns an error on supported platforms
	_, _ = rand.Read(k[:])
	return k
}

func insecureRandomKey() Key {
	zap.L().Warn("using a random encryption key; set " + SecretEnvVar +
		" for production, every blob encrypted by this process becomes unrecoverable after restart")
	return GenerateKey()
}

// SecretKeyProvider implements KeyProvider with DeriveKey
type SecretKeyProvider struct {
	secret string
}

// NewSecretKeyProvider creates a provider for a configured secret, which may be empty
func NewSecretKeyProvider(secret string) *SecretKeyProvider {
	return &SecretKeyProvider{secret: secret}
}

// ResolveKey derives the key; it never fails
func (p *SecretKeyProvider) ResolveKey() (Key, error) {
	return DeriveKey(p.secret), nil
}

// Argon2idParams contains parameters for Argon2id key derivation
type Argon2idParams struct {
	Memory      uint32 // Memory in KiB (e.g., 64*1024 for 64MB)
	Iterations  uint32 // Number of iterations (time parameter)
	Parallelism uint8  // Degree of parallelism
}

// Argon2idKeyProvider stretches a passphrase with Argon2id. The salt is fixed
// by configuration so every process derives the same key.
type Argon2idKeyProvider struct {
	passphrase []byte
	salt       []byte
	params     Argon2idParams
}

// NewArgon2idKeyProvider creates a new passphrase-based key provider
func NewArgon2idKeyProvider(passphrase, salt []byte, params Argon2idParams) *Argon2idKeyProvider {
	// Set defaults
	if params.Memory == 0 {
		params.Memory = 64 * 1024 // 64 MB
	}
	if params.Iterations == 0 {
		params.Iterations = 3
	}
	if params.Parallelism == 0 {
		params.Parallelism = 4
	}

	return &Argon2idKeyProvider{
		passphrase: passphrase,
		salt:       salt,
		params:     params,
	}
}

// ResolveKey derives the key from the passphrase and salt
func (p *Argon2idKeyProvider) ResolveKey() (Key, error) {
	if len(p.passphrase) == 0 {
		return Key{}, errors.New("passphrase cannot be empty")
	}
	if len(p.salt) < 8 {
		return Key{}, fmt.Errorf("salt must be at least 8 bytes, got %d", len(p.salt))
	}

	derived := argon2.IDKey(
		p.passphrase,
		p.salt,
		p.params.Iterations,
		p.params.Memory,
		p.params.Parallelism,
		KeySize,
	)
	var k Key
	copy(k[:], derived)
	return k, nil
}
