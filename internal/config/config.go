package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/absfs/credcrypt"
	"github.com/absfs/credcrypt/internal/objectstore"
	"github.com/joho/godotenv"
)

// Key derivation modes
const (
	KeyDerivationSHA256   = "sha256"
	KeyDerivationArgon2id = "argon2id"
)

// Config holds everything the service reads from the environment
type Config struct {
	Port           int
	AllowedOrigin  string
	LogLevel       string
	MaxUploadSize  int64
	RequestTimeout time.Duration

	EncryptionSecretKey string
	KeyDerivation       string
	KeySalt             string

	StoreBackend string
	Bucket       string
	S3           objectstore.S3Options

	// Warnings lists the defaults applied while loading. Load runs before
	// the logger exists, so callers log them once it does.
	Warnings []string
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Port:           4000,
		AllowedOrigin:  "http://localhost:4200",
		LogLevel:       "info",
		MaxUploadSize:  10 << 20,
		RequestTimeout: 30 * time.Second,
		KeyDerivation:  KeyDerivationSHA256,
	}
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	get := func(name string) string {
		v, _ := lookup(name)
		return strings.TrimSpace(v)
	}

	if value := get("PORT"); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return cfg, fmt.Errorf("PORT env is not a valid integer: %w", err)
		}
		cfg.Port = port
	}
	if value := get("ALLOWED_ORIGIN"); value != "" {
		cfg.AllowedOrigin = value
	} else {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("ALLOWED_ORIGIN is not set, using default %s", cfg.AllowedOrigin))
	}
	if value := get("LOG_LEVEL"); value != "" {
		cfg.LogLevel = value
	}
	if value := get("MAX_UPLOAD_SIZE"); value != "" {
		size, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("MAX_UPLOAD_SIZE env is not a valid integer: %w", err)
		}
		cfg.MaxUploadSize = size
	}
	if value := get("REQUEST_TIMEOUT"); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return cfg, fmt.Errorf("REQUEST_TIMEOUT env is not a valid duration: %w", err)
		}
		cfg.RequestTimeout = d
	}

	// The secret is used verbatim; surrounding spaces are part of it.
	cfg.EncryptionSecretKey, _ = lookup(credcrypt.SecretEnvVar)
	if value := get("KEY_DERIVATION"); value != "" {
		cfg.KeyDerivation = strings.ToLower(value)
	}
	cfg.KeySalt = get("KEY_SALT")

	cfg.Bucket = get("S3_BUCKET")
	cfg.S3 = objectstore.S3Options{
		Region:          get("S3_REGION"),
		Endpoint:        get("S3_ENDPOINT"),
		AccessKeyID:     get("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: get("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    get("AWS_SESSION_TOKEN"),
	}
	if value := get("S3_FORCE_PATH_STYLE"); value != "" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return cfg, fmt.Errorf("S3_FORCE_PATH_STYLE env is not a valid boolean: %w", err)
		}
		cfg.S3.ForcePathStyle = b
	}

	cfg.StoreBackend = strings.ToLower(get("STORE_BACKEND"))
	if cfg.StoreBackend == "" {
		if cfg.Bucket != "" {
			cfg.StoreBackend = objectstore.BackendS3
		} else {
			cfg.StoreBackend = objectstore.BackendMemory
		}
	}
	if cfg.Bucket == "" && cfg.StoreBackend == objectstore.BackendMemory {
		cfg.Bucket = "local"
	}

	return cfg, cfg.Validate()
}

// Validate rejects inconsistent settings
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxUploadSize <= 0 {
		return errors.New("max upload size must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	switch c.KeyDerivation {
	case KeyDerivationSHA256:
	case KeyDerivationArgon2id:
		if c.EncryptionSecretKey == "" {
			return fmt.Errorf("KEY_DERIVATION=argon2id requires %s", credcrypt.SecretEnvVar)
		}
		if len(c.KeySalt) < 8 {
			return errors.New("KEY_DERIVATION=argon2id requires KEY_SALT of at least 8 characters")
		}
	default:
		return fmt.Errorf("unknown key derivation %q", c.KeyDerivation)
	}
	switch c.StoreBackend {
	case objectstore.BackendS3:
		if c.Bucket == "" {
			return errors.New("STORE_BACKEND=s3 requires S3_BUCKET")
		}
	case objectstore.BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	return nil
}

// KeyProvider returns the provider selected by KeyDerivation
func (c Config) KeyProvider() credcrypt.KeyProvider {
	if c.KeyDerivation == KeyDerivationArgon2id {
		return credcrypt.NewArgon2idKeyProvider([]byte(c.EncryptionSecretKey), []byte(c.KeySalt), credcrypt.Argon2idParams{})
	}
	return credcrypt.NewSecretKeyProvider(c.EncryptionSecretKey)
}

// StoreOptions returns the object store options
func (c Config) StoreOptions() objectstore.Options {
	return objectstore.Options{
		Backend: c.StoreBackend,
		S3:      c.S3,
	}
}

// ListenAddr returns the HTTP listen address
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
