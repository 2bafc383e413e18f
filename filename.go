package credcrypt

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	// EncryptedSuffix is appended to the names of encrypted downloads
	EncryptedSuffix = ".enc"

	// DecryptedSuffix is appended when a decrypted name cannot be restored
	DecryptedSuffix = ".decrypted"

	uploadPrefix = "uploads"
)

// EncryptedName returns the download name for an encrypted file
func EncryptedName(name string) string {
	return name + EncryptedSuffix
}

// DecryptedName restores the name of a decrypted file: a trailing ".enc"
// (any case) is removed, otherwise ".decrypted" is appended.
func DecryptedName(name string) string {
	if strings.HasSuffix(strings.ToLower(name), EncryptedSuffix) {
		return name[:len(name)-len(EncryptedSuffix)]
	}
	return name + DecryptedSuffix
}

// BaseName returns the last '/'-separated segment of an object key
func BaseName(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return key
}

// GenerateObjectKey returns a fresh object key for an encrypted upload of name
func GenerateObjectKey(name string) string {
	base := path.Base("/" + name)
	if base == "/" || base == "." {
		base = "file"
	}
	return path.Join(uploadPrefix, uuid.NewString(), EncryptedName(base))
}
