package credcrypt

import (
	"strings"
)

// allowedExtensions is the fixed upload allow-list. Entries are lower-case.
var allowedExtensions = map[string]struct{}{
	"cer":  {},
	"key":  {},
	"p12":  {},
	"json": {},
	"jks":  {},
}

// AllowedExtensions returns the upload allow-list in a stable order
func AllowedExtensions() []string {
	return []string{"cer", "key", "p12", "json", "jks"}
}

// FileExtension returns the lower-cased text after the last '.' in name, or
// "" when name has no '.'.
func FileExtension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// IsAllowed reports whether name may be uploaded for encryption. The check
// keeps unrelated files out of the codec; it does not inspect content and is
// not a security boundary.
func IsAllowed(name string) bool {
	_, ok := allowedExtensions[FileExtension(name)]
	return ok
}

// CheckUpload validates an upload for the encrypt path
func CheckUpload(name string) error {
	if name == "" {
		return NewValidationError(ErrNoFileProvided, "file", name, "no file uploaded")
	}
	if !IsAllowed(name) {
		return NewValidationError(ErrUnsupportedFileType, "file", name, "unsupported file type")
	}
	return nil
}
