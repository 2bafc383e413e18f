package credcrypt

// Object store metadata keys
const (
	MetaEncrypted        = "encrypted"
	MetaOriginalFilename = "original-filename"
	MetaOriginalMimeType = "original-mimetype"
)

// ObjectMetadata is the typed view of an object's string metadata. Parse it
// once with ParseMetadata; nothing else compares the raw flag string.
type ObjectMetadata struct {
	// Encrypted is true only when the raw "encrypted" value is exactly "true"
	Encrypted bool
	// OriginalFilename is empty when absent
	OriginalFilename string
	// OriginalMimeType is empty when absent
	OriginalMimeType string
	// Raw is the metadata map as the store returned it
	Raw map[string]string
}

// ParseMetadata converts store metadata into ObjectMetadata. The encrypted
// flag is a strict string comparison: "TRUE", "1" or "yes" are not encrypted.
func ParseMetadata(raw map[string]string) ObjectMetadata {
	if raw == nil {
		raw = map[string]string{}
	}
	return ObjectMetadata{
		Encrypted:        raw[MetaEncrypted] == "true",
		OriginalFilename: raw[MetaOriginalFilename],
		OriginalMimeType: raw[MetaOriginalMimeType],
		Raw:              raw,
	}
}

// Map renders the metadata for storing alongside an object. Empty optional
// fields are omitted.
func (m ObjectMetadata) Map() map[string]string {
	out := make(map[string]string, 3)
	if m.Encrypted {
		out[MetaEncrypted] = "true"
	} else {
		out[MetaEncrypted] = "false"
	}
	if m.OriginalFilename != "" {
		out[MetaOriginalFilename] = m.OriginalFilename
	}
	if m.OriginalMimeType != "" {
		out[MetaOriginalMimeType] = m.OriginalMimeType
	}
	return out
}
