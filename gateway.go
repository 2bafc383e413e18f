package credcrypt

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultContentType is used when neither metadata nor the store report one
const DefaultContentType = "application/octet-stream"

// ObjectRef addresses an object in a store
type ObjectRef struct {
	Bucket string
	Key    string
}

// ObjectInfo is what a store reports about an object without its content
type ObjectInfo struct {
	Bucket       string
	Key          string
	ContentType  string
	Metadata     map[string]string
	Size         int64
	LastModified time.Time
}

// Object is a fetched object: its description plus the stored bytes
type Object struct {
	ObjectInfo
	Body []byte
}

// ObjectStore is the remote store the gateway reads from and writes to.
// Missing objects must be reported with an error matching ErrObjectNotFound.
type ObjectStore interface {
	GetObject(ctx context.Context, ref ObjectRef) (*Object, error)
	HeadObject(ctx context.Context, ref ObjectRef) (*ObjectInfo, error)
	PutObject(ctx context.Context, ref ObjectRef, obj *Object) error
}

// ResolvedFile is an object after the gateway decided whether to decrypt it
type ResolvedFile struct {
	Body        []byte
	ContentType string
	Name        string
	Encrypted   bool
	Size        int
}

// RawFile is an object returned without any decryption
type RawFile struct {
	Body        []byte
	ContentType string
	Name        string
	Encrypted   bool
	Metadata    map[string]string
}

// FileMetadata describes an object without downloading its content
type FileMetadata struct {
	ContentType      string            `json:"contentType"`
	OriginalName     string            `json:"originalName"`
	Encrypted        bool              `json:"encrypted"`
	OriginalMimeType string            `json:"originalMimeType,omitempty"`
	Size             int64             `json:"size"`
	LastModified     time.Time         `json:"lastModified"`
	Metadata         map[string]string `json:"metadata"`
}

// UploadResult describes an object written by Upload
type UploadResult struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int    `json:"size"`
}

// EncryptionStatus is the outcome of an IsEncrypted probe
type EncryptionStatus uint8

const (
	// StatusPlain means the object is stored unencrypted
	StatusPlain EncryptionStatus = iota
	// StatusEncrypted means the object carries encrypted=true
	StatusEncrypted
	// StatusUnknown means the store could not be read. It is treated as
	// not encrypted.
	StatusUnknown
)

// String returns the string representation of the status
func (s EncryptionStatus) String() string {
	switch s {
	case StatusPlain:
		return "plain"
	case StatusEncrypted:
		return "encrypted"
	case StatusUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Encrypted is true only for StatusEncrypted
func (s EncryptionStatus) Encrypted() bool {
	return s == StatusEncrypted
}

// ProbeResult carries the status of an IsEncrypted probe and, for
// StatusUnknown, the store error that was swallowed
type ProbeResult struct {
	Status EncryptionStatus
	Err    error
}

// Gateway fetches objects from a store and decrypts the ones whose metadata
// says they were stored encrypted
type Gateway struct {
	store  ObjectStore
	codec  *Codec
	bucket string
}

// NewGateway creates a gateway. bucket is used for refs that leave Bucket empty.
func NewGateway(store ObjectStore, codec *Codec, bucket string) (*Gateway, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if codec == nil {
		return nil, ErrNilCodec
	}
	return &Gateway{store: store, codec: codec, bucket: bucket}, nil
}

// Bucket returns the default bucket
func (g *Gateway) Bucket() string {
	return g.bucket
}

func (g *Gateway) ref(ref ObjectRef) ObjectRef {
	if ref.Bucket == "" {
		ref.Bucket = g.bucket
	}
	return ref
}

// Resolve turns a fetched object into a ResolvedFile. Only objects whose
// metadata has encrypted == "true" are decrypted; everything else is passed
// through unchanged, and original-filename is ignored for it. Decryption
// errors carry OpResolve.
func (g *Gateway) Resolve(obj *Object) (*ResolvedFile, error) {
	if obj == nil {
		return nil, NewFetchError("resolve", ObjectRef{}, ErrNilObject)
	}
	meta := ParseMetadata(obj.Metadata)

	if !meta.Encrypted {
		return &ResolvedFile{
			Body:        obj.Body,
			ContentType: obj.ContentType,
			Name:        BaseName(obj.Key),
			Encrypted:   false,
			Size:        len(obj.Body),
		}, nil
	}

	plaintext, err := g.codec.decrypt(obj.Body, OpResolve, obj.Key)
	if err != nil {
		return nil, err
	}

	contentType := meta.OriginalMimeType
	if contentType == "" {
		contentType = obj.ContentType
	}
	name := meta.OriginalFilename
	if name == "" {
		name = BaseName(obj.Key)
	}

	return &ResolvedFile{
		Body:        plaintext,
		ContentType: contentType,
		Name:        name,
		Encrypted:   true,
		Size:        len(plaintext),
	}, nil
}

// Download fetches an object and resolves it
func (g *Gateway) Download(ctx context.Context, ref ObjectRef) (*ResolvedFile, error) {
	obj, err := g.get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return g.Resolve(obj)
}

// DownloadRaw fetches an object without decrypting it, regardless of its
// metadata
func (g *Gateway) DownloadRaw(ctx context.Context, ref ObjectRef) (*RawFile, error) {
	obj, err := g.get(ctx, ref)
	if err != nil {
		return nil, err
	}
	meta := ParseMetadata(obj.Metadata)
	return &RawFile{
		Body:        obj.Body,
		ContentType: obj.ContentType,
		Name:        BaseName(obj.Key),
		Encrypted:   meta.Encrypted,
		Metadata:    meta.Raw,
	}, nil
}

// IsEncrypted probes an object's metadata. Store failures are not returned as
// errors: they yield StatusUnknown, which callers treat as not encrypted.
func (g *Gateway) IsEncrypted(ctx context.Context, ref ObjectRef) ProbeResult {
	info, err := g.head(ctx, ref)
	if err != nil {
		zap.L().Warn("encryption probe failed, treating object as not encrypted",
			zap.String("key", ref.Key), zap.Error(err))
		return ProbeResult{Status: StatusUnknown, Err: err}
	}
	if ParseMetadata(info.Metadata).Encrypted {
		return ProbeResult{Status: StatusEncrypted}
	}
	return ProbeResult{Status: StatusPlain}
}

// Metadata describes an object without downloading its content
func (g *Gateway) Metadata(ctx context.Context, ref ObjectRef) (*FileMetadata, error) {
	info, err := g.head(ctx, ref)
	if err != nil {
		return nil, err
	}
	meta := ParseMetadata(info.Metadata)
	name := meta.OriginalFilename
	if name == "" {
		name = BaseName(info.Key)
	}
	return &FileMetadata{
		ContentType:      info.ContentType,
		OriginalName:     name,
		Encrypted:        meta.Encrypted,
		OriginalMimeType: meta.OriginalMimeType,
		Size:             info.Size,
		LastModified:     info.LastModified,
		Metadata:         meta.Raw,
	}, nil
}

// Upload encrypts data and stores it with the metadata Resolve needs to
// restore it. name must pass the extension allow-list. When ref.Key is empty
// a key is generated.
func (g *Gateway) Upload(ctx context.Context, ref ObjectRef, name, contentType string, data []byte) (*UploadResult, error) {
	if err := CheckUpload(name); err != nil {
		return nil, err
	}
	ref = g.ref(ref)
	if ref.Key == "" {
		ref.Key = GenerateObjectKey(name)
	}
	if contentType == "" {
		contentType = DefaultContentType
	}

	blob, err := g.codec.Encrypt(data)
	if err != nil {
		return nil, err
	}

	meta := ObjectMetadata{
		Encrypted:        true,
		OriginalFilename: name,
		OriginalMimeType: contentType,
	}
	obj := &Object{
		ObjectInfo: ObjectInfo{
			Bucket:      ref.Bucket,
			Key:         ref.Key,
			ContentType: DefaultContentType,
			Metadata:    meta.Map(),
			Size:        int64(len(blob)),
		},
		Body: blob,
	}
	if err := g.store.PutObject(ctx, ref, obj); err != nil {
		return nil, NewFetchError("put", ref, err)
	}

	return &UploadResult{Bucket: ref.Bucket, Key: ref.Key, Size: len(blob)}, nil
}

func (g *Gateway) get(ctx context.Context, ref ObjectRef) (*Object, error) {
	ref = g.ref(ref)
	if err := ValidateObjectKey(ref.Key); err != nil {
		return nil, err
	}
	obj, err := g.store.GetObject(ctx, ref)
	if err != nil {
		return nil, NewFetchError("get", ref, err)
	}
	if obj == nil {
		return nil, NewFetchError("get", ref, ErrNilObject)
	}
	if obj.Key == "" {
		obj.Key = ref.Key
	}
	return obj, nil
}

func (g *Gateway) head(ctx context.Context, ref ObjectRef) (*ObjectInfo, error) {
	ref = g.ref(ref)
	if err := ValidateObjectKey(ref.Key); err != nil {
		return nil, err
	}
	info, err := g.store.HeadObject(ctx, ref)
	if err != nil {
		return nil, NewFetchError("head", ref, err)
	}
	if info == nil {
		return nil, NewFetchError("head", ref, ErrNilObject)
	}
	if info.Key == "" {
		info.Key = ref.Key
	}
	return info, nil
}
