package objectstore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path"
	"sync"
	"time"

	"github.com/absfs/absfs"
	"github.com/absfs/credcrypt"
	"github.com/absfs/memfs"
	"github.com/pkg/errors"
)

// FSStore implements credcrypt.ObjectStore on an absfs.FileSystem. Object
// bytes live under <root>/objects/<bucket>/<key>; their descriptions live in
// JSON sidecars under <root>/meta/<bucket>/<key>.json.
type FSStore struct {
	fs   absfs.FileSystem
	root string
	now  func() time.Time
	mu   sync.RWMutex
}

var _ credcrypt.ObjectStore = (*FSStore)(nil)

// objectRecord is the sidecar written next to each object
type objectRecord struct {
	ContentType  string            `json:"contentType"`
	Metadata     map[string]string `json:"metadata"`
	Size         int64             `json:"size"`
	LastModified time.Time         `json:"lastModified"`
}

// NewFSStore creates a store rooted at root on filesystem
func NewFSStore(filesystem absfs.FileSystem, root string) *FSStore {
	if root == "" {
		root = "/"
	}
	return &FSStore{
		fs:   filesystem,
		root: path.Clean("/" + root),
		now:  time.Now,
	}
}

// NewMemoryStore creates an FSStore on an in-memory filesystem. Its contents
// are lost when the process exits.
func NewMemoryStore() (*FSStore, error) {
	mfs, err := memfs.NewFS()
	if err != nil {
		return nil, errors.Wrap(err, "create in-memory filesystem")
	}
	return NewFSStore(mfs, "/"), nil
}

func (s *FSStore) objectPath(ref credcrypt.ObjectRef) string {
	return path.Join(s.root, "objects", cleanSegment(ref.Bucket), path.Clean("/"+ref.Key))
}

func (s *FSStore) metaPath(ref credcrypt.ObjectRef) string {
	return path.Join(s.root, "meta", cleanSegment(ref.Bucket), path.Clean("/"+ref.Key)+".json")
}

func cleanSegment(bucket string) string {
	b := path.Base("/" + bucket)
	if b == "/" {
		return "_"
	}
	return b
}

// GetObject reads an object and its sidecar
func (s *FSStore) GetObject(_ context.Context, ref credcrypt.ObjectRef) (*credcrypt.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.loadRecord(ref)
	if err != nil {
		return nil, err
	}
	body, err := s.readFile(s.objectPath(ref))
	if err != nil {
		return nil, errors.Wrapf(err, "read object %s", ref.Key)
	}

	return &credcrypt.Object{
		ObjectInfo: s.info(ref, rec),
		Body:       body,
	}, nil
}

// HeadObject reads only the sidecar
func (s *FSStore) HeadObject(_ context.Context, ref credcrypt.ObjectRef) (*credcrypt.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.loadRecord(ref)
	if err != nil {
		return nil, err
	}
	info := s.info(ref, rec)
	return &info, nil
}

// PutObject writes the object bytes, then its sidecar
func (s *FSStore) PutObject(_ context.Context, ref credcrypt.ObjectRef, obj *credcrypt.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeFile(s.objectPath(ref), obj.Body); err != nil {
		return errors.Wrapf(err, "write object %s", ref.Key)
	}

	rec := objectRecord{
		ContentType:  obj.ContentType,
		Metadata:     obj.Metadata,
		Size:         int64(len(obj.Body)),
		LastModified: s.now().UTC(),
	}
	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode object metadata")
	}
	if err := s.writeFile(s.metaPath(ref), payload); err != nil {
		return errors.Wrapf(err, "write object metadata %s", ref.Key)
	}
	return nil
}

func (s *FSStore) info(ref credcrypt.ObjectRef, rec *objectRecord) credcrypt.ObjectInfo {
	return credcrypt.ObjectInfo{
		Bucket:       ref.Bucket,
		Key:          ref.Key,
		ContentType:  rec.ContentType,
		Metadata:     rec.Metadata,
		Size:         rec.Size,
		LastModified: rec.LastModified,
	}
}

func (s *FSStore) loadRecord(ref credcrypt.ObjectRef) (*objectRecord, error) {
	payload, err := s.readFile(s.metaPath(ref))
	if err != nil {
		if isNotExist(err) {
			return nil, errors.Wrapf(credcrypt.ErrObjectNotFound, "%s/%s", ref.Bucket, ref.Key)
		}
		return nil, errors.Wrapf(err, "read object metadata %s", ref.Key)
	}
	var rec objectRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, errors.Wrapf(err, "decode object metadata %s", ref.Key)
	}
	if rec.Metadata == nil {
		rec.Metadata = map[string]string{}
	}
	return &rec, nil
}

func (s *FSStore) readFile(name string) ([]byte, error) {
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *FSStore) writeFile(name string, data []byte) error {
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := s.fs.Create(name)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || stderrors.Is(err, fs.ErrNotExist)
}
