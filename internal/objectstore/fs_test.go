package objectstore

import (
	"context"
	"testing"
	"time"

	"github.com/absfs/credcrypt"
	"github.com/absfs/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFSStore(t *testing.T) *FSStore {
	t.Helper()
	mfs, err := memfs.NewFS()
	require.NoError(t, err)
	store := NewFSStore(mfs, "/data")
	store.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return store
}

func TestFSStore_PutGetHead(t *testing.T) {
	ctx := context.Background()
	store := newTestFSStore(t)
	ref := credcrypt.ObjectRef{Bucket: "certs", Key: "team/a/server.cer"}

	err := store.PutObject(ctx, ref, &credcrypt.Object{
		ObjectInfo: credcrypt.ObjectInfo{
			ContentType: "application/pkix-cert",
			Metadata:    map[string]string{"encrypted": "false"},
		},
		Body: []byte("certificate bytes"),
	})
	require.NoError(t, err)

	obj, err := store.GetObject(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("certificate bytes"), obj.Body)
	assert.Equal(t, "application/pkix-cert", obj.ContentType)
	assert.Equal(t, "team/a/server.cer", obj.Key)
	assert.Equal(t, "certs", obj.Bucket)
	assert.Equal(t, map[string]string{"encrypted": "false"}, obj.Metadata)

	info, err := store.HeadObject(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(len("certificate bytes")), info.Size)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), info.LastModified)
}

func TestFSStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := newTestFSStore(t)
	ref := credcrypt.ObjectRef{Bucket: "b", Key: "k.json"}

	require.NoError(t, store.PutObject(ctx, ref, &credcrypt.Object{Body: []byte("first version")}))
	require.NoError(t, store.PutObject(ctx, ref, &credcrypt.Object{Body: []byte("v2")}))

	obj, err := store.GetObject(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), obj.Body)
	assert.Equal(t, int64(2), obj.Size)
}

func TestFSStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestFSStore(t)
	ref := credcrypt.ObjectRef{Bucket: "b", Key: "missing.key"}

	_, err := store.GetObject(ctx, ref)
	require.Error(t, err)
	assert.ErrorIs(t, err, credcrypt.ErrObjectNotFound)

	_, err = store.HeadObject(ctx, ref)
	require.Error(t, err)
	assert.ErrorIs(t, err, credcrypt.ErrObjectNotFound)
}

func TestFSStore_KeysStayInsideRoot(t *testing.T) {
	store := newTestFSStore(t)
	ref := credcrypt.ObjectRef{Bucket: "../../etc", Key: "../../passwd"}

	assert.Equal(t, "/data/objects/etc/passwd", store.objectPath(ref))
	assert.Equal(t, "/data/meta/etc/passwd.json", store.metaPath(ref))
}

func TestFSStore_BucketsAreSeparate(t *testing.T) {
	ctx := context.Background()
	store := newTestFSStore(t)

	require.NoError(t, store.PutObject(ctx, credcrypt.ObjectRef{Bucket: "one", Key: "x.key"}, &credcrypt.Object{Body: []byte("1")}))

	_, err := store.GetObject(ctx, credcrypt.ObjectRef{Bucket: "two", Key: "x.key"})
	assert.ErrorIs(t, err, credcrypt.ErrObjectNotFound)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp")
}

func TestOpen_Memory(t *testing.T) {
	store, err := Open(context.Background(), Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &FSStore{}, store)
}
