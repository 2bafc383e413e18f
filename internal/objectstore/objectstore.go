// Package objectstore provides the credcrypt.ObjectStore backends: S3 for
// deployments and an absfs-backed store, in memory by default, for local use
// and tests.
package objectstore

import (
	"context"
	"fmt"

	"github.com/absfs/credcrypt"
	"go.uber.org/zap"
)

// Backend names
const (
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// Options selects and configures a backend
type Options struct {
	Backend string
	S3      S3Options
}

// Open creates the configured store
func Open(ctx context.Context, opts Options) (credcrypt.ObjectStore, error) {
	switch opts.Backend {
	case BackendS3:
		client, err := NewS3Client(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		zap.L().Info("using s3 object store",
			zap.String("region", opts.S3.Region),
			zap.String("endpoint", opts.S3.Endpoint),
			zap.Bool("pathStyle", opts.S3.ForcePathStyle))
		return NewS3Store(client), nil
	case BackendMemory, "":
		zap.L().Warn("using in-memory object store, objects are lost on restart")
		store, err := NewMemoryStore()
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown object store backend %q", opts.Backend)
	}
}
