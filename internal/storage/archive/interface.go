// internal/storage/archive/interface.go
package archive

import (
	"context"
	"fmt"

	"github.com/newthinker/cryptodash/internal/core"
)

// Storage defines the interface for snapshot storage backends.
// Paths are slash separated and relative to the backend root.
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path. Missing paths return core.ErrNoData.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths under the prefix, sorted
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// Config selects and configures a backend.
type Config struct {
	Type string // "localfs" or "s3"
	Path string // root directory for localfs
	S3   S3Config
}

// New builds the backend named by cfg.Type.
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "localfs":
		fs, err := NewLocalFS(cfg.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case "s3":
		st, err := NewS3(cfg.S3)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown archive type %q", cfg.Type))
	}
}
