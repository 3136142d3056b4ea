package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("storage: object not found")

// BlobStore is a flat key/value object store addressed by slash-separated keys.
type BlobStore interface {
	// List returns every key under prefix, sorted lexicographically.
	List(ctx context.Context, prefix string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the object at key. Readers never observe a partial object.
	Put(ctx context.Context, key string, data []byte) error
}

// Options selects and configures a backend.
type Options struct {
	Backend string // "fs" or "s3"

	Path string // fs root

	Bucket   string
	Region   string
	Endpoint string // custom S3-compatible endpoint
}

// Open builds the configured backend.
func Open(ctx context.Context, opts Options) (BlobStore, error) {
	switch opts.Backend {
	case "", "fs":
		return NewFSStore(opts.Path)
	case "s3":
		return NewS3Store(ctx, opts.Bucket, opts.Region, opts.Endpoint)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
