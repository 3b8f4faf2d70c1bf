package storage

import (
	"context"
	"errors"
	"io"
)

// ErrBlobNotFound is returned when no blob exists under the given key.
var ErrBlobNotFound = errors.New("blob not found")

// Store persists document file content. Keys are opaque; callers keep the
// key on the document row and never interpret it.
type Store interface {
	Put(ctx context.Context, r io.Reader) (key string, err error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
