package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrExists   = errors.New("blob: object already exists")
	ErrNotFound = errors.New("blob: object not found")
	ErrBadName  = errors.New("blob: invalid object name")
)

// Object is an opened stored file. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Store keeps uploaded files under flat names.
type Store interface {
	// Create writes a new object and fails with ErrExists if name is taken.
	Create(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (*Object, error)
	Remove(ctx context.Context, name string) error
}
