package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned for empty keys or keys escaping the storage root.
var ErrInvalidKey = errors.New("invalid storage key")

// Service stores profile pictures and resolves them to browser-reachable URLs.
type Service interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}
