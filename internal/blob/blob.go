// Package blob abstracts where uploaded file bytes live. Records in the
// database hold a storage key; resolving that key to bytes (or a public
// URL) is the job of a Store implementation.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Delete when no blob exists for a key.
var ErrNotFound = errors.New("blob not found")

// Store persists raw file bytes under opaque keys.
//
// downloadName is the human-readable filename a browser should recover when
// fetching the blob directly; backends that cannot attach a content
// disposition ignore it. PublicURL returns "" for backends that do not
// serve objects themselves.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType, downloadName string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}
