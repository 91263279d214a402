// Package blob defines the archive sink used to retain downloaded
// payloads beyond the local destination directory.
package blob

import (
	"context"
	"io"
)

// Store writes raw artifacts and returns a URI.
type Store interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}

// NoOpStore discards artifacts; useful when archiving is disabled.
type NoOpStore struct{}

// PutObject does nothing and returns an empty URI.
func (NoOpStore) PutObject(_ context.Context, _ string, _ string, _ io.Reader) (string, error) {
	return "", nil
}
