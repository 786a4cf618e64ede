package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
// Save namespaces new objects by owner and assigns a random key; SaveWithKey
// writes to an exact key (derived artifacts such as extracted photos).
type ObjectStore interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
	Available(ctx context.Context) bool
}
