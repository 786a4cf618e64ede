package photos

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"path"
	"strings"

	"cv-backend/internal/shared/storage/object"
)

// Upload describes a stored profile photo.
type Upload struct {
	SecureURL string
	PublicID  string
	Width     int
	Height    int
}

// PhotoStore stores candidate profile photos extracted from CVs.
type PhotoStore interface {
	Available(ctx context.Context) bool
	UploadProfilePhoto(ctx context.Context, data []byte, cvID string) (Upload, error)
}

// ObjectStorePhotos implements PhotoStore on top of an ObjectStore.
type ObjectStorePhotos struct {
	store   object.ObjectStore
	prefix  string
	baseURL string
}

// New creates a photo store writing under the given key prefix. baseURL, when
// set, is prepended to the public id to form the photo URL.
func New(store object.ObjectStore, prefix, baseURL string) *ObjectStorePhotos {
	return &ObjectStorePhotos{
		store:   store,
		prefix:  strings.Trim(strings.TrimSpace(prefix), "/"),
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// Available reports whether the backing object store accepts writes.
func (p *ObjectStorePhotos) Available(ctx context.Context) bool {
	return p.store != nil && p.store.Available(ctx)
}

// UploadProfilePhoto stores the photo bytes and returns its public reference
// with decoded pixel dimensions.
func (p *ObjectStorePhotos) UploadProfilePhoto(ctx context.Context, data []byte, cvID string) (Upload, error) {
	if len(data) == 0 {
		return Upload{}, fmt.Errorf("empty photo payload")
	}
	if strings.TrimSpace(cvID) == "" {
		return Upload{}, fmt.Errorf("cv id is required")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Upload{}, fmt.Errorf("decode photo: %w", err)
	}

	contentType := http.DetectContentType(data)
	publicID := path.Join(p.prefix, cvID+"."+extensionFor(format))

	if _, err := p.store.SaveWithKey(ctx, publicID, contentType, bytes.NewReader(data)); err != nil {
		return Upload{}, fmt.Errorf("store photo: %w", err)
	}

	url := publicID
	if p.baseURL != "" {
		url = p.baseURL + "/" + publicID
	}

	return Upload{
		SecureURL: url,
		PublicID:  publicID,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, nil
}

func extensionFor(format string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "png", "gif":
		return format
	default:
		return "img"
	}
}

var _ PhotoStore = (*ObjectStorePhotos)(nil)
