// Package photo stores chore submission photos and returns their public URL.
package photo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// MaxSize is the largest accepted upload in bytes.
const MaxSize = 5 << 20

// Backends.
const (
	BackendNone       = "none"
	BackendS3         = "s3"
	BackendCloudinary = "cloudinary"
)

var (
	ErrTooLarge        = errors.New("photo exceeds 5MB")
	ErrUnsupportedType = errors.New("photo must be a JPEG, PNG, GIF or WebP image")
	ErrEmpty           = errors.New("photo is empty")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Uploader stores one image under a household and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, householdID, contentType string, data []byte) (string, error)
}

// Config selects and configures the storage backend.
type Config struct {
	Backend       string
	S3            S3Config
	CloudinaryURL string
}

// New returns the configured uploader, or nil when uploads are disabled.
func New(cfg Config) (Uploader, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendNone:
		return nil, nil
	case BackendS3:
		if cfg.S3.Bucket == "" || cfg.S3.PublicURL == "" {
			return nil, fmt.Errorf("s3 photo backend needs a bucket and public URL")
		}
		return NewS3(cfg.S3), nil
	case BackendCloudinary:
		return NewCloudinary(cfg.CloudinaryURL)
	default:
		return nil, fmt.Errorf("unknown photo backend %q", cfg.Backend)
	}
}

// Sniff validates the bytes of an upload and returns its content type.
func Sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if len(data) > MaxSize {
		return "", ErrTooLarge
	}
	ct := http.DetectContentType(data)
	if _, ok := extensions[ct]; !ok {
		return "", ErrUnsupportedType
	}
	return ct, nil
}

// objectKey names a new object: <household>/<uuid><ext>.
func objectKey(householdID, contentType string) string {
	return householdID + "/" + uuid.NewString() + extensions[contentType]
}
