// Package images matches local property photos to lead keys, uploads them
// to object storage and plans cleanup of objects stored under legacy names.
package images

import (
	"context"
	"mime"
	"strings"
)

// ObjectStore is one storage bucket.
// Put must not overwrite: an existing object is an error wrapping
// core.ErrConflict.
type ObjectStore interface {
	Put(ctx context.Context, name string, body []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, names []string) error
	PublicURL(name string) string
}

// ContentType returns the MIME type for a file extension.
func ContentType(ext string) string {
	ext = strings.ToLower(ext)
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}
