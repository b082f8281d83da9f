// Package storage provides object storage for post images.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

// ObjectStore is the blob interface consumed by the service layer.
type ObjectStore interface {
	// Upload stores the object under key and returns its public URL.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a previously returned public URL back to the object
	// key, for deletion. Returns an error for URLs this store did not issue.
	KeyFromURL(rawURL string) (string, error)
}

const postImagePrefix = "post_images/"

// PostImageKey derives the object key for a new post image from the author
// and the upload instant. Nanosecond granularity keeps the collision window
// negligible for a single author.
func PostImageKey(userID uint, now time.Time) string {
	return fmt.Sprintf("%spost_%d_%d", postImagePrefix, userID, now.UnixNano())
}

// parseKeyFromURL extracts the object key from a public URL of the form
// <base>/<key>, where base is the configured public URL prefix.
func parseKeyFromURL(rawURL, publicBase string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("malformed object URL %q: %w", rawURL, err)
	}
	base, err := url.Parse(publicBase)
	if err != nil {
		return "", fmt.Errorf("malformed public base URL %q: %w", publicBase, err)
	}
	if u.Host != base.Host {
		return "", fmt.Errorf("object URL %q does not belong to this store", rawURL)
	}
	key := strings.TrimPrefix(strings.TrimPrefix(u.Path, base.Path), "/")
	if key == "" || !strings.HasPrefix(key, postImagePrefix) {
		return "", fmt.Errorf("object URL %q has no recognizable key", rawURL)
	}
	return key, nil
}
