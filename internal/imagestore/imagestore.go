package imagestore

import (
	"context"
	"io"
	"strings"
)

// Store defines the interface for review image storage operations.
type Store interface {
	// Upload stores an image and returns the result with key and URL.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Delete removes an image by its key.
	Delete(ctx context.Context, key string) error

	// DeleteMany removes the given keys, continuing past individual
	// failures. It returns the keys that could not be deleted.
	DeleteMany(ctx context.Context, keys []string) []string
}

// UploadInput holds the parameters for uploading an image.
type UploadInput struct {
	Key         string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// uploadMarker separates the delivery prefix of a hosted image URL from its
// key. Everything after it, minus any version segment and the file
// extension, is the key.
const uploadMarker = "/upload/"

// KeyFromURL extracts the storage key from a hosted image URL. URLs without
// the upload marker yield "", and the caller skips them.
func KeyFromURL(url string) string {
	idx := strings.Index(url, uploadMarker)
	if idx < 0 {
		return ""
	}

	key := url[idx+len(uploadMarker):]

	// Strip a version segment like v1712345678/.
	if len(key) > 1 && key[0] == 'v' {
		if slash := strings.IndexByte(key, '/'); slash > 0 && isDigits(key[1:slash]) {
			key = key[slash+1:]
		}
	}

	// Strip the file extension from the last path segment.
	if dot := strings.LastIndexByte(key, '.'); dot > strings.LastIndexByte(key, '/') {
		key = key[:dot]
	}

	return key
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
