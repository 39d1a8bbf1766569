package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/codedits/bitecheck/internal/imagestore"
	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

// imageEntry stores metadata about an uploaded image in memory.
type imageEntry struct {
	Key         string
	ContentType string
	Size        int64
	URL         string
}

// Store implements imagestore.Store using an in-memory map. It stores
// metadata only (no actual image bytes) for testing purposes.
type Store struct {
	mu      sync.RWMutex
	images  map[string]*imageEntry
	baseURL string
}

// New creates a new in-memory image store.
func New(baseURL string) *Store {
	return &Store{
		images:  make(map[string]*imageEntry),
		baseURL: baseURL,
	}
}

// Upload stores image metadata in memory and returns the generated URL.
func (s *Store) Upload(_ context.Context, input *imagestore.UploadInput) (*imagestore.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	url := fmt.Sprintf("%s/upload/%s", s.baseURL, input.Key)

	s.images[input.Key] = &imageEntry{
		Key:         input.Key,
		ContentType: input.ContentType,
		Size:        input.Size,
		URL:         url,
	}

	return &imagestore.UploadResult{Key: input.Key, URL: url}, nil
}

// Delete removes image metadata from memory.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.images[key]; !exists {
		return apperrors.NotFound("image", key)
	}

	delete(s.images, key)
	return nil
}

// DeleteMany removes the given keys, collecting the ones that were missing.
func (s *Store) DeleteMany(ctx context.Context, keys []string) []string {
	var failed []string

	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			failed = append(failed, key)
		}
	}

	return failed
}

// Len reports the number of stored images.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// Has reports whether an image with the key exists.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.images[key]
	return ok
}
