package imagestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			"versioned url with extension",
			"https://res.cloudinary.com/bitecheck/image/upload/v1712345678/reviews/abc123.jpg",
			"reviews/abc123",
		},
		{
			"unversioned url",
			"https://res.cloudinary.com/bitecheck/image/upload/reviews/abc123.png",
			"reviews/abc123",
		},
		{
			"nested folders",
			"https://cdn.bitecheck.io/upload/v99/reviews/2026/03/shot.webp",
			"reviews/2026/03/shot",
		},
		{
			"no extension",
			"https://cdn.bitecheck.io/upload/reviews/raw",
			"reviews/raw",
		},
		{
			"v-prefixed folder that is not a version",
			"https://cdn.bitecheck.io/upload/vintage/shot.jpg",
			"vintage/shot",
		},
		{
			"no upload marker",
			"https://example.com/images/abc.jpg",
			"",
		},
		{
			"empty",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyFromURL(tt.url))
		})
	}
}
