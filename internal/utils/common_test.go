package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileExtension(t *testing.T) {
	assert.Equal(t, "pdf", GetFileExtension("resume.PDF"))
	assert.Equal(t, "gz", GetFileExtension("archive.tar.gz"))
	assert.Equal(t, "", GetFileExtension("noext"))
}

func TestMatchesMimeType(t *testing.T) {
	assert.True(t, MatchesMimeType("application/pdf", "application/pdf"))
	assert.True(t, MatchesMimeType("image/png", "image/*"))
	assert.False(t, MatchesMimeType("application/pdf", "image/*"))
	assert.False(t, MatchesMimeType("imagefake/png", "image/*"))
}

func TestIsValidMimeType(t *testing.T) {
	patterns := []string{"image/*", "application/pdf"}
	assert.True(t, IsValidMimeType("image/webp", patterns))
	assert.True(t, IsValidMimeType("application/pdf", patterns))
	assert.False(t, IsValidMimeType("text/plain", patterns))
	assert.False(t, IsValidMimeType("text/plain", nil))
}

func TestParseSizeString(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"512B", 512},
		{"1KB", 1024},
		{"1.5KB", 1536},
		{"10MB", 10 * 1024 * 1024},
		{"2GB", 2 * 1024 * 1024 * 1024},
		{"1TB", 1024 * 1024 * 1024 * 1024},
		{"1024", 1024},
		{" 5MB ", 5 * 1024 * 1024},
	}
	for _, tc := range cases {
		got, err := ParseSizeString(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseSizeString("ten megabytes")
	assert.Error(t, err)
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.0 KB", FormatFileSize(1024))
	assert.Equal(t, "10.0 MB", FormatFileSize(10*1024*1024))
}
