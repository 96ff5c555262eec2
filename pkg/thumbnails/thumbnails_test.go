package thumbnails

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWritesCoverVerbatim(t *testing.T) {
	t.Parallel()

	cover := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01, 0x02, 0x03}
	out := filepath.Join(t.TempDir(), "thumb_book.jpg")

	require.NoError(t, Generate(cover, "epub", out))

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, cover, written)
}

func TestGeneratePlaceholder(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "thumb_book.svg")

	require.NoError(t, Generate(nil, "pdf", out))

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(written), "<?xml"))
	assert.Contains(t, string(written), ">pdf</text>")
}

func TestGenerateUnwritableDirectory(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "does", "not", "exist", "thumb.jpg")
	assert.Error(t, Generate([]byte{0x01}, "epub", out))
}

func TestExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".svg", Extension(nil, ""))
	assert.Equal(t, ".png", Extension([]byte{1}, "image/png"))
	assert.Equal(t, ".jpg", Extension([]byte{1}, "image/jpeg"))
	assert.Equal(t, ".jpg", Extension([]byte{1}, ""))
}

func TestFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "thumb_book_123_456.epub.jpg", Filename("book_123_456.epub", []byte{1}, "image/jpeg"))
	assert.Equal(t, "thumb_book_123_456.epub.svg", Filename("book_123_456.epub", nil, ""))
}
