package uploads

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oudeis01/myLibrary-sub000/internal/testgen"
	"github.com/oudeis01/myLibrary-sub000/pkg/catalog"
	"github.com/oudeis01/myLibrary-sub000/pkg/config"
	"github.com/oudeis01/myLibrary-sub000/pkg/errcodes"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTest(t *testing.T) (*Service, *bun.DB, *config.Config) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, catalog.NewService(db).InitSchema(context.Background()))

	t.Cleanup(func() {
		db.Close()
	})

	cfg := &config.Config{BooksDirectory: t.TempDir()}

	return NewService(cfg, db), db, cfg
}

func testContext() context.Context {
	return logger.New().WithContext(context.Background())
}

func TestSaveUploadedBookEPUB(t *testing.T) {
	t.Parallel()
	svc, _, cfg := setupTest(t)
	ctx := testContext()

	path, cover := testgen.GenerateEPUB(t, t.TempDir(), "book.epub", testgen.EPUBOptions{
		Title:    "The Way of Kings",
		Author:   "Brandon Sanderson",
		HasCover: true,
	})
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	book, err := svc.SaveUploadedBook(ctx, content, "The Way of Kings.epub")
	require.NoError(t, err)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "epub", book.FileType)
	assert.Equal(t, int64(len(content)), book.FilesizeBytes)
	assert.Equal(t, "The Way of Kings", book.Title)
	require.NotNil(t, book.Author)
	assert.Equal(t, "Brandon Sanderson", *book.Author)
	assert.True(t, book.MetadataExtracted)
	assert.Nil(t, book.ExtractionError)

	// Stored under a unique name inside the books directory.
	assert.Equal(t, cfg.BooksDirectory, filepath.Dir(book.Filepath))
	stored, err := os.ReadFile(book.Filepath)
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	// Thumbnail bytes equal the embedded cover bytes.
	require.NotNil(t, book.ThumbnailPath)
	assert.Equal(t, cfg.ThumbnailsDirectory(), filepath.Dir(*book.ThumbnailPath))
	thumb, err := os.ReadFile(*book.ThumbnailPath)
	require.NoError(t, err)
	assert.Equal(t, cover, thumb)
}

func TestSaveUploadedBookPartialExtraction(t *testing.T) {
	t.Parallel()
	svc, _, _ := setupTest(t)
	ctx := testContext()

	path, _ := testgen.GenerateEPUB(t, t.TempDir(), "book.epub", testgen.EPUBOptions{
		OmitContainerXML: true,
	})
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	book, err := svc.SaveUploadedBook(ctx, content, "The Final Empire.epub")
	require.NoError(t, err)

	assert.False(t, book.MetadataExtracted)
	require.NotNil(t, book.ExtractionError)
	assert.NotEmpty(t, *book.ExtractionError)
	assert.Equal(t, "The Final Empire", book.Title)

	// A placeholder thumbnail is still written.
	require.NotNil(t, book.ThumbnailPath)
	assert.True(t, strings.HasSuffix(*book.ThumbnailPath, ".svg"))
}

func TestSaveUploadedBookPDFPlaceholder(t *testing.T) {
	t.Parallel()
	svc, _, _ := setupTest(t)
	ctx := testContext()

	content := []byte("%PDF-1.4\nfake body")

	book, err := svc.SaveUploadedBook(ctx, content, "Thinking Fast and Slow by Daniel Kahneman.pdf")
	require.NoError(t, err)

	assert.Equal(t, "pdf", book.FileType)
	assert.Equal(t, "Thinking Fast and Slow", book.Title)
	require.NotNil(t, book.Author)
	assert.Equal(t, "Daniel Kahneman", *book.Author)

	require.NotNil(t, book.ThumbnailPath)
	thumb, err := os.ReadFile(*book.ThumbnailPath)
	require.NoError(t, err)
	assert.Contains(t, string(thumb), ">pdf</text>")
}

func TestSaveUploadedBookThumbnailWriteFailure(t *testing.T) {
	t.Parallel()
	svc, _, cfg := setupTest(t)
	ctx := testContext()

	// A file squatting on the thumbnails path makes MkdirAll fail.
	require.NoError(t, os.WriteFile(cfg.ThumbnailsDirectory(), []byte("in the way"), 0644))

	path, _ := testgen.GenerateEPUB(t, t.TempDir(), "book.epub", testgen.EPUBOptions{
		Title:    "Dune",
		HasCover: true,
	})
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	book, err := svc.SaveUploadedBook(ctx, content, "Dune.epub")
	require.NoError(t, err)

	// The record is still created, just without a thumbnail.
	assert.Equal(t, "Dune", book.Title)
	assert.True(t, book.MetadataExtracted)
	assert.Nil(t, book.ThumbnailPath)

	stored, err := os.ReadFile(book.Filepath)
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestSaveUploadedBookSignatureMismatch(t *testing.T) {
	t.Parallel()
	svc, db, cfg := setupTest(t)
	ctx := testContext()

	_, err := svc.SaveUploadedBook(ctx, []byte("definitely not a zip"), "book.epub")
	assert.True(t, errors.Is(err, errcodes.SignatureMismatch("epub")))

	// Nothing stored, nothing recorded.
	entries, err := os.ReadDir(cfg.BooksDirectory)
	require.NoError(t, err)
	assert.Empty(t, entries)

	books, err := catalog.NewService(db).ListBooks(ctx, catalog.ListBooksOptions{})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestSaveUploadedBookUnsupportedExtension(t *testing.T) {
	t.Parallel()
	svc, _, _ := setupTest(t)
	ctx := testContext()

	_, err := svc.SaveUploadedBook(ctx, []byte("plain text"), "notes.txt")
	assert.True(t, errors.Is(err, errcodes.UnsupportedFileFormat(".txt")))
}

func TestSaveUploadedBookInsertFailureRemovesStoredFile(t *testing.T) {
	t.Parallel()
	svc, db, cfg := setupTest(t)
	ctx := testContext()

	// A closed database makes the catalog insert fail after the file and
	// thumbnail were already written.
	require.NoError(t, db.Close())

	path, _ := testgen.GenerateEPUB(t, t.TempDir(), "book.epub", testgen.EPUBOptions{
		Title:    "Dune",
		HasCover: true,
	})
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = svc.SaveUploadedBook(ctx, content, "Dune.epub")
	require.Error(t, err)

	// Neither the stored file nor its thumbnail survives.
	entries, err := os.ReadDir(cfg.BooksDirectory)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.Equal(t, "thumbnails", entry.Name())
	}

	thumbs, err := os.ReadDir(cfg.ThumbnailsDirectory())
	require.NoError(t, err)
	assert.Empty(t, thumbs)
}

func TestSaveUploadedBookCBR(t *testing.T) {
	t.Parallel()
	svc, _, _ := setupTest(t)
	ctx := testContext()

	content := append([]byte("Rar!\x1a\x07\x00"), []byte("fake body")...)

	book, err := svc.SaveUploadedBook(ctx, content, "One_Piece_v1.cbr")
	require.NoError(t, err)

	assert.Equal(t, "cbr", book.FileType)
	assert.Equal(t, "One Piece v1", book.Title)
	assert.True(t, book.MetadataExtracted)
}
