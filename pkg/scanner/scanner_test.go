package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/oudeis01/myLibrary-sub000/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	mu      sync.Mutex
	known   map[string]string
	orphans int

	// When set, RetrieveBookID blocks until the channel is closed.
	release chan struct{}

	lookups int
}

func (f *fakeCatalog) RetrieveBookID(ctx context.Context, filePath string) (string, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++

	if id, ok := f.known[filePath]; ok {
		return id, nil
	}
	return "", errcodes.NotFound("Book")
}

func (f *fakeCatalog) DeleteOrphanedBooks(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orphans, nil
}

func writeBooks(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("PK"), 0644))
	}
}

func waitForScan(t *testing.T, s *Scanner) Status {
	t.Helper()
	require.Eventually(t, func() bool {
		return !s.IsScanActive()
	}, 5*time.Second, 10*time.Millisecond)
	return s.Status()
}

func TestScanProcessesAllSupportedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeBooks(t, dir, "a.epub", "b.pdf", "c.cbz")
	// Not in the supported set; must be ignored.
	writeBooks(t, dir, "notes.txt")

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0755))
	writeBooks(t, sub, "d.epub")

	s := New(&fakeCatalog{}, []string{".epub", ".pdf", ".cbz"})
	require.True(t, s.StartScan(dir))

	status := waitForScan(t, s)
	assert.Equal(t, 4, status.TotalBooks)
	assert.Equal(t, 4, status.ProcessedBooks)
	assert.Equal(t, 100, status.ProgressPercentage)
	assert.Empty(t, status.Errors)
	assert.Empty(t, status.CurrentBook)
}

func TestScanMissingDirectory(t *testing.T) {
	t.Parallel()

	s := New(&fakeCatalog{}, []string{".epub"})
	assert.False(t, s.StartScan(filepath.Join(t.TempDir(), "does-not-exist")))
	assert.False(t, s.IsScanActive())
}

func TestStartScanWhileRunning(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeBooks(t, dir, "a.epub")

	catalog := &fakeCatalog{release: make(chan struct{})}
	s := New(catalog, []string{".epub"})

	require.True(t, s.StartScan(dir))
	require.Eventually(t, func() bool {
		return s.IsScanActive()
	}, 5*time.Second, time.Millisecond)

	first := s.Status()
	assert.False(t, s.StartScan(dir))
	// The rejected call must not reset the running scan's status.
	assert.Equal(t, first.StartedAt, s.Status().StartedAt)

	close(catalog.release)
	waitForScan(t, s)
}

func TestStopScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeBooks(t, dir, "a.epub", "b.epub", "c.epub")

	catalog := &fakeCatalog{release: make(chan struct{})}
	s := New(catalog, []string{".epub"})

	require.True(t, s.StartScan(dir))
	require.Eventually(t, func() bool {
		return s.IsScanActive()
	}, 5*time.Second, time.Millisecond)

	s.StopScan()

	assert.False(t, s.IsScanActive())
	status := s.Status()
	assert.Less(t, status.ProcessedBooks, 3)

	// Idempotent once stopped.
	s.StopScan()
}

func TestSyncScanCleansOrphans(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeBooks(t, dir, "a.epub")

	s := New(&fakeCatalog{orphans: 3}, []string{".epub"})
	require.True(t, s.StartSyncScan(dir, true))

	status := waitForScan(t, s)
	assert.Equal(t, 3, status.OrphanedCleaned)
	assert.Equal(t, 1, status.ProcessedBooks)
}

func TestScanVerifiesKnownFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeBooks(t, dir, "known.epub", "unknown.epub")

	catalog := &fakeCatalog{known: map[string]string{
		filepath.Join(dir, "known.epub"): "book-id-1",
	}}
	s := New(catalog, []string{".epub"})
	require.True(t, s.StartScan(dir))

	status := waitForScan(t, s)
	assert.Equal(t, 2, status.ProcessedBooks)
	// Unknown files are logged, never inserted, and never counted as errors.
	assert.Empty(t, status.Errors)
}

func TestScanFollowsSymlinkedDirectories(t *testing.T) {
	t.Parallel()

	real := t.TempDir()
	writeBooks(t, real, "linked.epub")

	dir := t.TempDir()
	writeBooks(t, dir, "a.epub")
	require.NoError(t, os.Symlink(real, filepath.Join(dir, "shelf")))

	s := New(&fakeCatalog{}, []string{".epub"})
	require.True(t, s.StartScan(dir))

	status := waitForScan(t, s)
	assert.Equal(t, 2, status.TotalBooks)
}

type panickingCatalog struct{}

func (p *panickingCatalog) RetrieveBookID(ctx context.Context, filePath string) (string, error) {
	panic("boom")
}

func (p *panickingCatalog) DeleteOrphanedBooks(ctx context.Context) (int, error) {
	return 0, nil
}

func TestScanRecoversWorkerPanic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeBooks(t, dir, "a.epub")

	s := New(&panickingCatalog{}, []string{".epub"})
	require.True(t, s.StartScan(dir))

	status := waitForScan(t, s)
	assert.False(t, status.IsScanning)
	require.NotEmpty(t, status.Errors)
	assert.Contains(t, status.Errors[0], "boom")

	// No worker left behind; stopping after the fact must not hang.
	s.StopScan()
}

func TestCleanupOrphanedRecords(t *testing.T) {
	t.Parallel()

	s := New(&fakeCatalog{orphans: 2}, []string{".epub"})
	assert.Equal(t, 2, s.CleanupOrphanedRecords(context.Background()))
}

func TestCleanupRefusedWhileScanning(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeBooks(t, dir, "a.epub")

	catalog := &fakeCatalog{orphans: 2, release: make(chan struct{})}
	s := New(catalog, []string{".epub"})

	require.True(t, s.StartScan(dir))
	require.Eventually(t, func() bool {
		return s.IsScanActive()
	}, 5*time.Second, time.Millisecond)

	assert.Equal(t, 0, s.CleanupOrphanedRecords(context.Background()))

	close(catalog.release)
	waitForScan(t, s)
}
