// Package scanner reconciles the books directory against the catalog. One
// background worker per Scanner instance walks the directory, verifies every
// supported file against the catalog, and optionally sweeps orphaned records
// first. Reconciliation is one-directional: files on disk that the catalog
// doesn't know about are logged, never inserted.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oudeis01/myLibrary-sub000/pkg/errcodes"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// Mime types we expect per supported extension. Mismatches are logged
// during the walk but don't exclude the file; the extension is the
// inclusion criterion.
var expectedMimeTypes = map[string]map[string]struct{}{
	".epub": {"application/epub+zip": {}, "application/zip": {}},
	".pdf":  {"application/pdf": {}},
	".cbz":  {"application/zip": {}},
	".cbr":  {"application/x-rar-compressed": {}},
}

// CatalogStore is the slice of the catalog the scanner needs: path lookups
// and the orphan sweep.
type CatalogStore interface {
	RetrieveBookID(ctx context.Context, filePath string) (string, error)
	DeleteOrphanedBooks(ctx context.Context) (int, error)
}

// Status is a point-in-time snapshot of a scan. Safe to hand out; it shares
// no state with the running worker.
type Status struct {
	IsScanning         bool      `json:"is_scanning"`
	ProgressPercentage int       `json:"progress_percentage"`
	CurrentBook        string    `json:"current_book"`
	TotalBooks         int       `json:"total_books"`
	ProcessedBooks     int       `json:"processed_books"`
	OrphanedCleaned    int       `json:"orphaned_cleaned"`
	Errors             []string  `json:"errors"`
	StartedAt          time.Time `json:"started_at"`
}

type Scanner struct {
	catalog    CatalogStore
	extensions map[string]struct{}
	log        logger.Logger

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Scanner that considers files with the given extensions
// (lowercase, dot-prefixed) worth verifying.
func New(catalog CatalogStore, extensions []string) *Scanner {
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	return &Scanner{
		catalog:    catalog,
		extensions: exts,
		log:        logger.New(),
	}
}

// StartScan kicks off a background scan of directory without orphan cleanup.
// It returns false when a scan is already running or the directory doesn't
// exist, leaving any in-flight scan untouched.
func (s *Scanner) StartScan(directory string) bool {
	return s.StartSyncScan(directory, false)
}

// StartSyncScan is StartScan with an optional orphan sweep before the walk.
func (s *Scanner) StartSyncScan(directory string, cleanupOrphaned bool) bool {
	info, err := os.Stat(directory)
	if err != nil || !info.IsDir() {
		s.log.Warn("scan rejected: directory does not exist", logger.Data{"directory": directory})
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.IsScanning {
		return false
	}

	s.status = Status{
		IsScanning: true,
		Errors:     []string{},
		StartedAt:  time.Now(),
	}

	ctx, cancel := context.WithCancel(s.log.WithContext(context.Background()))
	s.cancel = cancel
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer cancel()
		s.run(ctx, directory, cleanupOrphaned, done)
	}(s.done)

	return true
}

// StopScan signals the worker and blocks until it exits. The file check in
// progress is allowed to finish. No-op when nothing is running.
func (s *Scanner) StopScan() {
	s.mu.Lock()
	if !s.status.IsScanning {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// IsScanActive reports whether a worker is currently scanning.
func (s *Scanner) IsScanActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.IsScanning
}

// Status returns an immutable snapshot, safe to call mid-scan from any
// goroutine.
func (s *Scanner) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status
	st.Errors = append([]string{}, s.status.Errors...)
	return st
}

// CleanupOrphanedRecords runs just the orphan sweep, synchronously. It
// refuses to run alongside an active scan and returns 0 in that case.
func (s *Scanner) CleanupOrphanedRecords(ctx context.Context) int {
	s.mu.Lock()
	if s.status.IsScanning {
		s.mu.Unlock()
		return 0
	}
	s.mu.Unlock()

	removed, err := s.catalog.DeleteOrphanedBooks(ctx)
	if err != nil {
		s.log.Err(err).Error("orphan cleanup error")
		return 0
	}
	return removed
}

func (s *Scanner) run(ctx context.Context, directory string, cleanupOrphaned bool, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			s.appendError(fmt.Sprintf("scan worker panic: %v", r))
			s.finish()
		}
	}()

	log := logger.FromContext(ctx)
	log.Info("scan started", logger.Data{"directory": directory, "cleanup_orphaned": cleanupOrphaned})

	if cleanupOrphaned {
		s.setCurrentBook("Cleaning orphaned records...")

		removed, err := s.catalog.DeleteOrphanedBooks(ctx)
		if err != nil {
			s.appendError(fmt.Sprintf("orphan cleanup: %v", err))
		}

		s.mu.Lock()
		s.status.OrphanedCleaned = removed
		s.mu.Unlock()
	}

	files, err := s.collectFiles(ctx, directory)
	if err != nil {
		s.appendError(fmt.Sprintf("directory walk: %v", err))
	}

	s.mu.Lock()
	s.status.TotalBooks = len(files)
	s.mu.Unlock()

	for _, path := range files {
		if ctx.Err() != nil {
			log.Info("scan stopped", logger.Data{"processed": s.Status().ProcessedBooks})
			s.finish()
			return
		}

		s.setCurrentBook(filepath.Base(path))

		_, err := s.catalog.RetrieveBookID(ctx, path)
		switch {
		case err == nil:
			// Verified: the catalog already tracks this file.
		case errors.Is(err, errcodes.NotFound("Book")):
			log.Info("file on disk is not in the catalog", logger.Data{"path": path})
		case ctx.Err() != nil:
			s.finish()
			return
		default:
			s.appendError(fmt.Sprintf("%s: %v", path, err))
		}

		s.mu.Lock()
		s.status.ProcessedBooks++
		if s.status.TotalBooks > 0 {
			s.status.ProgressPercentage = s.status.ProcessedBooks * 100 / s.status.TotalBooks
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.status.ProgressPercentage = 100
	elapsed := time.Since(s.status.StartedAt)
	s.mu.Unlock()

	log.Info("scan completed", logger.Data{
		"total_books": len(files),
		"elapsed_ms":  elapsed.Milliseconds(),
	})
	s.finish()
}

// collectFiles walks directory depth-first, following symlinked directories,
// and returns every file whose extension is in the supported set. Resolved
// paths are tracked so a symlink cycle can't loop the walk.
func (s *Scanner) collectFiles(ctx context.Context, directory string) ([]string, error) {
	visited := map[string]struct{}{}
	var files []string

	var walk func(dir string) error
	walk = func(dir string) error {
		if ctx.Err() != nil {
			return nil
		}

		resolved, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return errors.WithStack(err)
		}
		if _, ok := visited[resolved]; ok {
			return nil
		}
		visited[resolved] = struct{}{}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return errors.WithStack(err)
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			info, err := os.Stat(path)
			if err != nil {
				// Broken symlink or a file deleted mid-walk.
				continue
			}

			if info.IsDir() {
				if err := walk(path); err != nil {
					return err
				}
				continue
			}

			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if _, ok := s.extensions[ext]; !ok {
				continue
			}

			if expected, ok := expectedMimeTypes[ext]; ok {
				mtype, err := mimetype.DetectFile(path)
				if err != nil {
					s.log.Warn("can't detect the mime type of a file with a valid extension", logger.Data{"path": path, "err": err.Error()})
				} else if _, ok := expected[mtype.String()]; !ok {
					s.log.Warn("mime type is not expected for extension", logger.Data{"path": path, "mimetype": mtype.String()})
				}
			}

			files = append(files, path)
		}

		return nil
	}

	if err := walk(directory); err != nil {
		return files, err
	}
	return files, nil
}

func (s *Scanner) setCurrentBook(name string) {
	s.mu.Lock()
	s.status.CurrentBook = name
	s.mu.Unlock()
}

func (s *Scanner) appendError(msg string) {
	s.mu.Lock()
	s.status.Errors = append(s.status.Errors, msg)
	s.mu.Unlock()
}

func (s *Scanner) finish() {
	s.mu.Lock()
	s.status.IsScanning = false
	s.status.CurrentBook = ""
	s.cancel = nil
	s.mu.Unlock()
}
