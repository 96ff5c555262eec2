package epub

import (
	"archive/zip"
	"io"
	"os"

	"github.com/pkg/errors"
)

// ErrEntryNotFound is returned by ReadEntry when the archive has no entry
// with the requested path.
var ErrEntryNotFound = errors.New("entry not found in container")

// Container exposes random access by entry path into the ZIP archive that
// wraps an EPUB (the OCF container). Entry order inside the archive is not
// meaningful.
type Container struct {
	entries map[string]*zip.File
}

func newContainer(zr *zip.Reader) *Container {
	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}
	return &Container{entries: entries}
}

// OpenContainer opens the file at path as an OCF container. The returned
// closer must be closed once reading is done.
func OpenContainer(path string) (*Container, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	stats, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, errors.WithStack(err)
	}

	zr, err := zip.NewReader(f, stats.Size())
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "corrupt archive")
	}

	return newContainer(zr), f, nil
}

// NewContainerFromReader opens a container over an in-memory or seekable
// byte source.
func NewContainerFromReader(r io.ReaderAt, size int64) (*Container, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "corrupt archive")
	}
	return newContainer(zr), nil
}

// Exists reports whether the container holds an entry at the given path.
func (c *Container) Exists(entryPath string) bool {
	_, ok := c.entries[entryPath]
	return ok
}

// ReadEntry returns the bytes of the entry at the given path.
func (c *Container) ReadEntry(entryPath string) ([]byte, error) {
	f, ok := c.entries[entryPath]
	if !ok {
		return nil, errors.Wrap(ErrEntryNotFound, entryPath)
	}

	r, err := f.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}
