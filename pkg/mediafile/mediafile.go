package mediafile

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	FileTypeCBR  = "cbr"
	FileTypeCBZ  = "cbz"
	FileTypeEPUB = "epub"
	FileTypePDF  = "pdf"
)

// Metadata holds everything recovered from a book file. Fields that can't be
// extracted stay empty; only Title is guaranteed to be filled in by the time
// an Extraction reaches a caller.
type Metadata struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description"`
	Publisher     string `json:"publisher"`
	ISBN          string `json:"isbn"`
	Language      string `json:"language"`
	PageCount     int    `json:"page_count"`
	CoverMimeType string `json:"cover_mime_type,omitempty"`
	CoverData     []byte `json:"-"`
}

func (m *Metadata) String() string {
	return fmt.Sprintf("Title:           %s\nAuthor:          %s\nPublisher:       %s\nLanguage:        %s\nHas Cover Data:  %v\nCover Mime Type: %s", m.Title, m.Author, m.Publisher, m.Language, len(m.CoverData) > 0, m.CoverMimeType)
}

func (m *Metadata) CoverExtension() string {
	ext := ""
	switch m.CoverMimeType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	}
	return ext
}

// Extraction is the result of a metadata-extraction attempt. Partial means
// the extractor degraded to filename-derived metadata; Reason says why.
// Callers should check Partial before trusting anything beyond Title.
type Extraction struct {
	Metadata Metadata
	Partial  bool
	Reason   string
}

func Complete(md Metadata) Extraction {
	return Extraction{Metadata: md}
}

func PartialResult(md Metadata, reason string) Extraction {
	return Extraction{Metadata: md, Partial: true, Reason: reason}
}

// FileTypeFromFilename maps a filename's extension to a file type constant,
// or "" when the extension is unsupported.
func FileTypeFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".epub":
		return FileTypeEPUB
	case ".pdf":
		return FileTypePDF
	case ".cbz":
		return FileTypeCBZ
	case ".cbr":
		return FileTypeCBR
	}
	return ""
}
