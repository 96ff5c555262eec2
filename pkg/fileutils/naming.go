package fileutils

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	invalidCharsRE    = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	generatedSuffixRE = regexp.MustCompile(`_\d+_\d+$`)
	authorDashTitleRE = regexp.MustCompile(`^(.+?)\s*-\s*(.+)$`)
	titleByAuthorRE   = regexp.MustCompile(`^(.+?)\s+by\s+(.+)$`)
)

// SanitizeBaseName strips characters that are invalid in filenames and
// truncates to 50 characters so generated names stay well under filesystem
// limits even after the uniqueness suffix is attached.
func SanitizeBaseName(name string) string {
	name = invalidCharsRE.ReplaceAllString(name, "_")
	if len(name) > 50 {
		name = name[:50]
	}
	return strings.Trim(name, " .")
}

// GenerateUniqueFilename returns a storage name for an uploaded file:
// sanitized base + millisecond timestamp + random numeric suffix + original
// extension. Uniqueness is practical, not cryptographic, and needs no
// catalog lookup.
func GenerateUniqueFilename(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	base := SanitizeBaseName(strings.TrimSuffix(filepath.Base(originalFilename), ext))

	timestamp := time.Now().UnixMilli()
	suffix := 1000 + rand.Intn(9000)

	return fmt.Sprintf("%s_%d_%d%s", base, timestamp, suffix, ext)
}

// TitleFromFilename derives a display title (and best-effort author) from a
// filename. It strips the suffix that GenerateUniqueFilename attaches,
// replaces underscores with spaces, and recognizes the common
// "Author - Title" and "Title by Author" conventions.
func TitleFromFilename(filename string) (title, author string) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = generatedSuffixRE.ReplaceAllString(base, "")
	base = strings.TrimSpace(strings.ReplaceAll(base, "_", " "))

	if matches := authorDashTitleRE.FindStringSubmatch(base); matches != nil {
		return strings.TrimSpace(matches[2]), strings.TrimSpace(matches[1])
	}
	if matches := titleByAuthorRE.FindStringSubmatch(base); matches != nil {
		return strings.TrimSpace(matches[1]), strings.TrimSpace(matches[2])
	}

	return base, ""
}
