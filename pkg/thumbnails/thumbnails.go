// Package thumbnails turns extracted cover bytes, or their absence, into a
// stored image so every catalog record has something to render.
package thumbnails

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// placeholderSVG is the template written when a book has no extractable
// cover. The file-type label is embedded so the client can still hint at the
// format.
const placeholderSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg width="200" height="300" xmlns="http://www.w3.org/2000/svg">
  <rect width="200" height="300" fill="#f0f0f0" stroke="#ccc" stroke-width="2"/>
  <text x="100" y="150" font-family="Arial, sans-serif" font-size="24" text-anchor="middle" fill="#666">&#128214;</text>
  <text x="100" y="200" font-family="Arial, sans-serif" font-size="14" text-anchor="middle" fill="#888">%s</text>
</svg>
`

// Extension picks the thumbnail file extension for the given cover bytes and
// media type: .jpg/.png for real covers (.jpg when ambiguous), .svg for the
// placeholder.
func Extension(coverData []byte, coverMimeType string) string {
	if len(coverData) == 0 {
		return ".svg"
	}
	if strings.Contains(coverMimeType, "png") {
		return ".png"
	}
	return ".jpg"
}

// Filename returns the thumbnail name for a stored book file:
// thumb_<unique-filename>.<ext>.
func Filename(uniqueFilename string, coverData []byte, coverMimeType string) string {
	return "thumb_" + uniqueFilename + Extension(coverData, coverMimeType)
}

// Generate writes the thumbnail at outputPath: cover bytes verbatim when
// present, otherwise the SVG placeholder labeled with fileType. Callers
// treat failure as non-fatal; the upload proceeds without a thumbnail.
func Generate(coverData []byte, fileType, outputPath string) error {
	if len(coverData) > 0 {
		if err := os.WriteFile(outputPath, coverData, 0644); err != nil {
			return errors.WithStack(err)
		}
		return nil
	}

	svg := fmt.Sprintf(placeholderSVG, fileType)
	if err := os.WriteFile(outputPath, []byte(svg), 0644); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
