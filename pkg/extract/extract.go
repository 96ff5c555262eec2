// Package extract dispatches metadata extraction by file type. EPUB files go
// through the package-document parser; PDF and comic archives derive a title
// from the filename only. That shallow path is a deliberate extension point,
// not missing functionality.
package extract

import (
	"github.com/oudeis01/myLibrary-sub000/pkg/epub"
	"github.com/oudeis01/myLibrary-sub000/pkg/fileutils"
	"github.com/oudeis01/myLibrary-sub000/pkg/mediafile"
)

// Extract is total: it always returns an Extraction whose Metadata carries a
// usable title, falling back to one derived from originalFilename. It never
// returns an error; degraded extraction is reported through the Partial tag.
func Extract(path, fileType, originalFilename string) mediafile.Extraction {
	switch fileType {
	case mediafile.FileTypeEPUB:
		return extractEPUB(path, originalFilename)
	default:
		// pdf, cbz, cbr: filename heuristics only.
		return mediafile.Complete(filenameMetadata(originalFilename))
	}
}

func extractEPUB(path, originalFilename string) mediafile.Extraction {
	md, err := epub.Parse(path)
	if err != nil {
		return mediafile.PartialResult(filenameMetadata(originalFilename), err.Error())
	}

	if md.Title == "" {
		md.Title, _ = fileutils.TitleFromFilename(originalFilename)
	}
	if md.Author == "" {
		_, md.Author = fileutils.TitleFromFilename(originalFilename)
	}

	return mediafile.Complete(*md)
}

func filenameMetadata(originalFilename string) mediafile.Metadata {
	title, author := fileutils.TitleFromFilename(originalFilename)
	return mediafile.Metadata{
		Title:  title,
		Author: author,
	}
}
