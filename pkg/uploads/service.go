package uploads

import (
	"context"
	"os"
	"path/filepath"

	"github.com/oudeis01/myLibrary-sub000/pkg/catalog"
	"github.com/oudeis01/myLibrary-sub000/pkg/config"
	"github.com/oudeis01/myLibrary-sub000/pkg/errcodes"
	"github.com/oudeis01/myLibrary-sub000/pkg/extract"
	"github.com/oudeis01/myLibrary-sub000/pkg/fileutils"
	"github.com/oudeis01/myLibrary-sub000/pkg/mediafile"
	"github.com/oudeis01/myLibrary-sub000/pkg/thumbnails"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type Service struct {
	config         *config.Config
	catalogService *catalog.Service
}

func NewService(cfg *config.Config, db *bun.DB) *Service {
	return &Service{
		config:         cfg,
		catalogService: catalog.NewService(db),
	}
}

// SaveUploadedBook validates the uploaded content, stores it under a unique
// filename in the books directory, extracts metadata, writes a thumbnail,
// and records the book in the catalog. Extraction problems degrade the
// record; only validation failures and storage errors reject the upload.
func (svc *Service) SaveUploadedBook(ctx context.Context, content []byte, originalFilename string) (*catalog.Book, error) {
	log := logger.FromContext(ctx)

	fileType := mediafile.FileTypeFromFilename(originalFilename)
	if fileType == "" {
		return nil, errcodes.UnsupportedFileFormat(filepath.Ext(originalFilename))
	}

	if !mediafile.ValidateSignature(content, fileType) {
		return nil, errcodes.SignatureMismatch(fileType)
	}

	uniqueFilename := fileutils.GenerateUniqueFilename(originalFilename)
	storedPath := filepath.Join(svc.config.BooksDirectory, uniqueFilename)

	if err := os.WriteFile(storedPath, content, 0644); err != nil {
		return nil, errors.WithStack(err)
	}

	result := extract.Extract(storedPath, fileType, originalFilename)
	md := result.Metadata

	var thumbnailPath *string
	thumbDir := svc.config.ThumbnailsDirectory()
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		log.Err(err).Warn("failed to create thumbnails directory")
	} else {
		p := filepath.Join(thumbDir, thumbnails.Filename(uniqueFilename, md.CoverData, md.CoverMimeType))
		if err := thumbnails.Generate(md.CoverData, fileType, p); err != nil {
			log.Err(err).Warn("failed to write thumbnail", logger.Data{"path": p})
		} else {
			thumbnailPath = &p
		}
	}

	book := &catalog.Book{
		Filepath:          storedPath,
		FileType:          fileType,
		FilesizeBytes:     int64(len(content)),
		Title:             md.Title,
		Author:            optional(md.Author),
		Description:       optional(md.Description),
		Publisher:         optional(md.Publisher),
		ISBN:              optional(md.ISBN),
		Language:          optional(md.Language),
		ThumbnailPath:     thumbnailPath,
		MetadataExtracted: !result.Partial,
		ExtractionError:   optional(result.Reason),
	}
	if md.PageCount > 0 {
		book.PageCount = &md.PageCount
	}

	if err := svc.catalogService.CreateBook(ctx, book); err != nil {
		// Don't leave files on disk that no catalog record can reach.
		if rmErr := os.Remove(storedPath); rmErr != nil {
			log.Err(rmErr).Warn("failed to remove stored file after insert error", logger.Data{"path": storedPath})
		}
		if thumbnailPath != nil {
			if rmErr := os.Remove(*thumbnailPath); rmErr != nil {
				log.Err(rmErr).Warn("failed to remove thumbnail after insert error", logger.Data{"path": *thumbnailPath})
			}
		}
		return nil, errors.WithStack(err)
	}

	log.Info("book uploaded", logger.Data{
		"book_id":            book.ID,
		"file_type":          fileType,
		"filesize_bytes":     book.FilesizeBytes,
		"metadata_extracted": book.MetadataExtracted,
	})

	return book, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
