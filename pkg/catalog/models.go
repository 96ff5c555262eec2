package catalog

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID                string    `bun:",pk,nullzero" json:"id"`
	Filepath          string    `bun:",nullzero,unique" json:"filepath"`
	FileType          string    `bun:",nullzero" json:"file_type"`
	FilesizeBytes     int64     `bun:",nullzero" json:"filesize_bytes"`
	Title             string    `bun:",nullzero" json:"title"`
	Author            *string   `json:"author"`
	Description       *string   `json:"description"`
	Publisher         *string   `json:"publisher"`
	ISBN              *string   `json:"isbn"`
	Language          *string   `json:"language"`
	PageCount         *int      `json:"page_count"`
	ThumbnailPath     *string   `json:"thumbnail_path"`
	MetadataExtracted bool      `json:"metadata_extracted"`
	ExtractionError   *string   `json:"extraction_error"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
