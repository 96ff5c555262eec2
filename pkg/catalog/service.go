package catalog

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/oudeis01/myLibrary-sub000/pkg/errcodes"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID       *string
	Filepath *string
}

type ListBooksOptions struct {
	Limit  *int
	Offset *int

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// InitSchema creates the books table when it doesn't exist yet. The schema is
// small enough that idempotent creation beats a migration framework.
func (svc *Service) InitSchema(ctx context.Context) error {
	_, err := svc.db.
		NewCreateTable().
		Model((*Book)(nil)).
		IfNotExists().
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) CreateBook(ctx context.Context, book *Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	if book.ID == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return errors.WithStack(err)
		}
		book.ID = id.String()
	}

	_, err := svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*Book, error) {
	book := &Book{}

	q := svc.db.
		NewSelect().
		Model(book)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.Filepath != nil {
		q = q.Where("b.filepath = ?", *opts.Filepath)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// RetrieveBookID is the cheap existence probe the scanner uses per file.
func (svc *Service) RetrieveBookID(ctx context.Context, filePath string) (string, error) {
	var id string

	err := svc.db.
		NewSelect().
		Model((*Book)(nil)).
		Column("id").
		Where("b.filepath = ?", filePath).
		Scan(ctx, &id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errcodes.NotFound("Book")
		}
		return "", errors.WithStack(err)
	}

	return id, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*Book, int, error) {
	books := []*Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Order("b.created_at ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

func (svc *Service) DeleteBook(ctx context.Context, id string) error {
	res, err := svc.db.
		NewDelete().
		Model((*Book)(nil)).
		Where("b.id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return errcodes.NotFound("Book")
	}

	return nil
}

// DeleteOrphanedBooks removes catalog records whose file is gone from disk,
// along with their stored thumbnails. It returns how many records were
// removed.
func (svc *Service) DeleteOrphanedBooks(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	books := []*Book{}
	err := svc.db.
		NewSelect().
		Model(&books).
		Column("id", "filepath", "thumbnail_path").
		Scan(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	removed := 0
	for _, book := range books {
		if _, err := os.Stat(book.Filepath); !os.IsNotExist(err) {
			continue
		}

		if err := svc.DeleteBook(ctx, book.ID); err != nil {
			return removed, errors.WithStack(err)
		}

		if book.ThumbnailPath != nil {
			if err := os.Remove(*book.ThumbnailPath); err != nil && !os.IsNotExist(err) {
				log.Warn("failed to remove orphaned thumbnail", logger.Data{
					"thumbnail_path": *book.ThumbnailPath,
					"error":          err.Error(),
				})
			}
		}

		log.Info("removed orphaned book record", logger.Data{
			"book_id":  book.ID,
			"filepath": book.Filepath,
		})
		removed++
	}

	return removed, nil
}
