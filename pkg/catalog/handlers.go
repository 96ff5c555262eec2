package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oudeis01/myLibrary-sub000/pkg/errcodes"
	"github.com/pkg/errors"
)

type handler struct {
	catalogService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	book, err := h.catalogService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.catalogService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*Book `json:"books"`
		Total int     `json:"total"`
	}{books, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := h.catalogService.DeleteBook(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *handler) thumbnail(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	book, err := h.catalogService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if book.ThumbnailPath == nil {
		return errcodes.NotFound("Thumbnail")
	}

	return errors.WithStack(c.File(*book.ThumbnailPath))
}
