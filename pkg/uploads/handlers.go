package uploads

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oudeis01/myLibrary-sub000/pkg/errcodes"
	"github.com/pkg/errors"
)

type handler struct {
	uploadService *Service
}

func (h *handler) upload(c echo.Context) error {
	ctx := c.Request().Context()

	params := UploadBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	fh, ok := params.FormFiles["file"]
	if !ok {
		return errcodes.ValidationError(`"file" is required`)
	}

	f, err := fh.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return errors.WithStack(err)
	}

	book, err := h.uploadService.SaveUploadedBook(ctx, content, fh.Filename)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}
