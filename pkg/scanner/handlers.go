package scanner

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oudeis01/myLibrary-sub000/pkg/config"
	"github.com/pkg/errors"
)

type handler struct {
	scanner *Scanner
	config  *config.Config
}

func (h *handler) start(c echo.Context) error {
	params := StartScanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	started := h.scanner.StartSyncScan(h.config.BooksDirectory, params.CleanupOrphaned)

	return c.JSON(http.StatusOK, map[string]bool{"started": started})
}

func (h *handler) stop(c echo.Context) error {
	h.scanner.StopScan()

	return c.JSON(http.StatusOK, map[string]bool{"stopped": true})
}

func (h *handler) status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scanner.Status())
}

func (h *handler) cleanup(c echo.Context) error {
	ctx := c.Request().Context()

	removed := h.scanner.CleanupOrphanedRecords(ctx)

	return c.JSON(http.StatusOK, map[string]int{"removed": removed})
}
