package uploads

import (
	"github.com/labstack/echo/v4"
	"github.com/oudeis01/myLibrary-sub000/pkg/config"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config) {
	uploadService := NewService(cfg, db)

	h := &handler{
		uploadService: uploadService,
	}

	e.POST("/books/upload", h.upload)
}
