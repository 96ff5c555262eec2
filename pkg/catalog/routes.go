package catalog

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	catalogService := NewService(db)

	h := &handler{
		catalogService: catalogService,
	}

	e.GET("/books", h.list)
	e.GET("/books/:id", h.retrieve)
	e.GET("/books/:id/thumbnail", h.thumbnail)
	e.DELETE("/books/:id", h.delete)
}
