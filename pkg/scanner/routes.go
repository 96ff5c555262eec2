package scanner

import (
	"github.com/labstack/echo/v4"
	"github.com/oudeis01/myLibrary-sub000/pkg/config"
)

func RegisterRoutes(e *echo.Echo, s *Scanner, cfg *config.Config) {
	h := &handler{
		scanner: s,
		config:  cfg,
	}

	e.POST("/scan", h.start)
	e.POST("/scan/stop", h.stop)
	e.GET("/scan/status", h.status)
	e.POST("/scan/cleanup", h.cleanup)
}
