package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oudeis01/myLibrary-sub000/pkg/binder"
	"github.com/oudeis01/myLibrary-sub000/pkg/catalog"
	"github.com/oudeis01/myLibrary-sub000/pkg/config"
	"github.com/oudeis01/myLibrary-sub000/pkg/errcodes"
	"github.com/oudeis01/myLibrary-sub000/pkg/scanner"
	"github.com/oudeis01/myLibrary-sub000/pkg/uploads"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

// New wires the HTTP surface: catalog reads, uploads, and the scan control
// endpoints backed by the given Scanner instance.
func New(cfg *config.Config, db *bun.DB, s *scanner.Scanner) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	catalog.RegisterRoutes(e, db)
	uploads.RegisterRoutes(e, db, cfg)
	scanner.RegisterRoutes(e, s, cfg)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
