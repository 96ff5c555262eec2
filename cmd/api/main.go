package main

import (
	"context"
	"net/http"
	"os"

	"github.com/oudeis01/myLibrary-sub000/pkg/catalog"
	"github.com/oudeis01/myLibrary-sub000/pkg/config"
	"github.com/oudeis01/myLibrary-sub000/pkg/database"
	"github.com/oudeis01/myLibrary-sub000/pkg/scanner"
	"github.com/oudeis01/myLibrary-sub000/pkg/server"
	"github.com/oudeis01/myLibrary-sub000/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting mylibrary", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	if err := os.MkdirAll(cfg.BooksDirectory, 0755); err != nil {
		log.Err(err).Fatal("books directory error")
	}
	if err := os.MkdirAll(cfg.ThumbnailsDirectory(), 0755); err != nil {
		log.Err(err).Fatal("thumbnails directory error")
	}
	log.Info("books directory initialized", logger.Data{"path": cfg.BooksDirectory})

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	catalogService := catalog.NewService(db)
	if err := catalogService.InitSchema(ctx); err != nil {
		log.Err(err).Fatal("schema error")
	}

	scn := scanner.New(catalogService, cfg.ScanExtensions)

	srv, err := server.New(cfg, db, scn)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		log.Info("server started", logger.Data{"addr": srv.Addr})
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	<-graceful
	log.Info("starting graceful shutdown")

	scn.StopScan()

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
