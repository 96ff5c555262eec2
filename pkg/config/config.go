package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	BooksDirectory            string
	DatabaseBusyTimeout       time.Duration
	DatabaseConnectRetryCount int
	DatabaseConnectRetryDelay time.Duration
	DatabaseDebug             bool
	DatabaseFilePath          string
	Hostname                  string
	ScanExtensions            []string
	ServerHost                string
	ServerPort                int
}

const environmentENV = "ENVIRONMENT"

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		BooksDirectory:            "./books",
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		Hostname:                  hostname,
		// The scanner skips .cbr by default: CBR files are accepted at
		// upload time, but scanning inside RAR archives is deferred. Add
		// ".cbr" here to opt in.
		ScanExtensions: []string{".epub", ".pdf", ".cbz"},
		ServerPort:     8080,
	}

	switch os.Getenv(environmentENV) {
	case "development", "":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	return cfg, nil
}

// ThumbnailsDirectory is where generated thumbnails live, as a subdirectory
// of the uploaded book files.
func (cfg *Config) ThumbnailsDirectory() string {
	return filepath.Join(cfg.BooksDirectory, "thumbnails")
}
