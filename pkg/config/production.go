package config

import (
	"os"
	"strconv"
)

func loadProductionConfig(cfg *Config) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err == nil {
		cfg.ServerPort = port
	}
	if dir := os.Getenv("BOOKS_DIRECTORY"); dir != "" {
		cfg.BooksDirectory = dir
	}

	cfg.DatabaseFilePath = "/data/data.sqlite"
	if path := os.Getenv("DATABASE_FILE_PATH"); path != "" {
		cfg.DatabaseFilePath = path
	}
}
