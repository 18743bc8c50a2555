package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/mkrish/go-crime-routes/internal/config"
	"github.com/mkrish/go-crime-routes/internal/ingest"
	"github.com/mkrish/go-crime-routes/internal/logging"
	"github.com/mkrish/go-crime-routes/internal/repository"
)

// crime-import bulk-loads a flat incident file into the sqlite store and
// exits. Re-running it is safe: rows already stored are skipped.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	path := flag.String("file", cfg.Store.CSVPath, "incident CSV file to import")
	flag.Parse()

	db, err := repository.NewSQLiteDB(cfg.Store.DBPath)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	importer := ingest.NewImporter(db, cfg.Import.Workers, cfg.Import.BufferSize)
	added, skipped, err := importer.Run(context.Background(), *path)
	if err != nil {
		logging.Fatalf("Import failed: %v", err)
	}

	slog.Info("import finished", "file", *path, "added", added, "skipped", skipped)
}
