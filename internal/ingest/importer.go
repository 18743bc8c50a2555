package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/mkrish/go-crime-routes/internal/models"
	"github.com/mkrish/go-crime-routes/internal/repository"
	"github.com/mkrish/go-crime-routes/internal/worker"
)

// Importer bulk-loads a flat incident file into the store through the
// worker pool. Rows whose identity key is already stored are skipped, so
// re-running an import is idempotent.
type Importer struct {
	repo       repository.IncidentRepository
	numWorkers int
	bufferSize int

	added   atomic.Int64
	skipped atomic.Int64
}

func NewImporter(repo repository.IncidentRepository, numWorkers, bufferSize int) *Importer {
	return &Importer{
		repo:       repo,
		numWorkers: numWorkers,
		bufferSize: bufferSize,
	}
}

// Run reads the file and drains every row through the pool before
// returning. A missing file or unresolvable required column is fatal;
// per-row duplicates are not.
func (im *Importer) Run(ctx context.Context, path string) (added, skipped int, err error) {
	incidents, err := repository.LoadCSV(path)
	if err != nil {
		return 0, 0, err
	}

	pool := worker.NewPool(im.numWorkers, im.bufferSize, im.process)
	pool.Start(ctx)

	for i := range incidents {
		pool.Submit(&incidents[i])
	}
	pool.Stop()

	slog.Info("import complete", "path", path, "added", im.added.Load(), "skipped", im.skipped.Load())
	return int(im.added.Load()), int(im.skipped.Load()), nil
}

func (im *Importer) process(ctx context.Context, inc *models.Incident) error {
	exists, err := im.repo.Exists(ctx, inc.Key())
	if err != nil {
		slog.Error("error checking existence", "id", inc.ID, "error", err)
		return err
	}
	if exists {
		im.skipped.Add(1)
		return nil
	}

	if err := im.repo.Add(ctx, inc); err != nil {
		// Two rows sharing a key can race past the Exists check; the
		// store's unique constraint settles it.
		if errors.Is(err, repository.ErrDuplicate) {
			im.skipped.Add(1)
			return nil
		}
		slog.Error("error adding incident", "id", inc.ID, "error", err)
		return err
	}

	im.added.Add(1)
	slog.Debug("added incident", "id", inc.ID, "crime_type", inc.CrimeType, "location", inc.Location)
	return nil
}
