package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/mkrish/go-crime-routes/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockIncidentRepo implements repository.IncidentRepository for testing
type mockIncidentRepo struct {
	mu        sync.Mutex
	incidents map[models.Key]models.Incident
}

func newMockRepo() *mockIncidentRepo {
	return &mockIncidentRepo{
		incidents: make(map[models.Key]models.Incident),
	}
}

func (m *mockIncidentRepo) Add(ctx context.Context, inc *models.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incidents[inc.Key()] = *inc
	return nil
}

func (m *mockIncidentRepo) GetByID(ctx context.Context, id string) (*models.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inc := range m.incidents {
		if inc.ID == id {
			return &inc, nil
		}
	}
	return nil, nil
}

func (m *mockIncidentRepo) Exists(ctx context.Context, key models.Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.incidents[key]
	return exists, nil
}

func (m *mockIncidentRepo) List(ctx context.Context) ([]models.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []models.Incident
	for _, inc := range m.incidents {
		results = append(results, inc)
	}
	return results, nil
}

func (m *mockIncidentRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.incidents), nil
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crime.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp csv: %v", err)
	}
	return path
}

const importFixture = "date,crime_type,location,latitude,longitude\n" +
	"2024-01-05,theft,Guindy,13.0101,80.2129\n" +
	"2024-01-06,assault,Adyar,13.0067,80.2577\n" +
	"2024-01-07,robbery,Tambaram,12.9249,80.1275\n"

func TestImporter_Run(t *testing.T) {
	path := writeTempCSV(t, importFixture)
	repo := newMockRepo()

	importer := NewImporter(repo, 2, 10)
	added, skipped, err := importer.Run(context.Background(), path)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if added != 3 {
		t.Errorf("expected 3 added, got %d", added)
	}
	if skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", skipped)
	}

	n, _ := repo.Count(context.Background())
	if n != 3 {
		t.Errorf("expected 3 incidents in store, got %d", n)
	}
}

func TestImporter_RerunIsIdempotent(t *testing.T) {
	path := writeTempCSV(t, importFixture)
	repo := newMockRepo()

	first := NewImporter(repo, 2, 10)
	if _, _, err := first.Run(context.Background(), path); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	second := NewImporter(repo, 2, 10)
	added, skipped, err := second.Run(context.Background(), path)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if added != 0 {
		t.Errorf("expected 0 added on rerun, got %d", added)
	}
	if skipped != 3 {
		t.Errorf("expected 3 skipped on rerun, got %d", skipped)
	}

	n, _ := repo.Count(context.Background())
	if n != 3 {
		t.Errorf("expected 3 incidents after rerun, got %d", n)
	}
}

func TestImporter_MissingFile(t *testing.T) {
	repo := newMockRepo()
	importer := NewImporter(repo, 2, 10)

	_, _, err := importer.Run(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImporter_MissingRequiredColumn(t *testing.T) {
	path := writeTempCSV(t, "date,location,latitude,longitude\n2024-01-05,Guindy,13.0101,80.2129\n")
	repo := newMockRepo()
	importer := NewImporter(repo, 2, 10)

	_, _, err := importer.Run(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for missing crime_type column")
	}
}
