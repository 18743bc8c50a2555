package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mkrish/go-crime-routes/internal/geo"
	"github.com/mkrish/go-crime-routes/internal/models"
)

// columnAliases maps the header variants seen in the wild onto canonical
// column names. Headers are trimmed and lowercased before lookup.
var columnAliases = map[string]string{
	"lat":   "latitude",
	"lon":   "longitude",
	"long":  "longitude",
	"crime": "crime_type",
	"type":  "crime_type",
}

var csvHeader = []string{"date", "time_of_day", "crime_type", "location", "latitude", "longitude", "victim_gender"}

// LoadCSV reads a flat incident file, normalizing column aliases and
// deduplicating on (latitude, longitude, crime_type), first row wins.
// Missing required columns are a fatal load error: the caller is expected
// to halt before any core logic runs.
func LoadCSV(path string) ([]models.Incident, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening incident file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading incident file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("incident file %s is empty", path)
	}

	cols, err := resolveColumns(records[0])
	if err != nil {
		return nil, err
	}

	seen := make(map[models.Key]bool)
	incidents := make([]models.Incident, 0, len(records)-1)
	for n, rec := range records[1:] {
		inc, err := rowToIncident(rec, cols)
		if err != nil {
			slog.Warn("skipping malformed incident row", "row", n+2, "error", err)
			continue
		}
		if seen[inc.Key()] {
			continue
		}
		seen[inc.Key()] = true
		incidents = append(incidents, inc)
	}

	return incidents, nil
}

func resolveColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, taken := cols[name]; !taken {
			cols[name] = i
		}
	}

	var missing []string
	for _, required := range []string{"latitude", "longitude", "crime_type"} {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("incident file missing required columns: %v", missing)
	}
	return cols, nil
}

func normalizeHeader(h string) string {
	out := make([]byte, 0, len(h))
	for i := 0; i < len(h); i++ {
		c := h[i]
		if c == ' ' || c == '\t' {
			continue
		}
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

func rowToIncident(rec []string, cols map[string]int) (models.Incident, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	lat, err := strconv.ParseFloat(field("latitude"), 64)
	if err != nil {
		return models.Incident{}, fmt.Errorf("bad latitude %q: %w", field("latitude"), err)
	}
	lon, err := strconv.ParseFloat(field("longitude"), 64)
	if err != nil {
		return models.Incident{}, fmt.Errorf("bad longitude %q: %w", field("longitude"), err)
	}
	if !(geo.Point{Lat: lat, Lon: lon}).Valid() {
		return models.Incident{}, fmt.Errorf("coordinates (%v, %v) out of range", lat, lon)
	}

	return models.Incident{
		ID:           uuid.NewString(),
		Date:         field("date"),
		TimeOfDay:    field("time_of_day"),
		CrimeType:    field("crime_type"),
		Location:     field("location"),
		Latitude:     lat,
		Longitude:    lon,
		VictimGender: field("victim_gender"),
		CreatedAt:    time.Now(),
	}, nil
}

// CSVStore is a file-backed IncidentRepository. The whole file is rewritten
// synchronously on every append so the on-disk store always matches the
// in-memory snapshot.
type CSVStore struct {
	path string

	mu        sync.RWMutex
	incidents []models.Incident
	keys      map[models.Key]bool
}

func NewCSVStore(path string) (*CSVStore, error) {
	incidents, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}

	keys := make(map[models.Key]bool, len(incidents))
	for i := range incidents {
		keys[incidents[i].Key()] = true
	}

	return &CSVStore{
		path:      path,
		incidents: incidents,
		keys:      keys,
	}, nil
}

func (s *CSVStore) Add(ctx context.Context, inc *models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys[inc.Key()] {
		return ErrDuplicate
	}

	s.incidents = append(s.incidents, *inc)
	s.keys[inc.Key()] = true

	if err := s.save(); err != nil {
		// Roll back the in-memory append so store and file stay in sync.
		s.incidents = s.incidents[:len(s.incidents)-1]
		delete(s.keys, inc.Key())
		return fmt.Errorf("error persisting incident: %w", err)
	}
	return nil
}

func (s *CSVStore) save() error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, inc := range s.incidents {
		row := []string{
			inc.Date,
			inc.TimeOfDay,
			inc.CrimeType,
			inc.Location,
			strconv.FormatFloat(inc.Latitude, 'f', -1, 64),
			strconv.FormatFloat(inc.Longitude, 'f', -1, 64),
			inc.VictimGender,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *CSVStore) GetByID(ctx context.Context, id string) (*models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.incidents {
		if s.incidents[i].ID == id {
			inc := s.incidents[i]
			return &inc, nil
		}
	}
	return nil, nil
}

func (s *CSVStore) Exists(ctx context.Context, key models.Key) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[key], nil
}

func (s *CSVStore) List(ctx context.Context) ([]models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]models.Incident, len(s.incidents))
	copy(snapshot, s.incidents)
	return snapshot, nil
}

func (s *CSVStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.incidents), nil
}
