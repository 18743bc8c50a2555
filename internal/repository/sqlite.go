package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mkrish/go-crime-routes/internal/models"
	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS incidents (
			id TEXT PRIMARY KEY,
			date TEXT,
			time_of_day TEXT,
			crime_type TEXT NOT NULL,
			location TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			victim_gender TEXT,
			created_at DATETIME NOT NULL,
			UNIQUE (latitude, longitude, crime_type)
		);

		CREATE INDEX IF NOT EXISTS idx_incidents_crime_type ON incidents(crime_type);
		CREATE INDEX IF NOT EXISTS idx_incidents_location ON incidents(location);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Add(ctx context.Context, inc *models.Incident) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO incidents (id, date, time_of_day, crime_type, location, latitude, longitude, victim_gender, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inc.ID, inc.Date, inc.TimeOfDay, inc.CrimeType, inc.Location,
		inc.Latitude, inc.Longitude, inc.VictimGender, inc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error inserting incident: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.Incident, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, time_of_day, crime_type, location, latitude, longitude, victim_gender, created_at
		FROM incidents WHERE id = ?`, id)

	var inc models.Incident
	err := row.Scan(&inc.ID, &inc.Date, &inc.TimeOfDay, &inc.CrimeType, &inc.Location,
		&inc.Latitude, &inc.Longitude, &inc.VictimGender, &inc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning incident: %w", err)
	}
	return &inc, nil
}

func (s *SQLiteDB) Exists(ctx context.Context, key models.Key) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM incidents
		WHERE latitude = ? AND longitude = ? AND crime_type = ?`,
		key.Latitude, key.Longitude, key.CrimeType,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking existence: %w", err)
	}
	return n > 0, nil
}

// List returns incidents in insertion order so that clustering and hazard
// checks see a stable, reproducible snapshot.
func (s *SQLiteDB) List(ctx context.Context) ([]models.Incident, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, time_of_day, crime_type, location, latitude, longitude, victim_gender, created_at
		FROM incidents ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("error querying incidents: %w", err)
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		var inc models.Incident
		if err := rows.Scan(&inc.ID, &inc.Date, &inc.TimeOfDay, &inc.CrimeType, &inc.Location,
			&inc.Latitude, &inc.Longitude, &inc.VictimGender, &inc.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning incident: %w", err)
		}
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}

func (s *SQLiteDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM incidents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting incidents: %w", err)
	}
	return n, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
