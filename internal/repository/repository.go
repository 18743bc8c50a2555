package repository

import (
	"context"
	"errors"

	"github.com/mkrish/go-crime-routes/internal/models"
)

// ErrDuplicate is returned by Add when an incident with the same
// (latitude, longitude, crime_type) key is already stored.
var ErrDuplicate = errors.New("incident already exists")

// IncidentRepository is the session's single source of truth for reported
// incidents. List returns a snapshot: a later Add never mutates a slice
// already handed to a caller.
type IncidentRepository interface {
	Add(ctx context.Context, inc *models.Incident) error
	GetByID(ctx context.Context, id string) (*models.Incident, error)
	Exists(ctx context.Context, key models.Key) (bool, error)
	List(ctx context.Context) ([]models.Incident, error)
	Count(ctx context.Context) (int, error)
}
