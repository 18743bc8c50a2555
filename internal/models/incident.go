package models

import (
	"time"

	"github.com/mkrish/go-crime-routes/internal/geo"
)

type Incident struct {
	ID           string // uuid assigned at creation
	Date         string // as reported, e.g. "2024-06-12"
	TimeOfDay    string // free text, e.g. "10:30 PM"
	CrimeType    string
	Location     string // free-text area name, e.g. "Tambaram"
	Latitude     float64
	Longitude    float64
	VictimGender string    // optional
	CreatedAt    time.Time // when the report entered the store
}

// Key is the identity triple for deduplication: no two stored incidents
// may share latitude, longitude and crime type.
type Key struct {
	Latitude  float64
	Longitude float64
	CrimeType string
}

func (i *Incident) Key() Key {
	return Key{
		Latitude:  i.Latitude,
		Longitude: i.Longitude,
		CrimeType: i.CrimeType,
	}
}

func (i *Incident) Coordinates() geo.Point {
	return geo.Point{
		Lat: i.Latitude,
		Lon: i.Longitude,
	}
}
