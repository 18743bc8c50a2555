package api

import (
	"github.com/mkrish/go-crime-routes/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(incidents []models.Incident) FeatureCollection {
	features := make([]Feature, 0, len(incidents))

	for _, inc := range incidents {
		features = append(features, incidentFeature(inc, nil))
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// hotspotsToGeoJSON tags each incident feature with its cluster id. The
// assignment slice is parallel to the incident snapshot.
func hotspotsToGeoJSON(incidents []models.Incident, assignment []int) FeatureCollection {
	features := make([]Feature, 0, len(incidents))

	for i, inc := range incidents {
		cluster := assignment[i]
		features = append(features, incidentFeature(inc, &cluster))
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

func incidentFeature(inc models.Incident, cluster *int) Feature {
	props := map[string]any{
		"id":            inc.ID,
		"date":          inc.Date,
		"time_of_day":   inc.TimeOfDay,
		"crime_type":    inc.CrimeType,
		"location":      inc.Location,
		"victim_gender": inc.VictimGender,
	}
	if cluster != nil {
		props["cluster"] = *cluster
	}

	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{inc.Longitude, inc.Latitude},
		},
		Properties: props,
	}
}
