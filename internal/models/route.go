package models

import "github.com/mkrish/go-crime-routes/internal/geo"

// RouteSummary carries the provider-reported totals for one candidate.
type RouteSummary struct {
	Distance float64 // meters
	Duration float64 // seconds
}

// Route is an ordered path of coordinates returned by the directions
// provider. Candidates arrive primary first; consumers use at most the
// first two.
type Route struct {
	Points  []geo.Point
	Summary RouteSummary
}

// HazardVerdict is the outcome of checking one route against the incident
// set. Incident is the first incident found within the threshold, not
// necessarily the closest one.
type HazardVerdict struct {
	Dangerous bool
	Incident  *Incident
}
