package hazard

import (
	"math"

	"github.com/mkrish/go-crime-routes/internal/models"
)

// DefaultThreshold is the flagging distance in raw coordinate degrees, not
// meters. Existing thresholds were tuned against this unit (~0.02 degrees is
// low single-digit kilometers at Chennai's latitude), so it must stay as-is.
const DefaultThreshold = 0.02

// Evaluate checks one route against an incident snapshot. The scan is
// incident-major, point-minor, and returns on the first pair strictly
// closer than threshold: the reported incident is a witness, not
// necessarily the nearest one. Callers depend on that ordering.
func Evaluate(route models.Route, incidents []models.Incident, threshold float64) models.HazardVerdict {
	for i := range incidents {
		inc := &incidents[i]
		for _, p := range route.Points {
			dist := math.Hypot(p.Lat-inc.Latitude, p.Lon-inc.Longitude)
			if dist < threshold {
				return models.HazardVerdict{
					Dangerous: true,
					Incident:  inc,
				}
			}
		}
	}
	return models.HazardVerdict{}
}
