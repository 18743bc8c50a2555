package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/mkrish/go-crime-routes/internal/geo"
	"github.com/mkrish/go-crime-routes/internal/models"
)

// AlternativesConfig is passed through to the directions provider, which
// owns the semantics of how distinct alternates must be from the primary.
type AlternativesConfig struct {
	TargetCount  int
	ShareFactor  float64
	WeightFactor float64
}

type Client struct {
	baseURL string
	apiKey  string
	alts    AlternativesConfig
	client  *http.Client
}

func NewClient(baseURL, apiKey string, alts AlternativesConfig, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		alts:    alts,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type directionsRequest struct {
	Coordinates       [][]float64        `json:"coordinates"`
	AlternativeRoutes *alternativeRoutes `json:"alternative_routes,omitempty"`
}

type alternativeRoutes struct {
	ShareFactor  float64 `json:"share_factor"`
	TargetCount  int     `json:"target_count"`
	WeightFactor float64 `json:"weight_factor"`
}

type directionsResponse struct {
	Routes []directionsRoute `json:"routes"`
}

type directionsRoute struct {
	Summary  routeSummary `json:"summary"`
	Geometry string       `json:"geometry"`
}

type routeSummary struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// GetRoutes asks the provider for the primary route plus alternates between
// two coordinates. Provider order is preserved; any failure yields no routes
// and an error for the caller to surface, never a panic.
func (c *Client) GetRoutes(ctx context.Context, start, end geo.Point) ([]models.Route, error) {
	body := directionsRequest{
		// Provider wants [lon, lat] order.
		Coordinates: [][]float64{{start.Lon, start.Lat}, {end.Lon, end.Lat}},
		AlternativeRoutes: &alternativeRoutes{
			ShareFactor:  c.alts.ShareFactor,
			TargetCount:  c.alts.TargetCount,
			WeightFactor: c.alts.WeightFactor,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/directions/driving-car", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	routes := make([]models.Route, 0, len(data.Routes))
	for i, r := range data.Routes {
		points, err := decodeGeometry(r.Geometry)
		if err != nil {
			// One bad geometry must not take down the other candidates.
			slog.Warn("skipping route with bad geometry", "index", i, "error", err)
			continue
		}
		routes = append(routes, models.Route{
			Points: points,
			Summary: models.RouteSummary{
				Distance: r.Summary.Distance,
				Duration: r.Summary.Duration,
			},
		})
	}

	return routes, nil
}

// decodeGeometry expands the provider's 1e-5 precision encoded polyline into
// path-ordered points.
func decodeGeometry(encoded string) ([]geo.Point, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("error decoding polyline: %w", err)
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("empty geometry")
	}

	points := make([]geo.Point, 0, len(coords))
	for _, c := range coords {
		points = append(points, geo.Point{Lat: c[0], Lon: c[1]})
	}
	return points, nil
}
