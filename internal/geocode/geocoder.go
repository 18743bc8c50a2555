package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mkrish/go-crime-routes/internal/geo"
)

// ErrNoPlace is returned when the place name is empty or whitespace-only.
// It is the only error Resolve produces: every lookup failure degrades to
// the fallback center instead.
var ErrNoPlace = errors.New("no place name given")

// Source says how a place name was resolved.
type Source string

const (
	SourceGazetteer Source = "gazetteer"
	SourceLookup    Source = "lookup"
	SourceFallback  Source = "fallback"
)

// Result is a resolved coordinate plus how it was obtained. Callers surface
// SourceFallback as an "unresolved, used city center" warning.
type Result struct {
	Point  geo.Point
	Source Source
}

// gazetteer covers the areas users name most often, checked before any
// network call. Keys are lowercase.
var gazetteer = map[string]geo.Point{
	"guindy":    {Lat: 13.0101, Lon: 80.2129},
	"avadi":     {Lat: 13.1143, Lon: 80.0958},
	"tambaram":  {Lat: 12.9249, Lon: 80.1275},
	"velachery": {Lat: 12.9791, Lon: 80.2209},
	"chromepet": {Lat: 12.9514, Lon: 80.1414},
	"tnagar":    {Lat: 13.0408, Lon: 80.2343},
	"adyar":     {Lat: 13.0067, Lon: 80.2577},
}

type Geocoder struct {
	baseURL   string
	qualifier string // appended to every query, e.g. "Chennai, Tamil Nadu, India"
	fallback  geo.Point
	userAgent string
	client    *http.Client
}

func NewGeocoder(baseURL, qualifier string, fallback geo.Point, timeout time.Duration) *Geocoder {
	return &Geocoder{
		baseURL:   baseURL,
		qualifier: qualifier,
		fallback:  fallback,
		userAgent: "crime-route-alerts",
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Resolve turns a free-text area name into a coordinate: gazetteer first,
// then the lookup service scoped to the region qualifier, then the fixed
// fallback center.
func (g *Geocoder) Resolve(ctx context.Context, place string) (Result, error) {
	trimmed := strings.TrimSpace(place)
	if trimmed == "" {
		return Result{}, ErrNoPlace
	}

	if p, ok := gazetteer[strings.ToLower(trimmed)]; ok {
		return Result{Point: p, Source: SourceGazetteer}, nil
	}

	p, err := g.lookup(ctx, trimmed)
	if err != nil {
		slog.Warn("geocode lookup failed, using fallback center", "place", trimmed, "error", err)
		return Result{Point: g.fallback, Source: SourceFallback}, nil
	}

	slog.Info("geocode lookup resolved", "place", trimmed, "lat", p.Lat, "lon", p.Lon)
	return Result{Point: p, Source: SourceLookup}, nil
}

type lookupResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (g *Geocoder) lookup(ctx context.Context, place string) (geo.Point, error) {
	q := url.Values{}
	q.Set("q", place+", "+g.qualifier)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return geo.Point{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return geo.Point{}, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Point{}, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var results []lookupResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return geo.Point{}, fmt.Errorf("error decoding resp.Body: %w", err)
	}
	if len(results) == 0 {
		return geo.Point{}, fmt.Errorf("no match for %q", place)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("bad latitude in result: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("bad longitude in result: %w", err)
	}

	p := geo.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return geo.Point{}, fmt.Errorf("result coordinate out of range: %v", p)
	}
	return p, nil
}
