package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkrish/go-crime-routes/internal/geo"
)

var chennaiCenter = geo.Point{Lat: 13.0827, Lon: 80.2707}

func newTestGeocoder(baseURL string) *Geocoder {
	return NewGeocoder(baseURL, "Chennai, Tamil Nadu, India", chennaiCenter, 2*time.Second)
}

func TestResolve_GazetteerHit_NoNetworkCall(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "should not be called", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := newTestGeocoder(srv.URL)

	for _, place := range []string{"Guindy", "guindy", "  GUINDY  "} {
		res, err := g.Resolve(context.Background(), place)
		require.NoError(t, err)
		require.Equal(t, SourceGazetteer, res.Source)
		require.Equal(t, geo.Point{Lat: 13.0101, Lon: 80.2129}, res.Point)
	}

	require.Zero(t, calls.Load(), "gazetteer hits must not reach the lookup service")
}

func TestResolve_EmptyInput(t *testing.T) {
	g := newTestGeocoder("http://unused.invalid")

	_, err := g.Resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrNoPlace)

	_, err = g.Resolve(context.Background(), "   ")
	require.ErrorIs(t, err, ErrNoPlace)
}

func TestResolve_LookupSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Query().Get("q"), "Porur, Chennai, Tamil Nadu, India")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat": "13.0382", "lon": "80.1565", "display_name": "Porur, Chennai"}]`))
	}))
	defer srv.Close()

	g := newTestGeocoder(srv.URL)

	res, err := g.Resolve(context.Background(), "Porur")
	require.NoError(t, err)
	require.Equal(t, SourceLookup, res.Source)
	require.InDelta(t, 13.0382, res.Point.Lat, 1e-9)
	require.InDelta(t, 80.1565, res.Point.Lon, 1e-9)
}

func TestResolve_FallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := newTestGeocoder(srv.URL)

	res, err := g.Resolve(context.Background(), "Nowhere In Particular")
	require.NoError(t, err, "lookup failure must degrade, not error")
	require.Equal(t, SourceFallback, res.Source)
	require.Equal(t, chennaiCenter, res.Point)
}

func TestResolve_FallbackOnNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := newTestGeocoder(srv.URL)

	res, err := g.Resolve(context.Background(), "Nowhere In Particular")
	require.NoError(t, err)
	require.Equal(t, SourceFallback, res.Source)
	require.Equal(t, chennaiCenter, res.Point)
}

func TestResolve_FallbackOnUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	g := newTestGeocoder(srv.URL)

	res, err := g.Resolve(context.Background(), "Porur")
	require.NoError(t, err)
	require.Equal(t, SourceFallback, res.Source)
	require.Equal(t, chennaiCenter, res.Point)
}
