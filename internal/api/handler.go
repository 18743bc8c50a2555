package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mkrish/go-crime-routes/internal/cluster"
	"github.com/mkrish/go-crime-routes/internal/geo"
	"github.com/mkrish/go-crime-routes/internal/geocode"
	"github.com/mkrish/go-crime-routes/internal/hazard"
	"github.com/mkrish/go-crime-routes/internal/models"
	"github.com/mkrish/go-crime-routes/internal/repository"
)

// The original hotspot UI exposes k as a slider over this range.
const (
	minClusterK = 2
	maxClusterK = 10
)

// maxRoutesShown caps how many provider candidates are returned: the
// primary plus at most one alternate.
const maxRoutesShown = 2

type Geocoder interface {
	Resolve(ctx context.Context, place string) (geocode.Result, error)
}

type RouteProvider interface {
	GetRoutes(ctx context.Context, start, end geo.Point) ([]models.Route, error)
}

type Handler struct {
	repo      repository.IncidentRepository
	geocoder  Geocoder
	routes    RouteProvider
	threshold float64
	defaultK  int
	seed      int64
}

func NewHandler(repo repository.IncidentRepository, geocoder Geocoder, routes RouteProvider, threshold float64, defaultK int, seed int64) *Handler {
	return &Handler{
		repo:      repo,
		geocoder:  geocoder,
		routes:    routes,
		threshold: threshold,
		defaultK:  defaultK,
		seed:      seed,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/incidents", h.getIncidents)
	r.POST("/api/incidents", h.reportIncident)
	r.GET("/api/hotspots", h.getHotspots)
	r.GET("/api/routes", h.getRoutes)
	r.GET("/health", h.health)
}

func (h *Handler) getIncidents(c *gin.Context) {
	incidents, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch incidents",
		})
		return
	}

	fc := toGeoJSON(incidents)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

type reportRequest struct {
	Date         string `json:"date"`
	TimeOfDay    string `json:"time_of_day"`
	CrimeType    string `json:"crime_type" binding:"required"`
	Location     string `json:"location"`
	Coordinates  string `json:"coordinates" binding:"required"` // "lat, lon"
	VictimGender string `json:"victim_gender"`
}

func (h *Handler) reportIncident(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "crime_type and coordinates are required"})
		return
	}

	point, err := geo.ParseLatLon(req.Coordinates)
	if err != nil {
		// Reject this one submission; stored data stays untouched.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inc := &models.Incident{
		ID:           uuid.NewString(),
		Date:         req.Date,
		TimeOfDay:    req.TimeOfDay,
		CrimeType:    req.CrimeType,
		Location:     req.Location,
		Latitude:     point.Lat,
		Longitude:    point.Lon,
		VictimGender: req.VictimGender,
		CreatedAt:    time.Now(),
	}

	if err := h.repo.Add(c.Request.Context(), inc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "an incident with the same coordinates and crime type already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save incident"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": inc.ID})
}

func (h *Handler) getHotspots(c *gin.Context) {
	k := h.defaultK
	if s := c.Query("k"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			k = n
		}
	}
	if k < minClusterK {
		k = minClusterK
	}
	if k > maxClusterK {
		k = maxClusterK
	}

	incidents, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch incidents",
		})
		return
	}

	points := make([]geo.Point, len(incidents))
	for i := range incidents {
		points[i] = incidents[i].Coordinates()
	}

	km := cluster.NewKMeans(k)
	km.Seed = h.seed
	assignment := km.Assign(points)

	fc := hotspotsToGeoJSON(incidents, assignment)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

type placeResult struct {
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Source string  `json:"source"` // gazetteer, lookup or fallback
}

type routeEntry struct {
	Points   []geo.Point   `json:"points"`
	Distance float64       `json:"distance"`
	Duration float64       `json:"duration"`
	Hazard   *hazardResult `json:"hazard,omitempty"`
}

type hazardResult struct {
	Dangerous bool           `json:"dangerous"`
	Incident  map[string]any `json:"incident,omitempty"`
}

type routesResponse struct {
	Start   placeResult  `json:"start"`
	End     placeResult  `json:"end"`
	Routes  []routeEntry `json:"routes"`
	Warning string       `json:"warning,omitempty"`
}

func (h *Handler) getRoutes(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")

	threshold := h.threshold
	if s := c.Query("threshold"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			threshold = f
		}
	}

	ctx := c.Request.Context()

	start, err := h.geocoder.Resolve(ctx, from)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from place is required"})
		return
	}
	end, err := h.geocoder.Resolve(ctx, to)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to place is required"})
		return
	}

	resp := routesResponse{
		Start: placeResult{Name: from, Lat: start.Point.Lat, Lon: start.Point.Lon, Source: string(start.Source)},
		End:   placeResult{Name: to, Lat: end.Point.Lat, Lon: end.Point.Lon, Source: string(end.Source)},
	}

	routes, err := h.routes.GetRoutes(ctx, start.Point, end.Point)
	if err != nil {
		// No routes is a valid outcome; surface the failure, don't fail.
		resp.Warning = "route provider unavailable"
		resp.Routes = []routeEntry{}
		c.JSON(http.StatusOK, resp)
		return
	}

	if len(routes) > maxRoutesShown {
		routes = routes[:maxRoutesShown]
	}

	incidents, err := h.repo.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch incidents"})
		return
	}

	resp.Routes = make([]routeEntry, 0, len(routes))
	for i, route := range routes {
		entry := routeEntry{
			Points:   route.Points,
			Distance: route.Summary.Distance,
			Duration: route.Summary.Duration,
		}
		// The hazard check runs against the primary candidate only.
		if i == 0 {
			verdict := hazard.Evaluate(route, incidents, threshold)
			entry.Hazard = toHazardResult(verdict)
		}
		resp.Routes = append(resp.Routes, entry)
	}

	c.JSON(http.StatusOK, resp)
}

func toHazardResult(v models.HazardVerdict) *hazardResult {
	res := &hazardResult{Dangerous: v.Dangerous}
	if v.Incident != nil {
		res.Incident = map[string]any{
			"id":         v.Incident.ID,
			"crime_type": v.Incident.CrimeType,
			"location":   v.Incident.Location,
			"lat":        v.Incident.Latitude,
			"lon":        v.Incident.Longitude,
		}
	}
	return res
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
