package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mkrish/go-crime-routes/internal/geo"
)

type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Geocode GeocodeConfig
	Routing RoutingConfig
	Hazard  HazardConfig
	Cluster ClusterConfig
	Import  ImportConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StoreConfig struct {
	Backend string // "sqlite" or "csv"
	DBPath  string
	CSVPath string
}

type GeocodeConfig struct {
	BaseURL   string
	Qualifier string
	Timeout   time.Duration
	Fallback  geo.Point
}

type RoutingConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	TargetCount  int
	ShareFactor  float64
	WeightFactor float64
}

type HazardConfig struct {
	Threshold float64
}

type ClusterConfig struct {
	DefaultK int
	Seed     int64
}

type ImportConfig struct {
	Workers    int
	BufferSize int
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "sqlite"),
			DBPath:  getEnv("DB_PATH", "./data/crime-routes.db"),
			CSVPath: getEnv("CSV_PATH", "./crime.csv"),
		},
		Geocode: GeocodeConfig{
			BaseURL:   getEnv("GEOCODE_URL", "https://nominatim.openstreetmap.org"),
			Qualifier: getEnv("GEOCODE_QUALIFIER", "Chennai, Tamil Nadu, India"),
			Timeout:   getEnvDuration("GEOCODE_TIMEOUT", 10*time.Second),
			// Chennai city center, used whenever a place cannot be resolved.
			Fallback: geo.Point{
				Lat: getEnvFloat("GEOCODE_FALLBACK_LAT", 13.0827),
				Lon: getEnvFloat("GEOCODE_FALLBACK_LON", 80.2707),
			},
		},
		Routing: RoutingConfig{
			BaseURL:      getEnv("ORS_URL", "https://api.openrouteservice.org"),
			APIKey:       getEnv("ORS_API_KEY", ""),
			Timeout:      getEnvDuration("ORS_TIMEOUT", 20*time.Second),
			TargetCount:  getEnvInt("ORS_TARGET_COUNT", 2),
			ShareFactor:  getEnvFloat("ORS_SHARE_FACTOR", 0.7),
			WeightFactor: getEnvFloat("ORS_WEIGHT_FACTOR", 2),
		},
		Hazard: HazardConfig{
			Threshold: getEnvFloat("HAZARD_THRESHOLD", 0.02),
		},
		Cluster: ClusterConfig{
			DefaultK: getEnvInt("CLUSTER_DEFAULT_K", 4),
			Seed:     int64(getEnvInt("CLUSTER_SEED", 0)),
		},
		Import: ImportConfig{
			Workers:    getEnvInt("IMPORT_WORKERS", 2),
			BufferSize: getEnvInt("IMPORT_BUFFER_SIZE", 20),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Store.Backend != "sqlite" && c.Store.Backend != "csv" {
		return fmt.Errorf("invalid store backend: %s", c.Store.Backend)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Hazard.Threshold <= 0 {
		return fmt.Errorf("hazard threshold must be positive, got %v", c.Hazard.Threshold)
	}
	if c.Cluster.DefaultK < 2 {
		return fmt.Errorf("default cluster count must be at least 2, got %d", c.Cluster.DefaultK)
	}
	if !c.Geocode.Fallback.Valid() {
		return fmt.Errorf("invalid geocode fallback coordinate: %v", c.Geocode.Fallback)
	}
	if c.Routing.TargetCount < 1 {
		return fmt.Errorf("routing target count must be at least 1, got %d", c.Routing.TargetCount)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
