package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/pontos/nearby-points/internal/places"
)

type AppConfig struct {
	Port     string
	LogLevel string

	// Dataset source; empty means the bundled dataset.
	DatasetPath  string
	DatasetSheet string
	DatasetTable string

	// TopN is the default size of the home summary.
	TopN int

	// Session retention.
	SessionMaxHistory int           // max number of fixes per session (0 = unlimited)
	SessionMaxAge     time.Duration // idle time before a session expires (0 = never)

	// RefreshInterval controls periodic observer refresh (0 = disabled).
	RefreshInterval time.Duration

	HTTPTimeout time.Duration

	IPAPIURL             string
	GoogleGeocoderAPIKey string

	// DefaultObserver, when set, backs a static locator at the end of the chain.
	DefaultObserver *places.Coordinate

	MapPlatform places.MapPlatform
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	cfg.DatasetPath = os.Getenv("DATASET_PATH")
	cfg.DatasetSheet = getenvDefault("DATASET_SHEET", "Pos")
	cfg.DatasetTable = getenvDefault("DATASET_TABLE", "postos")

	cfg.TopN = getenvInt("TOP_N", 6)
	if cfg.TopN <= 0 {
		return nil, fmt.Errorf("invalid TOP_N: must be positive")
	}

	cfg.SessionMaxHistory = getenvInt("SESSION_MAX_HISTORY", 20)

	var err error
	if cfg.SessionMaxAge, err = getenvDuration("SESSION_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "0s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.IPAPIURL = getenvDefault("IPAPI_URL", "http://ip-api.com/json")
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	observer, err := loadDefaultObserver()
	if err != nil {
		return nil, err
	}
	cfg.DefaultObserver = observer

	switch p := places.MapPlatform(getenvDefault("MAP_PLATFORM", string(places.MapPlatformAndroid))); p {
	case places.MapPlatformAndroid, places.MapPlatformIOS:
		cfg.MapPlatform = p
	default:
		return nil, fmt.Errorf("invalid MAP_PLATFORM: %q", p)
	}

	return cfg, nil
}

func loadDefaultObserver() (*places.Coordinate, error) {
	latStr := os.Getenv("DEFAULT_OBSERVER_LAT")
	lonStr := os.Getenv("DEFAULT_OBSERVER_LON")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("DEFAULT_OBSERVER_LAT and DEFAULT_OBSERVER_LON must be set together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid DEFAULT_OBSERVER_LAT: %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid DEFAULT_OBSERVER_LON: %q", lonStr)
	}
	return &places.Coordinate{Latitude: lat, Longitude: lon}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
