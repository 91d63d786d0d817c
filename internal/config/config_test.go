package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontos/nearby-points/internal/places"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "DATASET_PATH", "DATASET_SHEET", "DATASET_TABLE", "TOP_N",
		"SESSION_MAX_HISTORY", "SESSION_MAX_AGE", "REFRESH_INTERVAL", "HTTP_TIMEOUT",
		"IPAPI_URL", "GOOGLE_GEOCODER_API_KEY", "DEFAULT_OBSERVER_LAT", "DEFAULT_OBSERVER_LON",
		"MAP_PLATFORM",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.DatasetPath)
	assert.Equal(t, "Pos", cfg.DatasetSheet)
	assert.Equal(t, "postos", cfg.DatasetTable)
	assert.Equal(t, 6, cfg.TopN)
	assert.Equal(t, 20, cfg.SessionMaxHistory)
	assert.Equal(t, 24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "http://ip-api.com/json", cfg.IPAPIURL)
	assert.Nil(t, cfg.DefaultObserver)
	assert.Equal(t, places.MapPlatformAndroid, cfg.MapPlatform)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOP_N", "10")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("DEFAULT_OBSERVER_LAT", "-25.09")
	t.Setenv("DEFAULT_OBSERVER_LON", "-50.16")
	t.Setenv("MAP_PLATFORM", "ios")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	require.NotNil(t, cfg.DefaultObserver)
	assert.Equal(t, places.Coordinate{Latitude: -25.09, Longitude: -50.16}, *cfg.DefaultObserver)
	assert.Equal(t, places.MapPlatformIOS, cfg.MapPlatform)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad duration", env: map[string]string{"SESSION_MAX_AGE": "forever"}},
		{name: "non-positive top n", env: map[string]string{"TOP_N": "0"}},
		{name: "observer lat only", env: map[string]string{"DEFAULT_OBSERVER_LAT": "1"}},
		{name: "observer out of range", env: map[string]string{"DEFAULT_OBSERVER_LAT": "91", "DEFAULT_OBSERVER_LON": "0"}},
		{name: "unknown platform", env: map[string]string{"MAP_PLATFORM": "windows"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
