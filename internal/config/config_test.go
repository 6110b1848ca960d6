package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setCredentials satisfies the deploy validation for tests that are not about it.
func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("PISIGNAGE_EMAIL", "ops@example.org")
	t.Setenv("PISIGNAGE_PASSWORD", "hunter2")
}

func TestLoad_Defaults(t *testing.T) {
	setCredentials(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "KLOU", cfg.Station)
	assert.Equal(t, SourceNOAA, cfg.MetarSource)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "img_assets", cfg.AssetsDir)
	assert.Empty(t, cfg.FontPath)
	assert.Equal(t, "img_out/latest_metar.png", cfg.OutputPath)
	assert.Equal(t, "America/Kentucky/Louisville", cfg.Location.String())
	assert.True(t, cfg.DeployEnabled)
	assert.Equal(t, "Main Slideshow", cfg.Playlist)
	assert.Equal(t, "6329aec82e6eea773f2373a6", cfg.GroupID)
	assert.Equal(t, "latest_metar.png", cfg.AssetName)
	assert.Equal(t, 30, cfg.AssetDuration)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "metar-reports", cfg.KafkaTopic)
	assert.Empty(t, cfg.PushgatewayURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	setCredentials(t)
	t.Setenv("STATION", "kjfk")
	t.Setenv("METAR_SOURCE", "AWC")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("LOCAL_TIMEZONE", "UTC")
	t.Setenv("PISIGNAGE_PLAYLIST", "Lobby")
	t.Setenv("PISIGNAGE_ASSET_DURATION", "15")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "wx")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "KJFK", cfg.Station)
	assert.Equal(t, SourceAWC, cfg.MetarSource)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, "Lobby", cfg.Playlist)
	assert.Equal(t, 15, cfg.AssetDuration)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "wx", cfg.KafkaTopic)
	assert.Equal(t, "http://pushgateway:9091", cfg.PushgatewayURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_DryRunNeedsNoCredentials(t *testing.T) {
	t.Setenv("DEPLOY_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.DeployEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		msg  string
	}{
		{"missing password", map[string]string{"PISIGNAGE_PASSWORD": ""}, "PISIGNAGE_PASSWORD"},
		{"bad request timeout", map[string]string{"REQUEST_TIMEOUT": "soon"}, "REQUEST_TIMEOUT"},
		{"negative request timeout", map[string]string{"REQUEST_TIMEOUT": "-1s"}, "REQUEST_TIMEOUT"},
		{"bad source", map[string]string{"METAR_SOURCE": "ftp"}, "METAR_SOURCE"},
		{"bad timezone", map[string]string{"LOCAL_TIMEZONE": "Mars/Olympus_Mons"}, "LOCAL_TIMEZONE"},
		{"bad station", map[string]string{"STATION": "LOU"}, "STATION"},
		{"bad duration", map[string]string{"PISIGNAGE_ASSET_DURATION": "0"}, "PISIGNAGE_ASSET_DURATION"},
		{"bad deploy flag", map[string]string{"DEPLOY_ENABLED": "maybe"}, "DEPLOY_ENABLED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setCredentials(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
