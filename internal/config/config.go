package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Metar source names accepted by METAR_SOURCE.
const (
	SourceNOAA = "noaa"
	SourceAWC  = "awc"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	Station        string
	MetarSource    string
	NOAABaseURL    string
	AWCBaseURL     string
	RequestTimeout time.Duration

	AssetsDir  string
	FontPath   string // empty selects the bundled Go fonts
	OutputPath string
	Location   *time.Location

	DeployEnabled     bool
	PiSignageBaseURL  string
	PiSignageEmail    string
	PiSignagePassword string
	Playlist          string
	GroupID           string
	AssetName         string
	AssetDuration     int

	KafkaBrokers []string // empty disables report publishing
	KafkaTopic   string

	PushgatewayURL  string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is read first; real
// environment variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	requestTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("REQUEST_TIMEOUT", "30s"))
	if err != nil || requestTimeout <= 0 {
		return nil, errors.New("invalid REQUEST_TIMEOUT")
	}

	duration, err := strconv.Atoi(sharedcfg.EnvOrDefault("PISIGNAGE_ASSET_DURATION", "30"))
	if err != nil || duration <= 0 {
		return nil, errors.New("invalid PISIGNAGE_ASSET_DURATION")
	}

	deployEnabled, err := strconv.ParseBool(sharedcfg.EnvOrDefault("DEPLOY_ENABLED", "true"))
	if err != nil {
		return nil, errors.New("invalid DEPLOY_ENABLED")
	}

	tz := sharedcfg.EnvOrDefault("LOCAL_TIMEZONE", "America/Kentucky/Louisville")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCAL_TIMEZONE %q: %w", tz, err)
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		Station:        strings.ToUpper(sharedcfg.EnvOrDefault("STATION", "KLOU")),
		MetarSource:    strings.ToLower(sharedcfg.EnvOrDefault("METAR_SOURCE", SourceNOAA)),
		NOAABaseURL:    sharedcfg.EnvOrDefault("NOAA_BASE_URL", "https://tgftp.nws.noaa.gov/data/observations/metar/stations"),
		AWCBaseURL:     sharedcfg.EnvOrDefault("AWC_BASE_URL", "https://aviationweather.gov"),
		RequestTimeout: requestTimeout,

		AssetsDir:  sharedcfg.EnvOrDefault("ASSETS_DIR", "img_assets"),
		FontPath:   os.Getenv("FONT_PATH"),
		OutputPath: sharedcfg.EnvOrDefault("OUTPUT_PATH", "img_out/latest_metar.png"),
		Location:   loc,

		DeployEnabled:     deployEnabled,
		PiSignageBaseURL:  sharedcfg.EnvOrDefault("PISIGNAGE_BASE_URL", "https://flightclub502.pisignage.com/api"),
		PiSignageEmail:    os.Getenv("PISIGNAGE_EMAIL"),
		PiSignagePassword: os.Getenv("PISIGNAGE_PASSWORD"),
		Playlist:          sharedcfg.EnvOrDefault("PISIGNAGE_PLAYLIST", "Main Slideshow"),
		GroupID:           sharedcfg.EnvOrDefault("PISIGNAGE_GROUP_ID", "6329aec82e6eea773f2373a6"),
		AssetName:         sharedcfg.EnvOrDefault("PISIGNAGE_ASSET_NAME", "latest_metar.png"),
		AssetDuration:     duration,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "metar-reports"),

		PushgatewayURL:  os.Getenv("PUSHGATEWAY_URL"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if len(cfg.Station) != 4 {
		return nil, fmt.Errorf("STATION must be a four-letter ICAO identifier, got %q", cfg.Station)
	}
	if cfg.MetarSource != SourceNOAA && cfg.MetarSource != SourceAWC {
		return nil, fmt.Errorf("METAR_SOURCE must be %q or %q", SourceNOAA, SourceAWC)
	}
	if cfg.DeployEnabled {
		if cfg.PiSignageEmail == "" || cfg.PiSignagePassword == "" {
			return nil, errors.New("PISIGNAGE_EMAIL and PISIGNAGE_PASSWORD are required when DEPLOY_ENABLED is true")
		}
		if cfg.PiSignageBaseURL == "" || cfg.Playlist == "" || cfg.AssetName == "" {
			return nil, errors.New("PISIGNAGE_BASE_URL, PISIGNAGE_PLAYLIST and PISIGNAGE_ASSET_NAME must not be empty")
		}
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}
