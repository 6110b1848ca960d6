package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/metar-signage/internal/adapter/awc"
	kafkaadapter "github.com/couchcryptid/metar-signage/internal/adapter/kafka"
	"github.com/couchcryptid/metar-signage/internal/adapter/metar"
	"github.com/couchcryptid/metar-signage/internal/adapter/noaa"
	"github.com/couchcryptid/metar-signage/internal/adapter/pisignage"
	"github.com/couchcryptid/metar-signage/internal/config"
	"github.com/couchcryptid/metar-signage/internal/observability"
	"github.com/couchcryptid/metar-signage/internal/pipeline"
	"github.com/couchcryptid/metar-signage/internal/render"
)

const metricsJob = "metar_signage"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg).With("run_id", uuid.NewString(), "station", cfg.Station)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		extractor pipeline.Extractor
		decoder   pipeline.Decoder
	)
	switch cfg.MetarSource {
	case config.SourceAWC:
		extractor = awc.NewClient(cfg.AWCBaseURL, cfg.Station, cfg.RequestTimeout, logger)
		decoder = awc.NewDecoder()
	default:
		extractor = noaa.NewClient(cfg.NOAABaseURL, cfg.Station, cfg.RequestTimeout, logger)
		decoder = metar.NewDecoder(clock)
	}

	// Missing assets are not fatal here: the composer fails the render and
	// the error image is deployed instead.
	assets, err := render.LoadAssets(cfg.AssetsDir, cfg.FontPath)
	if err != nil {
		logger.Error("failed to load image assets", "dir", cfg.AssetsDir, "error", err)
	}
	composer := render.NewComposer(assets, cfg.Location)

	opts := []pipeline.Option{pipeline.WithClock(clock)}
	if cfg.DeployEnabled {
		client := pisignage.NewClient(
			cfg.PiSignageBaseURL,
			cfg.PiSignageEmail,
			cfg.PiSignagePassword,
			pisignage.DefaultDeployConfig(cfg.GroupID, cfg.Playlist),
			cfg.RequestTimeout,
			clock,
			logger,
		)
		opts = append(opts, pipeline.WithDeployer(pipeline.NewCoordinator(client, pipeline.DeployOptions{
			AssetName:     cfg.AssetName,
			Playlist:      cfg.Playlist,
			AssetDuration: cfg.AssetDuration,
		}, logger, metrics)))
	} else {
		logger.Info("deploy disabled, image will only be saved", "path", cfg.OutputPath)
	}

	var publisher *kafkaadapter.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		opts = append(opts, pipeline.WithPublisher(publisher))
	}

	p := pipeline.New(extractor, decoder, composer, cfg.OutputPath, cfg.Location, logger, metrics, opts...)

	logger.Info("run started", "source", cfg.MetarSource, "deploy", cfg.DeployEnabled)
	outcome, runErr := p.Run(ctx)

	// The run context may already be cancelled; give cleanup its own deadline.
	cleanupCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(cleanupCtx, cfg.PushgatewayURL, metricsJob, cfg.Station); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
	}

	if runErr != nil {
		logger.Error("run failed", "error", runErr)
		return 1
	}
	logger.Info("run complete",
		"condition", outcome.Condition.String(),
		"degraded", outcome.Degraded,
		"deployed", outcome.Deployed,
		"image", outcome.ImagePath,
	)
	return 0
}
