package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/couchcryptid/metar-signage/internal/domain"
	"github.com/couchcryptid/metar-signage/internal/observability"
)

// SignageService is the remote display server as seen by the deploy steps.
type SignageService interface {
	Authenticate(ctx context.Context) error
	DeleteFile(ctx context.Context, name string) error
	UploadFile(ctx context.Context, name string, data []byte) (json.RawMessage, error)
	PostUpload(ctx context.Context, files json.RawMessage) error
	GetPlaylist(ctx context.Context, name string) (domain.Playlist, error)
	UpdatePlaylistAssets(ctx context.Context, name string, assets []domain.AssetEntry) error
	Deploy(ctx context.Context, playlist domain.Playlist) error
}

// DeployOptions names the playlist slot the image occupies.
type DeployOptions struct {
	AssetName     string
	Playlist      string
	AssetDuration int // seconds
}

// Coordinator replaces the image asset in the playlist and activates it.
// It implements Deployer.
type Coordinator struct {
	svc     SignageService
	opts    DeployOptions
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCoordinator creates a Coordinator for svc.
func NewCoordinator(svc SignageService, opts DeployOptions, logger *slog.Logger, metrics *observability.Metrics) *Coordinator {
	return &Coordinator{svc: svc, opts: opts, logger: logger, metrics: metrics}
}

// Deploy runs the fixed step sequence: authenticate, delete the previous
// file, upload, post-upload, fetch the playlist, merge the asset, write the
// playlist back and issue the deploy command. Deleting the old file and the
// post-upload notice may fail without stopping the run; any other failure is
// returned as a critical *StepError and the remaining steps are skipped.
func (c *Coordinator) Deploy(ctx context.Context, image []byte) error {
	if err := c.svc.Authenticate(ctx); err != nil {
		return critical(StepAuthenticate, err)
	}

	if err := c.svc.DeleteFile(ctx, c.opts.AssetName); err != nil {
		c.nonCritical(StepDeletePrevious, err)
	} else {
		c.logger.Info("previous image deleted", "asset", c.opts.AssetName)
	}

	files, err := c.svc.UploadFile(ctx, c.opts.AssetName, image)
	if err != nil {
		return critical(StepUpload, err)
	}
	c.logger.Info("image uploaded", "asset", c.opts.AssetName, "bytes", len(image))

	if err := c.svc.PostUpload(ctx, files); err != nil {
		c.nonCritical(StepPostUpload, err)
	}

	playlist, err := c.svc.GetPlaylist(ctx, c.opts.Playlist)
	if err != nil {
		return critical(StepFetchPlaylist, err)
	}

	merged := domain.MergeAsset(playlist.Assets, domain.NewImageAsset(c.opts.AssetName, c.opts.AssetDuration))
	if err := c.svc.UpdatePlaylistAssets(ctx, c.opts.Playlist, merged); err != nil {
		return critical(StepUpdatePlaylist, err)
	}
	c.logger.Info("playlist updated", "playlist", c.opts.Playlist, "assets", len(merged))

	if err := c.svc.Deploy(ctx, domain.Playlist{Name: c.opts.Playlist, Assets: merged}); err != nil {
		return critical(StepDeploy, err)
	}
	return nil
}

func (c *Coordinator) nonCritical(step string, err error) {
	c.metrics.StepFailures.WithLabelValues(step, KindNonCritical.String()).Inc()
	c.logger.Warn("non-critical step failed, continuing", "step", step, "error", err)
}

func critical(step string, err error) *StepError {
	return &StepError{Step: step, Kind: KindCritical, Err: err}
}
