package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/couchcryptid/metar-signage/internal/domain"
	"github.com/couchcryptid/metar-signage/internal/observability"
	"github.com/couchcryptid/metar-signage/internal/render"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
)

// Extractor fetches the latest raw observation for the configured station.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawObservation, error)
}

// Decoder turns a raw observation into a structured report.
type Decoder interface {
	Decode(raw domain.RawObservation) (domain.Report, error)
}

// Composer draws the status image and the error image.
type Composer interface {
	Render(r domain.Report, now time.Time) (image.Image, error)
	RenderError(trace string, at time.Time) image.Image
}

// Deployer pushes encoded image bytes to the display.
type Deployer interface {
	Deploy(ctx context.Context, image []byte) error
}

// Publisher announces the decoded report to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev domain.ReportEvent) error
}

// Outcome summarises a completed run.
type Outcome struct {
	Report    domain.Report
	Summary   []string
	Condition domain.FlightCondition
	Degraded  bool // the error image was produced instead of the report
	ImagePath string
	Deployed  bool
}

// Pipeline runs one fetch, decode, render, save and deploy sequence.
type Pipeline struct {
	extractor  Extractor
	decoder    Decoder
	composer   Composer
	deployer   Deployer  // nil skips the signage steps
	publisher  Publisher // nil skips publishing
	outputPath string
	loc        *time.Location
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Option configures optional stages.
type Option func(*Pipeline)

// WithDeployer enables the signage deploy steps.
func WithDeployer(d Deployer) Option {
	return func(p *Pipeline) { p.deployer = d }
}

// WithPublisher enables report event publishing.
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// New creates a Pipeline. The image is always written to outputPath before
// any deploy step runs.
func New(e Extractor, d Decoder, c Composer, outputPath string, loc *time.Location, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	if loc == nil {
		loc = time.Local
	}
	p := &Pipeline{
		extractor:  e,
		decoder:    d,
		composer:   c,
		outputPath: outputPath,
		loc:        loc,
		clock:      clockwork.NewRealClock(),
		logger:     logger,
		metrics:    metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the full sequence once. A decode or render failure does not
// fail the run: the error image is produced and deployed instead, and the
// outcome is marked degraded. The returned error is always a *StepError for
// a fatal step.
func (p *Pipeline) Run(ctx context.Context) (Outcome, error) {
	start := p.clock.Now()
	outcome, err := p.run(ctx, start)

	p.metrics.RunDuration.Observe(p.clock.Since(start).Seconds())
	switch {
	case err != nil:
		p.metrics.RunsTotal.WithLabelValues(observability.OutcomeFailed).Inc()
	case outcome.Degraded:
		p.metrics.RunsTotal.WithLabelValues(observability.OutcomeDegraded).Inc()
		p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))
	default:
		p.metrics.RunsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
		p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))
	}
	return outcome, err
}

func (p *Pipeline) run(ctx context.Context, now time.Time) (Outcome, error) {
	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		return Outcome{}, p.fail(StepExtract, KindInput, err)
	}
	p.logger.Info("metar fetched", "station", raw.Station, "source", raw.Source, "raw", raw.RawCode)

	outcome, img := p.compose(raw, now)

	data, err := render.EncodePNG(img)
	if err != nil {
		return outcome, p.fail(StepEncode, KindCritical, err)
	}
	if err := render.WriteFile(p.outputPath, data); err != nil {
		return outcome, p.fail(StepSave, KindCritical, err)
	}
	outcome.ImagePath = p.outputPath
	p.logger.Info("image saved", "path", p.outputPath, "bytes", len(data), "degraded", outcome.Degraded)

	p.publish(ctx, outcome, now)

	if p.deployer == nil {
		p.logger.Info("deploy disabled, skipping signage update")
		return outcome, nil
	}
	if err := p.deployer.Deploy(ctx, data); err != nil {
		var se *StepError
		if !errors.As(err, &se) {
			se = &StepError{Step: StepDeploy, Kind: KindCritical, Err: err}
		}
		return outcome, p.fail(se.Step, se.Kind, se.Err)
	}
	outcome.Deployed = true
	p.logger.Info("image deployed", "condition", outcome.Condition.String())
	return outcome, nil
}

// compose decodes and renders the report, falling back to the error image
// on any failure along the way.
func (p *Pipeline) compose(raw domain.RawObservation, now time.Time) (Outcome, image.Image) {
	report, err := p.decoder.Decode(raw)
	if err != nil {
		p.recordFailure(StepDecode, KindCompose)
		return p.degraded(raw, err, now)
	}

	outcome := Outcome{
		Report:    report,
		Summary:   domain.ComposeSummary(report, now, p.loc),
		Condition: domain.ClassifyFlightCondition(report),
	}
	p.metrics.FlightCondition.WithLabelValues(report.Station).Set(float64(outcome.Condition))
	if !report.ObservedAt.IsZero() {
		p.metrics.ReportAge.Set(now.Sub(report.ObservedAt).Seconds())
	}
	if domain.IsStale(report, now) {
		p.logger.Warn("metar is stale", "observed_at", report.ObservedAt)
	}

	img, err := p.composer.Render(report, now)
	if err != nil {
		p.recordFailure(StepRender, KindCompose)
		p.logger.Error("report could not be rendered, using error image", "error", err)
		outcome.Degraded = true
		return outcome, p.composer.RenderError(stackTrace(err), now)
	}
	return outcome, img
}

// degraded handles an undecodable report. Only the station and raw text
// survive into the outcome.
func (p *Pipeline) degraded(raw domain.RawObservation, err error, now time.Time) (Outcome, image.Image) {
	p.logger.Error("report could not be decoded, using error image", "error", err)
	report := domain.Report{Station: raw.Station, RawCode: raw.RawCode}
	return Outcome{Report: report, Degraded: true}, p.composer.RenderError(stackTrace(err), now)
}

func (p *Pipeline) publish(ctx context.Context, outcome Outcome, now time.Time) {
	if p.publisher == nil {
		return
	}
	ev := domain.NewReportEvent(outcome.Report, outcome.Summary, now)
	ev.Degraded = outcome.Degraded
	if err := p.publisher.Publish(ctx, ev); err != nil {
		p.recordFailure(StepPublish, KindNonCritical)
		p.logger.Warn("report publish failed", "error", err)
	}
}

func (p *Pipeline) fail(step string, kind ErrorKind, err error) *StepError {
	p.recordFailure(step, kind)
	p.logger.Error("run aborted", "step", step, "kind", kind.String(), "error", err)
	return &StepError{Step: step, Kind: kind, Err: err}
}

func (p *Pipeline) recordFailure(step string, kind ErrorKind) {
	p.metrics.StepFailures.WithLabelValues(step, kind.String()).Inc()
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace formats err with the stack where it was created, or where it
// reached the pipeline when it carries none.
func stackTrace(err error) string {
	var st stackTracer
	if errors.As(err, &st) {
		return fmt.Sprintf("%+v", err)
	}
	return fmt.Sprintf("%+v", errors.WithStack(err))
}
