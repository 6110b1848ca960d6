package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "metar_signage"

// Outcome label values for RunsTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
)

// Metrics holds the Prometheus collectors for one run. Each run is a short
// process, so the collectors live on a private registry that is pushed to a
// Pushgateway at exit rather than scraped.
type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec // labels: outcome={success,degraded,failed}
	StepFailures    *prometheus.CounterVec // labels: step, kind
	RunDuration     prometheus.Histogram
	FlightCondition *prometheus.GaugeVec // labels: station; 0 unknown .. 4 LIFR
	ReportAge       prometheus.Gauge
	LastSuccess     prometheus.Gauge
}

// NewMetrics creates all run metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed runs by outcome.",
		}, []string{"outcome"}),
		StepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_failures_total",
			Help:      "Failed steps by step name and error kind.",
		}, []string{"step", "kind"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full fetch, render and deploy run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		FlightCondition: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "flight_condition",
			Help:      "Flight condition of the last decoded report (0 unknown, 1 VFR, 2 MVFR, 3 IFR, 4 LIFR).",
		}, []string{"station"}),
		ReportAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_age_seconds",
			Help:      "Age of the decoded report when the run rendered it.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that reached the display.",
		}),
	}

	m.Registry.MustRegister(
		m.RunsTotal,
		m.StepFailures,
		m.RunDuration,
		m.FlightCondition,
		m.ReportAge,
		m.LastSuccess,
	)

	return m
}

// Push sends every collector to the Pushgateway at url, replacing the
// previous values for job and station.
func (m *Metrics) Push(ctx context.Context, url, job, station string) error {
	err := push.New(url, job).
		Gatherer(m.Registry).
		Grouping("station", station).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
