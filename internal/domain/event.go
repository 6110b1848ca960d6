package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// ReportEvent is the decoded observation as published to downstream consumers.
type ReportEvent struct {
	Station         string    `json:"station"`
	ObservedAt      time.Time `json:"observed_at"`
	RawCode         string    `json:"raw_code"`
	FlightCondition string    `json:"flight_condition"`
	CeilingFeet     *int      `json:"ceiling_ft,omitempty"` // nil when there is no ceiling
	Stale           bool      `json:"stale"`
	Summary         []string  `json:"summary"`
	Degraded        bool      `json:"degraded"` // error image was rendered instead of the report
	ProcessedAt     time.Time `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// NewReportEvent derives the published event from a report. summary is the
// composed line list (untruncated); now is the run time, used for the
// staleness flag and as ProcessedAt. A report without an observation time
// is never flagged stale.
func NewReportEvent(r Report, summary []string, now time.Time) ReportEvent {
	ev := ReportEvent{
		Station:         r.Station,
		ObservedAt:      r.ObservedAt,
		RawCode:         r.RawCode,
		FlightCondition: ClassifyFlightCondition(r).String(),
		Stale:           !r.ObservedAt.IsZero() && IsStale(r, now),
		Summary:         summary,
		ProcessedAt:     now,
	}
	if c := Ceiling(r); !math.IsInf(c, 1) {
		ev.CeilingFeet = Ptr(int(c))
	}
	return ev
}

// SerializeReportEvent marshals an event into an OutputEvent keyed by station.
func SerializeReportEvent(ev ReportEvent) (OutputEvent, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize report event: %w", err)
	}
	return OutputEvent{
		Key:   []byte(ev.Station),
		Value: data,
		Headers: map[string]string{
			"flight_condition": ev.FlightCondition,
			"processed_at":     ev.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
