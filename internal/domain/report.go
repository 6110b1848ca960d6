package domain

import "time"

// Cover is a METAR sky-cover code.
type Cover string

const (
	CoverClear     Cover = "CLR"
	CoverSkyClear  Cover = "SKC"
	CoverFew       Cover = "FEW"
	CoverScattered Cover = "SCT"
	CoverBroken    Cover = "BKN"
	CoverOvercast  Cover = "OVC"
)

// IsClear reports whether the cover code means no clouds at all.
func (c Cover) IsClear() bool {
	return c == CoverClear || c == CoverSkyClear
}

// IsCeiling reports whether a layer with this cover counts as a ceiling.
func (c Cover) IsCeiling() bool {
	return c == CoverBroken || c == CoverOvercast
}

// Description returns the lower-case word used in the summary text.
func (c Cover) Description() string {
	switch c {
	case CoverClear, CoverSkyClear:
		return "clear"
	case CoverFew:
		return "few"
	case CoverScattered:
		return "scattered"
	case CoverBroken:
		return "broken"
	case CoverOvercast:
		return "overcast"
	default:
		return string(c)
	}
}

// SkyLayer is a single reported cloud layer.
type SkyLayer struct {
	Cover      Cover `json:"cover"`
	HeightFeet *int  `json:"height_ft,omitempty"` // AGL, nil when not reported
}

// Report is an already-parsed METAR observation. Optional groups are nil when
// the observation omitted them. A Report is built once per run by a decoder
// and treated as read-only afterwards.
type Report struct {
	Station    string    `json:"station"`
	ObservedAt time.Time `json:"observed_at"`
	RawCode    string    `json:"raw_code"`

	WindDirectionDeg *int     `json:"wind_direction_deg,omitempty"` // nil for variable or missing
	WindSpeedKt      *float64 `json:"wind_speed_kt,omitempty"`
	WindGustKt       *float64 `json:"wind_gust_kt,omitempty"`

	VisibilityMiles *float64   `json:"visibility_mi,omitempty"`
	SkyLayers       []SkyLayer `json:"sky_layers,omitempty"`

	TemperatureC  *float64 `json:"temperature_c,omitempty"`
	DewpointC     *float64 `json:"dewpoint_c,omitempty"`
	AltimeterInHg *float64 `json:"altimeter_inhg,omitempty"`

	PresentWeather []string `json:"present_weather,omitempty"`
}

// Ptr returns a pointer to v. Decoders and tests use it to fill optional fields.
func Ptr[T any](v T) *T {
	return &v
}

// RawObservation is an undecoded observation as fetched from a weather source.
type RawObservation struct {
	Station  string
	Source   string    // "noaa" or "awc"
	RawCode  string    // METAR text
	IssuedAt time.Time // feed timestamp, zero when the source gave none
	Payload  []byte    // source document the decoder works from
}
