package awc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/metar-signage/internal/adapter/metar"
	"github.com/couchcryptid/metar-signage/internal/domain"
)

const inHgPerHPa = 0.0295300

// ErrNoReport is returned when the API answers with an empty array.
var ErrNoReport = errors.New("metar api returned no report")

type cloudDTO struct {
	Cover string `json:"cover"`
	Base  *int   `json:"base"`
}

// metarDTO mirrors one element of the /api/data/metar JSON array. wdir may
// be a number or "VRB"; visib may be a number or "10+".
type metarDTO struct {
	ICAOId     string          `json:"icaoId"`
	ObsTime    int64           `json:"obsTime"`
	ReportTime string          `json:"reportTime"`
	Temp       *float64        `json:"temp"`
	Dewp       *float64        `json:"dewp"`
	Wdir       json.RawMessage `json:"wdir"`
	Wspd       *float64        `json:"wspd"`
	Wgst       *float64        `json:"wgst"`
	Visib      json.RawMessage `json:"visib"`
	Altim      *float64        `json:"altim"`
	WxString   string          `json:"wxString"`
	RawOb      string          `json:"rawOb"`
	Clouds     []cloudDTO      `json:"clouds"`
	FltCat     string          `json:"fltCat"`
}

func (m metarDTO) observedAt() time.Time {
	if m.ObsTime > 0 {
		return time.Unix(m.ObsTime, 0).UTC()
	}
	t, err := time.Parse(time.RFC3339, m.ReportTime)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func decodeResponse(body []byte) (metarDTO, error) {
	var items []metarDTO
	if err := json.Unmarshal(body, &items); err != nil {
		return metarDTO{}, fmt.Errorf("decode metar response: %w", err)
	}
	if len(items) == 0 {
		return metarDTO{}, ErrNoReport
	}
	return items[0], nil
}

// Decoder builds a report from the structured fields of an AWC payload, so
// no METAR text parsing is needed. It implements pipeline.Decoder.
type Decoder struct{}

// NewDecoder creates a Decoder.
func NewDecoder() *Decoder { return &Decoder{} }

// Decode converts raw.Payload into a report. Fields the API omits or nulls
// stay nil in the report.
func (d *Decoder) Decode(raw domain.RawObservation) (domain.Report, error) {
	m, err := decodeResponse(raw.Payload)
	if err != nil {
		return domain.Report{}, err
	}

	r := domain.Report{
		Station:        m.ICAOId,
		ObservedAt:     m.observedAt(),
		RawCode:        m.RawOb,
		WindSpeedKt:    m.Wspd,
		WindGustKt:     m.Wgst,
		TemperatureC:   m.Temp,
		DewpointC:      m.Dewp,
		PresentWeather: metar.DescribeWeatherString(m.WxString),
	}
	if r.Station == "" {
		r.Station = raw.Station
	}
	if m.Altim != nil {
		r.AltimeterInHg = domain.Ptr(*m.Altim * inHgPerHPa)
	}

	if dir, ok := numberOf(m.Wdir); ok && (r.WindSpeedKt == nil || *r.WindSpeedKt != 0) {
		r.WindDirectionDeg = domain.Ptr(int(dir) % 360)
	}
	if vis, ok := numberOf(m.Visib); ok {
		r.VisibilityMiles = domain.Ptr(vis)
	}

	for _, c := range m.Clouds {
		cover := domain.Cover(strings.ToUpper(c.Cover))
		switch cover {
		case "CAVOK", "NSC", "NCD":
			cover = domain.CoverClear
		case "OVX":
			cover = domain.CoverOvercast
		}
		layer := domain.SkyLayer{Cover: cover}
		if !cover.IsClear() && c.Base != nil {
			layer.HeightFeet = domain.Ptr(*c.Base)
		}
		r.SkyLayers = append(r.SkyLayers, layer)
	}

	return r, nil
}

// numberOf reads a JSON number or a numeric string such as "10+". "VRB" and
// null report false.
func numberOf(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimRight(s, "+"), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
