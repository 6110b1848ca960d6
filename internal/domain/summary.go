package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	// StaleAfter is how old an observation may get before the summary warns about it.
	StaleAfter = 2 * time.Hour

	// StaleWarning heads the summary of an outdated observation.
	StaleWarning = "WARNING: METAR is more than 2 hours old"

	// Ellipsis replaces the last visible line of a truncated summary.
	Ellipsis = "..."

	missing = "missing"

	// Continuation lines are indented with spaces so they line up under the
	// first value in the proportional display face, not in a monospace one.
	skyIndent     = "        "
	weatherIndent = "                 "
)

// compassPoints is the 16-point compass rose starting at north.
var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// IsStale reports whether the observation is more than StaleAfter older than now.
// Exactly two hours is still fresh.
func IsStale(r Report, now time.Time) bool {
	return now.Sub(r.ObservedAt) > StaleAfter
}

// ComposeSummary renders the decoded report as display lines in a fixed order:
// staleness warning, time, flight condition, wind, visibility, sky, temperature,
// altimeter and present weather. loc is the zone used for the local time; nil
// means time.Local. Absent values render as "missing" rather than failing.
func ComposeSummary(r Report, now time.Time, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}

	var lines []string
	if IsStale(r, now) {
		lines = append(lines, StaleWarning, "")
	}

	lines = append(lines,
		timeLine(r.ObservedAt, loc),
		"Flight condition: "+ClassifyFlightCondition(r).Label(),
		"Wind: "+DescribeWind(r),
		"Visibility: "+describeVisibility(r.VisibilityMiles),
	)
	lines = append(lines, skyLines(r.SkyLayers)...)
	lines = append(lines,
		temperatureLine(r.TemperatureC, r.DewpointC),
		altimeterLine(r.AltimeterInHg),
	)
	lines = append(lines, prefixedLines("Weather: ", weatherIndent, r.PresentWeather)...)

	return lines
}

// TruncateLines caps lines at limit entries. When lines are dropped the last
// kept line becomes Ellipsis. The input slice is never modified.
func TruncateLines(lines []string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	if len(lines) <= limit {
		return append([]string(nil), lines...)
	}
	out := append([]string(nil), lines[:limit]...)
	out[limit-1] = Ellipsis
	return out
}

// CompassPoint maps a direction in degrees to its 16-point compass name.
func CompassPoint(deg int) string {
	deg = ((deg % 360) + 360) % 360
	idx := int(math.Floor((float64(deg)+11.25)/22.5)) % len(compassPoints)
	return compassPoints[idx]
}

// DescribeWind renders the wind group, e.g. "ESE (105) at 8 knots". The
// degree suffix appears only when the direction is known and the speed is
// known and above zero.
func DescribeWind(r Report) string {
	if r.WindSpeedKt == nil {
		if r.WindDirectionDeg != nil {
			return CompassPoint(*r.WindDirectionDeg)
		}
		return missing
	}

	speed := *r.WindSpeedKt
	if speed == 0 {
		return "calm"
	}

	var b strings.Builder
	if r.WindDirectionDeg != nil {
		fmt.Fprintf(&b, "%s (%03d)", CompassPoint(*r.WindDirectionDeg), *r.WindDirectionDeg)
	} else {
		b.WriteString("variable")
	}
	b.WriteString(" at " + knots(speed))
	if r.WindGustKt != nil && *r.WindGustKt > speed {
		b.WriteString(", gusting to " + knots(*r.WindGustKt))
	}
	return b.String()
}

func knots(v float64) string {
	n := int(math.Round(v))
	if n == 1 {
		return "1 knot"
	}
	return strconv.Itoa(n) + " knots"
}

func timeLine(observed time.Time, loc *time.Location) string {
	if observed.IsZero() {
		return "Time: " + missing
	}
	local := observed.In(loc)
	return fmt.Sprintf("Time: %s (%s Z) on %s",
		local.Format("15:04"), observed.UTC().Format("15:04"), local.Format("01/02"))
}

func describeVisibility(miles *float64) string {
	if miles == nil {
		return missing
	}
	v := displayMiles(*miles)
	unit := "miles"
	if v == 1 {
		unit = "mile"
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + unit
}

// displayMiles rounds visibility for the sign: whole miles from 3 up,
// quarter miles below.
func displayMiles(v float64) float64 {
	if v >= 3 {
		return math.Round(v)
	}
	return math.Round(v*4) / 4
}

// skyLines renders one line per layer. Any clear layer, or no layers at all,
// collapses the block to a single "Sky: clear".
func skyLines(layers []SkyLayer) []string {
	if len(layers) == 0 {
		return []string{"Sky: clear"}
	}
	for _, layer := range layers {
		if layer.Cover.IsClear() {
			return []string{"Sky: clear"}
		}
	}

	values := make([]string, 0, len(layers))
	for _, layer := range layers {
		v := layer.Cover.Description()
		if layer.HeightFeet != nil {
			v += " at " + humanize.Comma(int64(*layer.HeightFeet)) + " ft"
		}
		values = append(values, v)
	}
	return prefixedLines("Sky: ", skyIndent, values)
}

func temperatureLine(temp, dew *float64) string {
	if temp == nil {
		return "Temp: " + missing
	}
	dewText := missing
	if dew != nil {
		dewText = celsius(*dew)
	}
	return fmt.Sprintf("Temp: %s, Dew point: %s", celsius(*temp), dewText)
}

func celsius(v float64) string {
	return strconv.Itoa(int(math.RoundToEven(v))) + " °C"
}

func altimeterLine(inHg *float64) string {
	if inHg == nil {
		return "Altimeter: " + missing
	}
	return fmt.Sprintf("Altimeter: %.2f inHg", *inHg)
}

func prefixedLines(label, indent string, values []string) []string {
	out := make([]string, 0, len(values))
	for i, v := range values {
		if i == 0 {
			out = append(out, label+v)
			continue
		}
		out = append(out, indent+v)
	}
	return out
}
