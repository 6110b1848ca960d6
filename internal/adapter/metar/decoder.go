package metar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/metar-signage/internal/domain"
	"github.com/jonboulle/clockwork"
)

// ErrUnparsed is wrapped by every decode failure.
var ErrUnparsed = errors.New("unparsed metar")

const (
	metersPerMile = 1609.344
	inHgPerHPa    = 0.0295300
	knotsPerMPS   = 1.943844
	knotsPerKMH   = 0.539957
)

var (
	stationRe    = regexp.MustCompile(`^[A-Z][A-Z0-9]{3}$`)
	timeRe       = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})Z$`)
	windRe       = regexp.MustCompile(`^(\d{3}|VRB|///)(\d{2,3}|//)(?:G(\d{2,3}))?(KT|MPS|KMH)$`)
	windVarRe    = regexp.MustCompile(`^\d{3}V\d{3}$`)
	visMilesRe   = regexp.MustCompile(`^([MP])?(\d+)SM$`)
	visFracRe    = regexp.MustCompile(`^([MP])?(\d+)/(\d+)SM$`)
	visWholeRe   = regexp.MustCompile(`^\d$`)
	visMetersRe  = regexp.MustCompile(`^(\d{4})(?:NDV)?$`)
	rvrRe        = regexp.MustCompile(`^R\d{2}[LRC]?/`)
	skyClearRe   = regexp.MustCompile(`^(CLR|SKC|NSC|NCD)$`)
	skyLayerRe   = regexp.MustCompile(`^(FEW|SCT|BKN|OVC)(\d{3}|///)(?:CB|TCU|///)?$`)
	vertVisRe    = regexp.MustCompile(`^VV(\d{3}|///)$`)
	tempRe       = regexp.MustCompile(`^(M?\d{2}|//)/(M?\d{2}|//)?$`)
	altInHgRe    = regexp.MustCompile(`^A(\d{4})$`)
	altHPaRe     = regexp.MustCompile(`^Q(\d{4})$`)
	terminalRe   = regexp.MustCompile(`^(RMK|TEMPO|BECMG|NOSIG|=)$`)
	modifierRe   = regexp.MustCompile(`^(AUTO|COR|RTD)$`)
	recentWxRe   = regexp.MustCompile(`^RE[A-Z]{2,}$`)
	windShearRe  = regexp.MustCompile(`^WS$`)
	runwayTokRe  = regexp.MustCompile(`^(R\d{2}[LRC]?|ALL|RWY)$`)
	skippedWords = map[string]bool{"METAR": true, "SPECI": true}
)

// Decoder turns raw METAR text into a domain.Report. It implements
// pipeline.Decoder for observations from the NWS text feed.
type Decoder struct {
	clock clockwork.Clock
}

// NewDecoder creates a Decoder. The clock supplies the reference month when a
// feed carries no issue date.
func NewDecoder(clock clockwork.Clock) *Decoder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Decoder{clock: clock}
}

// Decode parses raw.RawCode. The observation day comes from the report; month
// and year come from raw.IssuedAt, or from the clock when that is zero.
func (d *Decoder) Decode(raw domain.RawObservation) (domain.Report, error) {
	ref := raw.IssuedAt
	if ref.IsZero() {
		ref = d.clock.Now()
	}
	return Parse(raw.RawCode, ref)
}

// Parse decodes a METAR string. Groups after RMK (and trend groups) are not
// decoded. Any unrecognised group before that is an error.
func Parse(code string, ref time.Time) (domain.Report, error) {
	code = strings.TrimSpace(code)
	fields := strings.Fields(code)
	for len(fields) > 0 && skippedWords[fields[0]] {
		fields = fields[1:]
	}
	if len(fields) < 2 {
		return domain.Report{}, fmt.Errorf("%w: too few groups in %q", ErrUnparsed, code)
	}

	r := domain.Report{RawCode: code}

	if !stationRe.MatchString(fields[0]) {
		return domain.Report{}, fmt.Errorf("%w: bad station %q", ErrUnparsed, fields[0])
	}
	r.Station = fields[0]

	observedAt, err := parseTime(fields[1], ref)
	if err != nil {
		return domain.Report{}, err
	}
	r.ObservedAt = observedAt

	groups := fields[2:]
	for i := 0; i < len(groups); i++ {
		g := groups[i]
		if terminalRe.MatchString(g) {
			break
		}

		switch {
		case modifierRe.MatchString(g), windVarRe.MatchString(g), rvrRe.MatchString(g), recentWxRe.MatchString(g):
			continue
		case windShearRe.MatchString(g):
			// "WS R27" / "WS ALL RWY"
			for i+1 < len(groups) && runwayTokRe.MatchString(groups[i+1]) {
				i++
			}
		case g == "CAVOK":
			r.VisibilityMiles = domain.Ptr(10000 / metersPerMile)
			r.SkyLayers = append(r.SkyLayers, domain.SkyLayer{Cover: domain.CoverClear})
		case windRe.MatchString(g):
			applyWind(&r, windRe.FindStringSubmatch(g))
		case visWholeRe.MatchString(g) && i+1 < len(groups) && visFracRe.MatchString(groups[i+1]):
			whole, _ := strconv.ParseFloat(g, 64)
			frac := fraction(visFracRe.FindStringSubmatch(groups[i+1]))
			r.VisibilityMiles = domain.Ptr(whole + frac)
			i++
		case visMilesRe.MatchString(g):
			m := visMilesRe.FindStringSubmatch(g)
			v, _ := strconv.ParseFloat(m[2], 64)
			r.VisibilityMiles = domain.Ptr(v)
		case visFracRe.MatchString(g):
			r.VisibilityMiles = domain.Ptr(fraction(visFracRe.FindStringSubmatch(g)))
		case visMetersRe.MatchString(g) && r.VisibilityMiles == nil:
			meters, _ := strconv.Atoi(visMetersRe.FindStringSubmatch(g)[1])
			if meters == 9999 {
				meters = 10000
			}
			r.VisibilityMiles = domain.Ptr(float64(meters) / metersPerMile)
		case skyClearRe.MatchString(g):
			r.SkyLayers = append(r.SkyLayers, domain.SkyLayer{Cover: domain.CoverClear})
		case skyLayerRe.MatchString(g):
			m := skyLayerRe.FindStringSubmatch(g)
			r.SkyLayers = append(r.SkyLayers, domain.SkyLayer{Cover: domain.Cover(m[1]), HeightFeet: hundredsOfFeet(m[2])})
		case vertVisRe.MatchString(g):
			// An indefinite ceiling is reported as vertical visibility.
			m := vertVisRe.FindStringSubmatch(g)
			r.SkyLayers = append(r.SkyLayers, domain.SkyLayer{Cover: domain.CoverOvercast, HeightFeet: hundredsOfFeet(m[1])})
		case tempRe.MatchString(g):
			m := tempRe.FindStringSubmatch(g)
			r.TemperatureC = signedCelsius(m[1])
			r.DewpointC = signedCelsius(m[2])
		case altInHgRe.MatchString(g):
			v, _ := strconv.Atoi(altInHgRe.FindStringSubmatch(g)[1])
			r.AltimeterInHg = domain.Ptr(float64(v) / 100)
		case altHPaRe.MatchString(g):
			v, _ := strconv.Atoi(altHPaRe.FindStringSubmatch(g)[1])
			r.AltimeterInHg = domain.Ptr(float64(v) * inHgPerHPa)
		default:
			wx, ok := DescribeWeather(g)
			if !ok {
				return domain.Report{}, fmt.Errorf("%w: unexpected group %q", ErrUnparsed, g)
			}
			r.PresentWeather = append(r.PresentWeather, wx)
		}
	}

	return r, nil
}

// parseTime resolves a DDHHMMZ group against ref. A day later than ref's day
// belongs to the previous month, or to the latest earlier month that has
// that day.
func parseTime(group string, ref time.Time) (time.Time, error) {
	m := timeRe.FindStringSubmatch(group)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: bad time group %q", ErrUnparsed, group)
	}
	day, _ := strconv.Atoi(m[1])
	hour, _ := strconv.Atoi(m[2])
	minute, _ := strconv.Atoi(m[3])
	if day < 1 || day > 31 || hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: bad time group %q", ErrUnparsed, group)
	}

	ref = ref.UTC()
	year, month := ref.Year(), ref.Month()
	if day > ref.Day() {
		month--
	}
	for day > daysIn(year, month) {
		month--
	}
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC), nil
}

// daysIn returns the length of month, which may be out of range and is
// normalized the way time.Date does.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func applyWind(r *domain.Report, m []string) {
	factor := 1.0
	switch m[4] {
	case "MPS":
		factor = knotsPerMPS
	case "KMH":
		factor = knotsPerKMH
	}

	if m[1] != "VRB" && m[1] != "///" {
		dir, _ := strconv.Atoi(m[1])
		r.WindDirectionDeg = domain.Ptr(dir % 360)
	}
	if m[2] != "//" {
		speed, _ := strconv.ParseFloat(m[2], 64)
		r.WindSpeedKt = domain.Ptr(speed * factor)
	}
	if m[3] != "" {
		gust, _ := strconv.ParseFloat(m[3], 64)
		r.WindGustKt = domain.Ptr(gust * factor)
	}
	// Calm is reported as 00000KT; a zero direction then carries no meaning.
	if r.WindSpeedKt != nil && *r.WindSpeedKt == 0 {
		r.WindDirectionDeg = nil
	}
}

func fraction(m []string) float64 {
	num, _ := strconv.ParseFloat(m[2], 64)
	den, _ := strconv.ParseFloat(m[3], 64)
	if den == 0 {
		return 0
	}
	return num / den
}

func hundredsOfFeet(s string) *int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return domain.Ptr(v * 100)
}

func signedCelsius(s string) *float64 {
	if s == "" || s == "//" {
		return nil
	}
	neg := strings.HasPrefix(s, "M")
	v, err := strconv.Atoi(strings.TrimPrefix(s, "M"))
	if err != nil {
		return nil
	}
	if neg {
		v = -v
	}
	return domain.Ptr(float64(v))
}
