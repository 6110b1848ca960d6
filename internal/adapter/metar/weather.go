package metar

import (
	"regexp"
	"strings"
)

var weatherRe = regexp.MustCompile(`^([-+]?)(VC)?(MI|PR|BC|DR|BL|SH|TS|FZ)?((?:DZ|RA|SN|SG|IC|PL|GR|GS|UP|BR|FG|FU|VA|DU|SA|HZ|PY|PO|SQ|FC|SS|DS)*)$`)

var descriptors = map[string]string{
	"MI": "shallow",
	"PR": "partial",
	"BC": "patches of",
	"DR": "low drifting",
	"BL": "blowing",
	"FZ": "freezing",
}

var phenomena = map[string]string{
	"DZ": "drizzle",
	"RA": "rain",
	"SN": "snow",
	"SG": "snow grains",
	"IC": "ice crystals",
	"PL": "ice pellets",
	"GR": "hail",
	"GS": "small hail",
	"UP": "unknown precipitation",
	"BR": "mist",
	"FG": "fog",
	"FU": "smoke",
	"VA": "volcanic ash",
	"DU": "dust",
	"SA": "sand",
	"HZ": "haze",
	"PY": "spray",
	"PO": "dust whirls",
	"SQ": "squalls",
	"FC": "funnel cloud",
	"SS": "sandstorm",
	"DS": "duststorm",
}

// DescribeWeather translates one present-weather group into words, e.g.
// "-TSRA" → "light thunderstorm with rain", "VCSH" → "showers in the vicinity".
// It returns false when g is not a weather group.
func DescribeWeather(g string) (string, bool) {
	m := weatherRe.FindStringSubmatch(g)
	if m == nil || (m[3] == "" && m[4] == "") {
		return "", false
	}
	intensity, vicinity, descriptor, codes := m[1], m[2], m[3], m[4]

	names := make([]string, 0, len(codes)/2)
	for i := 0; i+1 < len(codes); i += 2 {
		names = append(names, phenomena[codes[i:i+2]])
	}
	what := strings.Join(names, " and ")

	var text string
	switch descriptor {
	case "TS":
		text = "thunderstorm"
		if what != "" {
			text += " with " + what
		}
	case "SH":
		text = "showers"
		if what != "" {
			text = what + " showers"
		}
	case "":
		text = what
	default:
		text = strings.TrimSpace(descriptors[descriptor] + " " + what)
	}

	switch intensity {
	case "-":
		text = "light " + text
	case "+":
		text = "heavy " + text
	}
	if vicinity != "" {
		text += " in the vicinity"
	}
	return text, true
}

// DescribeWeatherString translates a space-separated weather string such as
// "-RA BR", skipping groups it does not recognise.
func DescribeWeatherString(s string) []string {
	var out []string
	for _, g := range strings.Fields(s) {
		if wx, ok := DescribeWeather(g); ok {
			out = append(out, wx)
		}
	}
	return out
}
