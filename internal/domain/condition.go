package domain

import "math"

// FlightCondition is the FAA flight-rule category derived from visibility and ceiling.
type FlightCondition int

const (
	ConditionUnknown FlightCondition = iota
	ConditionVFR
	ConditionMVFR
	ConditionIFR
	ConditionLIFR
)

// String returns the category code, e.g. "MVFR".
func (c FlightCondition) String() string {
	switch c {
	case ConditionVFR:
		return "VFR"
	case ConditionMVFR:
		return "MVFR"
	case ConditionIFR:
		return "IFR"
	case ConditionLIFR:
		return "LIFR"
	default:
		return "UNKNOWN"
	}
}

// Label returns the display form used on the sign.
func (c FlightCondition) Label() string {
	switch c {
	case ConditionLIFR:
		return "Low IFR"
	case ConditionUnknown:
		return "unknown"
	default:
		return c.String()
	}
}

// NoCeiling is returned by Ceiling when no broken or overcast layer is reported.
var NoCeiling = math.Inf(1)

// Ceiling returns the height in feet of the lowest broken or overcast layer,
// or NoCeiling. Layers of other covers are ignored whatever their height, as
// are ceiling layers without a reported height.
func Ceiling(r Report) float64 {
	ceiling := NoCeiling
	for _, layer := range r.SkyLayers {
		if !layer.Cover.IsCeiling() || layer.HeightFeet == nil {
			continue
		}
		ceiling = math.Min(ceiling, float64(*layer.HeightFeet))
	}
	return ceiling
}

// ClassifyFlightCondition applies the flight-rule thresholds in descending
// order; the first band whose visibility and ceiling minimums are both met wins.
//
//	VFR:  visibility >= 5 mi and ceiling >= 3000 ft
//	MVFR: visibility >= 3 mi and ceiling >= 1000 ft
//	IFR:  visibility >= 1 mi and ceiling >= 500 ft
//	LIFR: anything lower
//
// Missing visibility yields ConditionUnknown.
func ClassifyFlightCondition(r Report) FlightCondition {
	if r.VisibilityMiles == nil {
		return ConditionUnknown
	}
	visibility := *r.VisibilityMiles
	ceiling := Ceiling(r)

	switch {
	case visibility >= 5 && ceiling >= 3000:
		return ConditionVFR
	case visibility >= 3 && ceiling >= 1000:
		return ConditionMVFR
	case visibility >= 1 && ceiling >= 500:
		return ConditionIFR
	default:
		return ConditionLIFR
	}
}
