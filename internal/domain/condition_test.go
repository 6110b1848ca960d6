package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func layer(cover Cover, height int) SkyLayer {
	return SkyLayer{Cover: cover, HeightFeet: Ptr(height)}
}

func TestCeiling(t *testing.T) {
	tests := []struct {
		name     string
		layers   []SkyLayer
		expected float64
	}{
		{"no layers", nil, NoCeiling},
		{"clear", []SkyLayer{{Cover: CoverClear}}, NoCeiling},
		{"few and scattered only", []SkyLayer{layer(CoverFew, 200), layer(CoverScattered, 800)}, NoCeiling},
		{"single broken", []SkyLayer{layer(CoverBroken, 2500)}, 2500},
		{"lowest ceiling wins", []SkyLayer{layer(CoverFew, 500), layer(CoverOvercast, 4500), layer(CoverBroken, 1200)}, 1200},
		{"ceiling without height ignored", []SkyLayer{{Cover: CoverOvercast}, layer(CoverBroken, 9000)}, 9000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Ceiling(Report{SkyLayers: tt.layers}))
		})
	}
}

func TestCeiling_NoCeilingIsInfinite(t *testing.T) {
	assert.True(t, math.IsInf(Ceiling(Report{}), 1))
}

func TestClassifyFlightCondition(t *testing.T) {
	tests := []struct {
		name       string
		visibility *float64
		layers     []SkyLayer
		expected   FlightCondition
	}{
		{"missing visibility", nil, []SkyLayer{layer(CoverOvercast, 200)}, ConditionUnknown},
		{"VFR at boundary", Ptr(5.0), []SkyLayer{layer(CoverBroken, 3000)}, ConditionVFR},
		{"VFR clear sky", Ptr(10.0), nil, ConditionVFR},
		{"just below VFR visibility", Ptr(4.99), nil, ConditionMVFR},
		{"just below VFR ceiling", Ptr(10.0), []SkyLayer{layer(CoverOvercast, 2999)}, ConditionMVFR},
		{"MVFR at boundary", Ptr(3.0), []SkyLayer{layer(CoverBroken, 1000)}, ConditionMVFR},
		{"IFR at boundary", Ptr(1.0), []SkyLayer{layer(CoverOvercast, 500)}, ConditionIFR},
		{"IFR low ceiling good visibility", Ptr(10.0), []SkyLayer{layer(CoverOvercast, 800)}, ConditionIFR},
		{"LIFR below both", Ptr(0.99), []SkyLayer{layer(CoverOvercast, 499)}, ConditionLIFR},
		{"LIFR zero visibility", Ptr(0.0), nil, ConditionLIFR},
		{"few layers do not lower category", Ptr(10.0), []SkyLayer{layer(CoverFew, 100)}, ConditionVFR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Report{VisibilityMiles: tt.visibility, SkyLayers: tt.layers}
			assert.Equal(t, tt.expected, ClassifyFlightCondition(r))
		})
	}
}

func TestFlightCondition_Label(t *testing.T) {
	assert.Equal(t, "VFR", ConditionVFR.Label())
	assert.Equal(t, "MVFR", ConditionMVFR.Label())
	assert.Equal(t, "IFR", ConditionIFR.Label())
	assert.Equal(t, "Low IFR", ConditionLIFR.Label())
	assert.Equal(t, "unknown", ConditionUnknown.Label())
	assert.Equal(t, "LIFR", ConditionLIFR.String())
	assert.Equal(t, "UNKNOWN", ConditionUnknown.String())
}
