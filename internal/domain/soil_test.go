package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// series builds an hourly precipitation series summing to total.
func series(total float64, hours int) []float64 {
	s := make([]float64, hours)
	for i := range s {
		s[i] = total / float64(hours)
	}
	return s
}

func TestAssessSoil(t *testing.T) {
	tests := []struct {
		name        string
		hourly      []float64
		accumulated float64
		saturation  float64
		condition   GroundCondition
	}{
		{
			// 300mm: effective load 156, saturation min(156/120*100, 100)=100.
			name:        "monsoon deluge fully saturates",
			hourly:      series(300, 48),
			accumulated: 300,
			saturation:  100,
			condition:   GroundFullySaturated,
		},
		{
			// 240mm: load 96, saturation 80.
			name:        "heavy rain is wet and muddy",
			hourly:      series(240, 48),
			accumulated: 240,
			saturation:  80,
			condition:   GroundWetMuddy,
		},
		{
			// 192mm: load 48, saturation 40.
			name:        "sustained rain leaves ground damp",
			hourly:      series(192, 48),
			accumulated: 192,
			saturation:  40,
			condition:   GroundDamp,
		},
		{
			// Below the 144mm drainage budget nothing accumulates.
			name:        "drainage absorbs light rain",
			hourly:      series(100, 48),
			accumulated: 100,
			saturation:  0,
			condition:   GroundDryStable,
		},
		{
			name:        "no rain",
			hourly:      series(0, 48),
			accumulated: 0,
			saturation:  0,
			condition:   GroundDryStable,
		},
		{
			name:        "nil series treated as zero accumulation",
			hourly:      nil,
			accumulated: 0,
			saturation:  0,
			condition:   GroundDryStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AssessSoil(tt.hourly)
			assert.InDelta(t, tt.accumulated, result.Accumulated48hMM, 1e-9)
			assert.InDelta(t, tt.saturation, result.SaturationPct, 1e-9)
			assert.Equal(t, tt.condition, result.Condition)
		})
	}
}

func TestAssessSoil_SaturationBounds(t *testing.T) {
	// Saturation must stay in [0, 100] for any non-negative accumulation.
	for _, total := range []float64{0, 1, 144, 145, 264, 1000, 1e6} {
		result := AssessSoil(series(total, 48))
		assert.GreaterOrEqual(t, result.SaturationPct, 0.0, "total %v", total)
		assert.LessOrEqual(t, result.SaturationPct, 100.0, "total %v", total)
	}
}

func TestAssessSoil_LiteralSum(t *testing.T) {
	// The series is summed as-is regardless of length; there is no
	// alignment to "now".
	short := AssessSoil(series(150, 24))
	long := AssessSoil(series(150, 72))
	assert.InDelta(t, short.Accumulated48hMM, long.Accumulated48hMM, 1e-9)
}
