package host

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterDelta(t *testing.T) {
	tests := []struct {
		name          string
		before, after uint64
		want          float64
	}{
		{"normal growth", 1000, 3048, 2048},
		{"no change", 500, 500, 0},
		{"reset clamps to zero", 1 << 40, 128, 0},
		{"wraparound clamps to zero", math.MaxUint64, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CounterDelta(tt.before, tt.after))
		})
	}
}
