package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementPatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.0.3", "1.0.4"},
		{"0.0.0", "0.0.1"},
		{"2.15.9", "2.15.10"},
		{"10.20.99", "10.20.100"},
		// Major/minor pass through verbatim, even when not numeric.
		{"1.x.3", "1.x.4"},
		{"v1.0.3", "v1.0.4"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := IncrementPatch(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIncrementPatch_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"two components", "1.2"},
		{"four components", "1.2.3.4"},
		{"one component", "1"},
		{"empty", ""},
		{"non-integer patch", "1.2.x"},
		{"patch with suffix", "1.2.3-rc1"},
		{"blank patch", "1.2."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := IncrementPatch(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedVersion)
		})
	}
}

func TestClassifyEdit(t *testing.T) {
	tests := []struct {
		name string
		prev string
		curr string
		want EditKind
	}{
		{"patch upgrade", "1.0.3", "1.0.4", EditUpgrade},
		{"major upgrade", "1.0.3", "2.0.0", EditUpgrade},
		{"downgrade", "1.0.3", "0.9.0", EditDowngrade},
		{"not semver", "1.0.3", "banana", EditChanged},
		{"prev not semver", "weird", "1.0.0", EditChanged},
		{"equal", "1.0.3", "1.0.3", EditChanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyEdit(tt.prev, tt.curr))
		})
	}
}
