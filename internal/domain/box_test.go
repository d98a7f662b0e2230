package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBox_Scale(t *testing.T) {
	tests := []struct {
		name  string
		box   Box
		ratio float64
		want  Box
	}{
		{name: "identity", box: Box{800, 200}, ratio: 1, want: Box{800, 200}},
		{name: "half", box: Box{800, 200}, ratio: 0.5, want: Box{400, 100}},
		{name: "rounds half up", box: Box{567, 50}, ratio: 0.16, want: Box{91, 8}},
		{name: "rounds to nearest", box: Box{567, 50}, ratio: 90.0 / 567.0, want: Box{90, 8}},
		{name: "upscale", box: Box{50, 50}, ratio: 1.8, want: Box{90, 90}},
		{name: "negative ratio clamps to zero", box: Box{10, 10}, ratio: -1, want: Box{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.box.Scale(tt.ratio))
		})
	}
}

func TestBox_Contains(t *testing.T) {
	tests := []struct {
		name  string
		box   Box
		other Box
		want  bool
	}{
		{name: "equal", box: Box{100, 100}, other: Box{100, 100}, want: true},
		{name: "larger in both", box: Box{200, 150}, other: Box{100, 100}, want: true},
		{name: "narrower", box: Box{90, 200}, other: Box{100, 100}, want: false},
		{name: "shorter", box: Box{200, 90}, other: Box{100, 100}, want: false},
		{name: "zero box contains nothing bigger", box: Box{}, other: Box{1, 1}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.box.Contains(tt.other))
		})
	}
}

func TestNewBox_ClampsNegative(t *testing.T) {
	assert.Equal(t, Box{0, 5}, NewBox(-3, 5))
	assert.True(t, NewBox(0, 5).IsZero())
	assert.Equal(t, "40x30", NewBox(40, 30).String())
}
