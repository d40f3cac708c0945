package util

import (
	"testing"
	"unicode/utf8"

	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name     string
		pct      float64
		length   uint
		style    model.BarStyle
		expected string
	}{
		{name: "empty circles", pct: 0, length: 5, style: model.BarCircles, expected: "○○○○○"},
		{name: "half blocks", pct: 50, length: 4, style: model.BarBlocks, expected: "▰▰▱▱"},
		{name: "full bar", pct: 100, length: 3, style: model.BarBar, expected: "███"},
		{name: "rounding dots", pct: 45, length: 10, style: model.BarDots, expected: "⬤⬤⬤⬤⬤○○○○○"},
		{name: "over hundred clamps", pct: 150, length: 4, style: model.BarCircles, expected: "●●●●"},
		{name: "negative clamps", pct: -20, length: 4, style: model.BarCircles, expected: "○○○○"},
		{name: "zero length", pct: 80, length: 0, style: model.BarCircles, expected: ""},
		{name: "unknown style falls back to circles", pct: 50, length: 2, style: "stars", expected: "●○"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderProgressBar(tt.pct, tt.length, tt.style))
		})
	}
}

func TestRenderProgressBarLengthAndMonotonic(t *testing.T) {
	styles := []model.BarStyle{model.BarCircles, model.BarBlocks, model.BarBar, model.BarDots}

	for _, style := range styles {
		for length := uint(0); length <= 25; length++ {
			var previous uint
			for pct := 0.0; pct <= 100; pct += 0.5 {
				bar := RenderProgressBar(pct, length, style)
				assert.Equal(t, int(length), utf8.RuneCountInString(bar), "style=%s length=%d pct=%v", style, length, pct)

				filled := FilledCount(pct, length)
				assert.GreaterOrEqual(t, filled, previous, "filled count must not decrease")
				assert.LessOrEqual(t, filled, length)
				previous = filled
			}
		}
	}
}

func TestDisplayWidthHelpers(t *testing.T) {
	assert.Equal(t, 5, GetDisplayWidth("hello"))
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, 6, GetDisplayWidth(PadRight("Weekly", 4)))
}
