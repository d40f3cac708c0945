package util

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-claude-meter/internal/core/constants"
	"github.com/penwyp/go-claude-meter/internal/core/model"
)

// Terminal control sequences
const (
	ClearLine     = "\033[2K"
	CarriageStart = "\r"
	HideCursor    = "\033[?25l"
	ShowCursor    = "\033[?25h"
	ClearScreen   = "\033[2J"
	MoveHome      = "\033[H"
)

// GetDisplayWidth calculates the printed width of a string, counting wide glyphs
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadRight pads text with spaces to the given display width
func PadRight(text string, width int) string {
	return runewidth.FillRight(text, width)
}

// Glyphs returns the (filled, empty) glyph pair for a bar style; unknown styles use circles
func Glyphs(style model.BarStyle) (string, string) {
	pair := constants.GlyphsCircles
	switch style {
	case model.BarBlocks:
		pair = constants.GlyphsBlocks
	case model.BarBar:
		pair = constants.GlyphsBar
	case model.BarDots:
		pair = constants.GlyphsDots
	}
	return pair[0], pair[1]
}

// FilledCount returns round(pct/100*length) clamped to [0, length]
func FilledCount(pct float64, length uint) uint {
	filled := math.Round(pct / 100 * float64(length))
	if math.IsNaN(filled) || filled < 0 {
		return 0
	}
	if filled > float64(length) {
		return length
	}
	return uint(filled)
}

// RenderProgressBar renders exactly length glyphs: the filled share followed by empty glyphs
func RenderProgressBar(pct float64, length uint, style model.BarStyle) string {
	filledGlyph, emptyGlyph := Glyphs(style)
	filled := FilledCount(pct, length)

	var b strings.Builder
	b.WriteString(strings.Repeat(filledGlyph, int(filled)))
	b.WriteString(strings.Repeat(emptyGlyph, int(length-filled)))
	return b.String()
}
