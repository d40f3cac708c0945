package constants

// Menu command identifiers
const (
	MenuOpenClaude = "open-claude"
	MenuRefresh    = "refresh"
	MenuSettings   = "settings"
	MenuQuit       = "quit"
)

// Progress bar glyph pairs (filled, empty)
var (
	GlyphsCircles = [2]string{"●", "○"}
	GlyphsBlocks  = [2]string{"▰", "▱"}
	GlyphsBar     = [2]string{"█", "░"}
	GlyphsDots    = [2]string{"⬤", "○"}
)
