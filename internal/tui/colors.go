package tui

// Color constants for the focus screen.
const (
	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#B1B8C7"
	ColorFocus         = "#EF4444"
	ColorBreak         = "#22C55E"
	ColorWarning       = "#F59E0B"
	ColorHelpText      = "240"
)
