package ui

import (
	"github.com/gdamore/tcell/v2"
)

// Style definitions for the phosphor-green panel look
var (
	StyleValue   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	StyleLabel   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	StyleDim     = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	StyleTitle   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen)
	StyleCaution = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	StyleWarning = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true).Reverse(true)
	StyleStale   = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
)

// Envelope margin thresholds in percent
const (
	marginCaution = 20.0
	marginWarning = 10.0
)

// MarginStyle picks the display style for an envelope margin.
func MarginStyle(marginPct float64) tcell.Style {
	switch {
	case marginPct < marginWarning:
		return StyleWarning
	case marginPct < marginCaution:
		return StyleCaution
	default:
		return StyleValue
	}
}
