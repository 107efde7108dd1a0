// Package ui holds the shared drawing helpers for panels, labels and bars,
// plus the debug entity inspector.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme bundles the panel styling so every overlay reads the same.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	BarBg         rl.Color
	BarFill       rl.Color

	FontSize       int32
	HeaderFontSize int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
}

// DefaultTheme returns the ink-on-paper styling used everywhere.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:       rl.NewColor(32, 32, 38, 230),
		PanelBorder:   rl.NewColor(90, 90, 100, 255),
		SectionHeader: rl.NewColor(240, 235, 220, 255),
		LabelColor:    rl.NewColor(170, 170, 180, 255),
		ValueColor:    rl.NewColor(235, 235, 240, 255),
		BarBg:         rl.NewColor(55, 55, 62, 255),
		BarFill:       rl.NewColor(70, 110, 200, 255),

		FontSize:       16,
		HeaderFontSize: 20,
		LineHeight:     22,
		LabelWidth:     110,
		BarHeight:      12,
	}
}
