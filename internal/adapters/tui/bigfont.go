package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	glyphRows     = 5
	bigClockWidth = 40
)

// glyphBitmaps draws each clock character on a 3-wide grid ('#' is lit).
var glyphBitmaps = map[rune]string{
	'0': "### #.# #.# #.# ###",
	'1': ".#. ##. .#. .#. ###",
	'2': "### ..# ### #.. ###",
	'3': "### ..# ### ..# ###",
	'4': "#.# #.# ### ..# ..#",
	'5': "### #.. ### ..# ###",
	'6': "### #.. ### #.# ###",
	'7': "### ..# .#. .#. .#.",
	'8': "### #.# ### #.# ###",
	'9': "### #.# ### ..# ###",
	':': ". # . # .",
}

// glyph expands a bitmap into rows, doubling each cell horizontally so the
// digits keep their proportions in a terminal cell grid.
func glyph(ch rune) ([glyphRows]string, bool) {
	var rows [glyphRows]string
	bitmap, ok := glyphBitmaps[ch]
	if !ok {
		return rows, false
	}
	for i, row := range strings.Fields(bitmap) {
		var b strings.Builder
		for _, cell := range row {
			if cell == '#' {
				b.WriteString("██")
			} else {
				b.WriteString("  ")
			}
		}
		rows[i] = b.String()
	}
	return rows, true
}

// renderBigTime renders a clock string like "24:59" in block digits.
// Narrow terminals get a single bold line instead.
func renderBigTime(clock string, color lipgloss.Color, width int) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(color)
	if width < bigClockWidth {
		return style.Render(clock)
	}

	var lines [glyphRows]string
	for _, ch := range clock {
		rows, ok := glyph(ch)
		if !ok {
			continue
		}
		for i := range lines {
			if lines[i] != "" {
				lines[i] += " "
			}
			lines[i] += rows[i]
		}
	}

	styled := make([]string, glyphRows)
	for i, line := range lines {
		styled[i] = style.Render(line)
	}
	return strings.Join(styled, "\n")
}
