package termloop

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// PutGlyph draws a single glyph at the given cell. Glyphs made of multiple
// runes, like some emoji, are drawn using combining characters.
// It returns the number of cells the glyph occupies.
func PutGlyph(screen tcell.Screen, x, y int, glyph string, style tcell.Style) int {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return 0
	}

	var combining []rune
	if len(runes) > 1 {
		combining = runes[1:]
	}

	screen.SetContent(x, y, runes[0], combining, style)

	width := runewidth.StringWidth(glyph)
	if width == 2 {
		// fill the second column to avoid artifacts
		screen.SetContent(x+1, y, ' ', nil, style)
	}

	return max(width, 1)
}

// PutText writes text starting at the given cell, stopping at the right edge of the screen.
func PutText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	screenWidth, _ := screen.Size()

	for _, r := range text {
		if x >= screenWidth {
			break
		}

		screen.SetContent(x, y, r, nil, style)
		x += max(runewidth.RuneWidth(r), 1)
	}
}

// Contents returns the characters currently on the screen, one string per row.
// Empty cells are returned as spaces.
func Contents(screen tcell.Screen) []string {
	width, height := screen.Size()

	rows := make([]string, 0, height)

	for y := range height {
		var row []rune

		for x := 0; x < width; x++ {
			primary, combining, _, cellWidth := screen.GetContent(x, y)
			if primary == 0 {
				primary = ' '
			}

			row = append(row, primary)
			row = append(row, combining...)

			if cellWidth == 2 {
				// the next cell is covered by this one
				x += 1
			}
		}

		rows = append(rows, string(row))
	}

	return rows
}
