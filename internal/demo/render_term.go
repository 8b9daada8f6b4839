package demo

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/oliverbestmann/spindle"
	"github.com/oliverbestmann/spindle/spoke"
	"github.com/oliverbestmann/spindle/termloop"
)

var (
	dotStyle     = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	specialStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	statusStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// TerminalPlugin draws the simulation to a terminal using the termloop driver.
func TerminalPlugin(app *spindle.App[Config]) {
	termloop.Plugin(app)

	app.AddSystems(spindle.StageRender, spindle.Named("renderTerminal", spindle.SystemFunc(renderTerminalSystem)))
}

func renderTerminalSystem(res *spindle.Resources, t, dt time.Duration) {
	terminal := spindle.Read[termloop.Terminal](res)
	defer terminal.Release()

	screen := terminal.Get().Screen
	if screen == nil {
		return
	}

	// the last row holds the status line
	cols, rows := terminal.Get().Width, terminal.Get().Height-1
	if cols <= 0 || rows <= 0 {
		return
	}

	bounds := spindle.Read[Bounds](res)
	defer bounds.Release()

	population := spindle.Read[Population](res)
	defer population.Release()

	positions, posGuard := spindle.ReadStorage[Position](res)
	defer posGuard.Release()

	specials, specialGuard := spindle.ReadStorage[Special](res)
	defer specialGuard.Release()

	for idx, pos := range spoke.Join1(spoke.Read(positions)).Indexed() {
		x := cellOf(pos.X, bounds.Get().Width, cols)
		y := cellOf(pos.Y, bounds.Get().Height, rows)

		if special, ok := specials.Get(idx); ok {
			termloop.PutGlyph(screen, x, y, special.Glyph, specialStyle)
		} else {
			termloop.PutGlyph(screen, x, y, "o", dotStyle)
		}
	}

	pop := population.Get()
	status := fmt.Sprintf("alive=%d created=%d destroyed=%d", pop.Alive, pop.Created, pop.Destroyed)
	termloop.PutText(screen, 0, rows, status, statusStyle)
}

// cellOf maps a coordinate in [0, limit] to one of the given number of cells.
func cellOf(value, limit float64, cells int) int {
	cell := int(value / limit * float64(cells))
	return min(max(cell, 0), cells-1)
}
