package demo

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/oliverbestmann/spindle"
	"github.com/oliverbestmann/spindle/ebitenloop"
	"github.com/oliverbestmann/spindle/spoke"
)

var (
	backgroundColor = color.NRGBA{R: 0x10, G: 0x14, B: 0x1c, A: 0xff}
	dotColor        = color.NRGBA{R: 0x5f, G: 0xd7, B: 0xff, A: 0xff}
	specialColor    = color.NRGBA{R: 0xff, G: 0xd7, B: 0x5f, A: 0xff}
)

const dotRadius = 4

// EbitenPlugin draws the simulation into a window using the ebitenloop driver.
func EbitenPlugin(app *spindle.App[Config]) {
	// the overlay of the driver is drawn on top
	app.AddSystems(spindle.StageRender, spindle.Named("renderEbiten", &ebitenRenderer{}))

	ebitenloop.Plugin(app)
}

type ebitenRenderer struct {
	dots     vector.Path
	specials vector.Path
}

func (r *ebitenRenderer) Run(res *spindle.Resources, t, dt time.Duration) {
	screen := spindle.Read[ebitenloop.Screen](res)
	defer screen.Release()

	target := screen.Get().Image
	if target == nil {
		return
	}

	bounds := spindle.Read[Bounds](res)
	defer bounds.Release()

	fixedTime := spindle.Read[spindle.FixedTime](res)
	defer fixedTime.Release()

	population := spindle.Read[Population](res)
	defer population.Release()

	positions, posGuard := spindle.ReadStorage[Position](res)
	defer posGuard.Release()

	velocities, velGuard := spindle.ReadStorage[Velocity](res)
	defer velGuard.Release()

	specials, specialGuard := spindle.ReadStorage[Special](res)
	defer specialGuard.Release()

	size := target.Bounds()
	scaleX := float64(size.Dx()) / bounds.Get().Width
	scaleY := float64(size.Dy()) / bounds.Get().Height

	// extrapolate positions by the time not yet simulated
	ahead := fixedTime.Get().Overstep().Seconds()

	r.dots.Reset()
	r.specials.Reset()

	for idx, row := range spoke.Join2(spoke.Read(positions), spoke.Read(velocities)).Indexed() {
		x := float32((row.First.X + row.Second.X*ahead) * scaleX)
		y := float32((row.First.Y + row.Second.Y*ahead) * scaleY)

		path := &r.dots
		if _, ok := specials.Get(idx); ok {
			path = &r.specials
		}

		path.MoveTo(x+dotRadius, y)
		path.Arc(x, y, dotRadius, 0, 2*math.Pi, vector.Clockwise)
	}

	target.Fill(backgroundColor)

	vector.FillPath(target, &r.dots, dotColor, true, vector.FillRuleNonZero)
	vector.FillPath(target, &r.specials, specialColor, true, vector.FillRuleNonZero)

	pop := population.Get()
	status := fmt.Sprintf("alive=%d created=%d destroyed=%d", pop.Alive, pop.Created, pop.Destroyed)
	ebitenutil.DebugPrintAt(target, status, 8, size.Dy()-20)
}
