package ebitenloop

import (
	"fmt"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/oliverbestmann/spindle"
)

func toggleTimingsSystem(res *spindle.Resources, t, dt time.Duration) {
	if !inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		return
	}

	if spindle.Contains[spindle.TimingStats](res) {
		spindle.Remove[spindle.TimingStats](res)
	} else {
		spindle.Insert(res, spindle.NewTimingStats())
	}
}

// timingsOverlay draws the TimingStats resource, if it exists.
// The text is only updated every few frames and cached in between.
type timingsOverlay struct {
	frame int
	image *ebiten.Image
}

func (o *timingsOverlay) Run(res *spindle.Resources, t, dt time.Duration) {
	stats, err := spindle.TryRead[spindle.TimingStats](res)
	if err != nil {
		return
	}

	defer stats.Release()

	screen := spindle.Read[Screen](res)
	defer screen.Release()

	target := screen.Get().Image
	if target == nil {
		return
	}

	o.frame += 1
	if o.frame%30 != 0 && o.image != nil {
		target.DrawImage(o.image, nil)
		return
	}

	if o.image == nil || o.image.Bounds() != target.Bounds() {
		b := target.Bounds()
		o.image = ebiten.NewImage(b.Dx(), b.Dy())
	}

	o.image.Clear()

	for row, line := range formatTimings(stats.Get(), 250*time.Microsecond) {
		ebitenutil.DebugPrintAt(o.image, line, 16, 16+16*row)
	}

	target.DrawImage(o.image, nil)
}

// formatTimings formats one line per stage followed by one line per system
// that takes at least minSystemTime on average. Systems are sorted by their
// average time, slowest first.
func formatTimings(stats spindle.TimingStats, minSystemTime time.Duration) []string {
	var lines []string

	var maxNameLength int
	for _, key := range stats.SystemOrder {
		maxNameLength = max(maxNameLength, len(key.Name))
	}

	stages := []spindle.Stage{spindle.StageFixedUpdate, spindle.StageUpdate, spindle.StageRender}
	for _, stage := range stages {
		maxNameLength = max(maxNameLength, len(stage.String()))
	}

	format := func(name string, t spindle.Timings) string {
		return fmt.Sprintf("%-[1]*s runs=%5d, latest=%6.2fms, min=%6.2fms, max=%6.2fms, avg=%6.2fms",
			maxNameLength,
			name,
			t.Count,
			t.Latest.Seconds()*1000,
			t.Min.Seconds()*1000,
			t.Max.Seconds()*1000,
			t.MovingAverage.Seconds()*1000,
		)
	}

	for _, stage := range stages {
		t, ok := stats.ByStage[stage]
		if !ok {
			continue
		}

		lines = append(lines, format(stage.String(), t))
	}

	type system struct {
		Name    string
		Timings spindle.Timings
	}

	var systems []system
	for _, key := range stats.SystemOrder {
		t := stats.BySystem[key]
		if t.MovingAverage < minSystemTime {
			continue
		}

		systems = append(systems, system{key.Name, t})
	}

	slices.SortStableFunc(systems, func(a, b system) int {
		return int(b.Timings.MovingAverage - a.Timings.MovingAverage)
	})

	if len(systems) > 0 {
		lines = append(lines, "")
	}

	for _, sys := range systems {
		lines = append(lines, format(sys.Name, sys.Timings))
	}

	return lines
}
