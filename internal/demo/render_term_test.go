package demo

import (
	"context"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/oliverbestmann/spindle"
	"github.com/oliverbestmann/spindle/termloop"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestRenderTerminal(t *testing.T) {
	config := DefaultConfig()
	config.Width = 32
	config.Height = 3
	config.SpawnCount = 0

	world, err := NewWorld(context.Background(), config, TerminalPlugin)
	require.NoError(t, err)

	res := world.Resources()

	dots := []dotSpawn{
		{Position: Position{X: 0.5, Y: 0.5}},
		{Position: Position{X: 10.2, Y: 1.7}, Special: &Special{Glyph: "@"}},
		{Position: Position{X: 31.9, Y: 2.9}},
		// outside of the bounds, clamped to the edge
		{Position: Position{X: 40, Y: -1}},
	}

	for _, dot := range dots {
		dot.Lifetime = Lifetime{Timer: spindle.NewTimer(config.Lifetime, spindle.TimerOnce)}
		spindle.RequestCreate(res, dot.Spawn)
	}

	require.Equal(t, spindle.LoopContinue, world.Maintain())

	// updates the population
	world.Update(0, 0)

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	screen.SetSize(32, 4)

	spindle.Insert(res, termloop.Terminal{Screen: screen, Width: 32, Height: 4})

	world.Render(0, 0)

	rendered := strings.Join(termloop.Contents(screen), "\n") + "\n"

	g := goldie.New(t)
	g.Assert(t, "terminal", []byte(rendered))
}

func TestCellOf(t *testing.T) {
	require.Equal(t, 0, cellOf(-3, 10, 5))
	require.Equal(t, 0, cellOf(1.9, 10, 5))
	require.Equal(t, 1, cellOf(2, 10, 5))
	require.Equal(t, 4, cellOf(10, 10, 5))
	require.Equal(t, 4, cellOf(25, 10, 5))
}

