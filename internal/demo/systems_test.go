package demo

import (
	"context"
	"testing"
	"time"

	"github.com/oliverbestmann/spindle"
	"github.com/oliverbestmann/spindle/spoke"
	"github.com/stretchr/testify/require"
)

func TestMirror(t *testing.T) {
	value, velocity := mirror(-2, -5, 10)
	require.Equal(t, 2.0, value)
	require.Equal(t, 5.0, velocity)

	value, velocity = mirror(12, 5, 10)
	require.Equal(t, 8.0, value)
	require.Equal(t, -5.0, velocity)

	value, velocity = mirror(4, 5, 10)
	require.Equal(t, 4.0, value)
	require.Equal(t, 5.0, velocity)
}

func TestSimulation(t *testing.T) {
	config := DefaultConfig()
	config.FixedStep = 10 * time.Millisecond
	config.SpawnInterval = 100 * time.Millisecond
	config.SpawnCount = 3
	config.SpecialEvery = 2
	config.Lifetime = 250 * time.Millisecond
	config.Duration = time.Second

	world, err := NewWorld(context.Background(), config)
	require.NoError(t, err)

	runner := spindle.NewRunner(world)

	var frames int
	for runner.Frame(20*time.Millisecond) == spindle.LoopContinue {
		frames += 1
		require.Less(t, frames, 1000, "simulation did not stop")

		assertInBounds(t, world.Resources(), config)
	}

	res := world.Resources()

	population := spindle.Read[Population](res)
	pop := population.Get()
	population.Release()

	require.Greater(t, pop.Created, 0)
	require.Greater(t, pop.Destroyed, 0)
	require.Equal(t, pop.Created-pop.Destroyed, pop.Alive)

	// components of destroyed entities were removed
	entities := spindle.Read[spoke.Entities](res)
	alive := entities.Get()
	entities.Release()

	lifetimes, guard := spindle.ReadStorage[Lifetime](res)
	defer guard.Release()

	require.Equal(t, alive.Len(), lifetimes.Len())

	specials, specialGuard := spindle.ReadStorage[Special](res)
	defer specialGuard.Release()

	require.Greater(t, specials.Len(), 0)
	require.Less(t, specials.Len(), lifetimes.Len())
}

func assertInBounds(t *testing.T, res *spindle.Resources, config Config) {
	t.Helper()

	positions, guard := spindle.ReadStorage[Position](res)
	defer guard.Release()

	for pos := range spoke.Join1(spoke.Read(positions)).Items() {
		require.GreaterOrEqual(t, pos.X, 0.0)
		require.LessOrEqual(t, pos.X, config.Width)
		require.GreaterOrEqual(t, pos.Y, 0.0)
		require.LessOrEqual(t, pos.Y, config.Height)
	}
}

func TestSimulation_Deterministic(t *testing.T) {
	run := func() []Position {
		config := DefaultConfig()
		config.Duration = 500 * time.Millisecond

		world, err := NewWorld(context.Background(), config)
		require.NoError(t, err)

		runner := spindle.NewRunner(world)
		for runner.Frame(16*time.Millisecond) == spindle.LoopContinue {
		}

		positions, guard := spindle.ReadStorage[Position](world.Resources())
		defer guard.Release()

		var result []Position
		for pos := range spoke.Join1(spoke.Read(positions)).Items() {
			result = append(result, pos)
		}

		return result
	}

	first := run()
	require.NotEmpty(t, first)
	require.Equal(t, first, run())
}
