package demo

import (
	"math/rand/v2"

	"github.com/oliverbestmann/spindle"
	"github.com/oliverbestmann/spindle/spoke"
)

type Position struct {
	spoke.Component[Position]
	X, Y float64
}

type Velocity struct {
	spoke.Component[Velocity]
	X, Y float64
}

// Lifetime destroys its entity once the timer finishes.
type Lifetime struct {
	spoke.DenseComponent[Lifetime]
	Timer spindle.Timer
}

// Special marks a few dots that are drawn differently.
type Special struct {
	spoke.MapComponent[Special]
	Glyph string
}

// Bounds is the simulated area. Dots bounce off its edges.
type Bounds struct {
	Width, Height float64
}

// Spawner periodically spawns new dots.
type Spawner struct {
	Timer spindle.Timer

	Count        int
	SpecialEvery int
	Lifetime     spindle.Timer
	MaxSpeed     float64

	// number of dots spawned so far
	Spawned int
}

// Population tracks the entity events of the world.
type Population struct {
	Alive     int
	Created   int
	Destroyed int
}

// Rand is the random source of the simulation.
type Rand struct {
	*rand.Rand
}

func NewRand(seed uint64) Rand {
	return Rand{Rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}
