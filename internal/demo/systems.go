package demo

import (
	"context"
	"time"

	"github.com/oliverbestmann/spindle"
	"github.com/oliverbestmann/spindle/spoke"
)

func moveSystem(res *spindle.Resources, t, dt time.Duration) {
	positions, posGuard := spindle.WriteStorage[Position](res)
	defer posGuard.Release()

	velocities, velGuard := spindle.ReadStorage[Velocity](res)
	defer velGuard.Release()

	secs := dt.Seconds()

	for pos, vel := range spoke.Join2(spoke.Write(positions), spoke.Read(velocities)).Items() {
		pos.X += vel.X * secs
		pos.Y += vel.Y * secs
	}
}

func bounceSystem(res *spindle.Resources, t, dt time.Duration) {
	bounds := spindle.Read[Bounds](res)
	defer bounds.Release()

	positions, posGuard := spindle.WriteStorage[Position](res)
	defer posGuard.Release()

	velocities, velGuard := spindle.WriteStorage[Velocity](res)
	defer velGuard.Release()

	width, height := bounds.Get().Width, bounds.Get().Height

	for pos, vel := range spoke.Join2(spoke.Write(positions), spoke.Write(velocities)).Items() {
		pos.X, vel.X = mirror(pos.X, vel.X, width)
		pos.Y, vel.Y = mirror(pos.Y, vel.Y, height)
	}
}

// mirror reflects a coordinate that left the range [0, limit] back into it
// and points the velocity inwards.
func mirror(value, velocity, limit float64) (float64, float64) {
	switch {
	case value < 0:
		return min(-value, limit), abs(velocity)

	case value > limit:
		return max(2*limit-value, 0), -abs(velocity)

	default:
		return value, velocity
	}
}

func abs(value float64) float64 {
	if value < 0 {
		return -value
	}

	return value
}

func spawnSystem(res *spindle.Resources, t, dt time.Duration) {
	spawner := spindle.Write[Spawner](res)
	defer spawner.Release()

	rng := spindle.Write[Rand](res)
	defer rng.Release()

	bounds := spindle.Read[Bounds](res)
	defer bounds.Release()

	sp := spawner.Get()

	count := sp.Timer.Tick(dt).TimesFinishedThisTick() * sp.Count

	for range count {
		sp.Spawned += 1

		dot := dotSpawn{
			Position: Position{
				X: rng.Get().Float64() * bounds.Get().Width,
				Y: rng.Get().Float64() * bounds.Get().Height,
			},
			Velocity: Velocity{
				X: (2*rng.Get().Float64() - 1) * sp.MaxSpeed,
				Y: (2*rng.Get().Float64() - 1) * sp.MaxSpeed,
			},
			Lifetime: Lifetime{Timer: sp.Lifetime},
		}

		if sp.SpecialEvery > 0 && sp.Spawned%sp.SpecialEvery == 0 {
			dot.Special = &Special{Glyph: "@"}
		}

		spindle.RequestCreate(res, dot.Spawn)
	}
}

// dotSpawn holds the components of a dot that is about to be created.
type dotSpawn struct {
	Position Position
	Velocity Velocity
	Lifetime Lifetime
	Special  *Special
}

func (d dotSpawn) Spawn(res *spindle.Resources, entity spoke.Entity) {
	insertComponent(res, entity, d.Position)
	insertComponent(res, entity, d.Velocity)
	insertComponent(res, entity, d.Lifetime)

	if d.Special != nil {
		insertComponent(res, entity, *d.Special)
	}
}

func insertComponent[C spoke.IsComponent[C]](res *spindle.Resources, entity spoke.Entity, value C) {
	storage, guard := spindle.WriteStorage[C](res)
	defer guard.Release()

	storage.Insert(entity.Index, value)
}

func lifetimeSystem(res *spindle.Resources, t, dt time.Duration) {
	entities := spindle.Read[spoke.Entities](res)
	defer entities.Release()

	lifetimes, guard := spindle.WriteStorage[Lifetime](res)
	defer guard.Release()

	alive := entities.Get()

	for idx, lifetime := range spoke.Join1(spoke.Write(lifetimes)).Indexed() {
		if !lifetime.Timer.Tick(dt).JustFinished() {
			continue
		}

		entity, ok := alive.Get(idx)
		if !ok {
			continue
		}

		spindle.RequestDestroy(res, entity)
	}
}

// newPopulationSystem subscribes to the entity events of the world and
// keeps the Population resource up to date.
func newPopulationSystem(ctx context.Context, res *spindle.Resources) (spindle.System, error) {
	queue := spindle.Write[spindle.EventQueue[spindle.EntityEvent]](res)
	defer queue.Release()

	receiver := spindle.Subscribe[Population](queue.Get())

	system := func(res *spindle.Resources, t, dt time.Duration) {
		queue := spindle.Write[spindle.EventQueue[spindle.EntityEvent]](res)
		defer queue.Release()

		population := spindle.Write[Population](res)
		defer population.Release()

		pop := population.Get()

		queue.Get().ReceiveFunc(receiver, func(event spindle.EntityEvent) {
			switch event.(type) {
			case spindle.EntityCreated:
				pop.Created += 1
				pop.Alive += 1

			case spindle.EntityDestroyed:
				pop.Destroyed += 1
				pop.Alive -= 1
			}
		})
	}

	return spindle.Named("population", spindle.SystemFunc(system)), nil
}

// stopAfter aborts the world once the simulation time passed the given duration.
type stopAfter struct {
	duration  time.Duration
	requested bool
}

func (s *stopAfter) Run(res *spindle.Resources, t, dt time.Duration) {
	if s.requested || s.duration <= 0 || t < s.duration {
		return
	}

	s.requested = true
	spindle.RequestAbort(res, "simulation time is up")
}

func (s *stopAfter) Name() string {
	return "stopAfter"
}
