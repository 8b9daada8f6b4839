package spindle

import (
	"context"
	"testing"
	"time"

	"github.com/oliverbestmann/spindle/spoke"
	"github.com/stretchr/testify/require"
)

type noDeps struct{}

func buildWorld(t *testing.T, configure func(app *App[noDeps])) *World {
	t.Helper()

	var app App[noDeps]
	AddComponent[Position](&app)
	AddComponent[Velocity](&app)
	AddComponent[Health](&app)

	if configure != nil {
		configure(&app)
	}

	world, err := app.Build(context.Background(), noDeps{})
	require.NoError(t, err)

	return world
}

func recordingSystem(log *[]string, name string) System {
	return Named(name, SystemFunc(func(res *Resources, t, dt time.Duration) {
		*log = append(*log, name)
	}))
}

func TestWorld_StageOrder(t *testing.T) {
	var log []string

	world := buildWorld(t, func(app *App[noDeps]) {
		// registered out of stage order on purpose
		app.AddSystems(StageRender, recordingSystem(&log, "render"))
		app.AddSystems(StageUpdate, recordingSystem(&log, "update-a"), recordingSystem(&log, "update-b"))
		app.AddSystems(StageFixedUpdate, recordingSystem(&log, "fixed"))
	})

	world.FixedUpdate(0, time.Millisecond)
	world.Update(0, time.Millisecond)
	world.Render(0, time.Millisecond)

	require.Equal(t, []string{"fixed", "update-a", "update-b", "render"}, log)
	require.Equal(t, 2, world.Systems(StageUpdate).Len())
}

func TestWorld_CreateAndDestroyEntities(t *testing.T) {
	world := buildWorld(t, nil)
	res := world.Resources()

	queue := Write[EventQueue[EntityEvent]](res)
	receiver := queue.Get().Subscribe()
	queue.Release()

	RequestCreate(res, func(res *Resources, entity spoke.Entity) {
		positions, guard := WriteStorage[Position](res)
		defer guard.Release()

		positions.Insert(entity.Index, Position{X: 1, Y: 2})
	})

	RequestCreate(res, nil)

	require.Equal(t, LoopContinue, world.Maintain())

	queue = Write[EventQueue[EntityEvent]](res)
	events := queue.Get().Receive(receiver)
	queue.Release()

	first := spoke.Entity{Index: 0, Generation: 1}
	second := spoke.Entity{Index: 1, Generation: 1}

	require.Equal(t, []EntityEvent{EntityCreated{Entity: first}, EntityCreated{Entity: second}}, events)

	positions, guard := ReadStorage[Position](res)
	value, ok := positions.Get(first.Index)
	guard.Release()

	require.True(t, ok)
	require.Equal(t, 1.0, value.X)

	// destroy the first entity twice, the second request is stale
	RequestDestroy(res, first)
	RequestDestroy(res, first)

	require.Equal(t, LoopContinue, world.Maintain())

	queue = Write[EventQueue[EntityEvent]](res)
	events = queue.Get().Receive(receiver)
	queue.Release()

	require.Equal(t, []EntityEvent{EntityDestroyed{Entity: first}}, events)

	// the component was removed together with the entity
	positions, guard = ReadStorage[Position](res)
	_, ok = positions.Get(first.Index)
	guard.Release()
	require.False(t, ok)

	entities := Read[spoke.Entities](res)
	alive := entities.Get()
	require.Equal(t, 1, alive.Len())
	entities.Release()

	// the slot gets reused with a fresh generation and without the old components
	RequestCreate(res, nil)
	world.Maintain()

	entities = Read[spoke.Entities](res)
	alive = entities.Get()
	current, _ := alive.Get(0)
	entities.Release()
	require.Equal(t, spoke.Generation(3), current.Generation)

	positions, guard = ReadStorage[Position](res)
	_, ok = positions.Get(0)
	guard.Release()
	require.False(t, ok)
}

func TestWorld_Abort(t *testing.T) {
	world := buildWorld(t, func(app *App[noDeps]) {
		app.AddSystems(StageUpdate, SystemFunc(func(res *Resources, t, dt time.Duration) {
			if t >= 2*time.Second {
				RequestAbort(res, "time is up")
			}
		}))
	})

	world.Update(time.Second, time.Second)
	require.Equal(t, LoopContinue, world.Maintain())

	world.Update(2*time.Second, time.Second)
	require.Equal(t, LoopAbort, world.Maintain())

	// abort requests are consumed
	require.Equal(t, LoopContinue, world.Maintain())
}

func TestWorld_Clear(t *testing.T) {
	var log []string

	world := buildWorld(t, func(app *App[noDeps]) {
		AddResource(app, Score(42))
		app.AddSystems(StageUpdate, recordingSystem(&log, "update"))
	})

	score := Read[Score](world.Resources())
	require.Equal(t, Score(42), score.Get())
	score.Release()

	world.Clear()

	require.Equal(t, 0, world.Systems(StageUpdate).Len())
	require.Equal(t, 0, world.Resources().Len())

	_, err := TryRead[Score](world.Resources())
	require.ErrorIs(t, err, ErrResourceMissing)

	require.Panics(t, func() { Read[Score](world.Resources()) })
	require.Panics(t, func() { world.Maintain() })

	// running a stage after clear runs nothing
	world.Update(0, 0)
	require.Empty(t, log)
}

func TestWorld_TimingStats(t *testing.T) {
	world := buildWorld(t, func(app *App[noDeps]) {
		AddResource(app, NewTimingStats())

		app.AddSystems(StageUpdate, Named("sleepy", SystemFunc(func(res *Resources, t, dt time.Duration) {
			time.Sleep(time.Millisecond)
		})))
	})

	world.Update(0, 0)
	world.Update(0, 0)

	stats := Read[TimingStats](world.Resources())
	defer stats.Release()

	key := SystemKey{Stage: StageUpdate, Name: "sleepy"}
	require.Equal(t, []SystemKey{key}, stats.Get().SystemOrder)

	timings := stats.Get().BySystem[key]
	require.Equal(t, 2, timings.Count)
	require.GreaterOrEqual(t, timings.Min, time.Millisecond)

	require.Equal(t, 2, stats.Get().ByStage[StageUpdate].Count)
	require.Equal(t, 0, stats.Get().ByStage[StageRender].Count)
}

func TestWorld_SystemsUseJoins(t *testing.T) {
	world := buildWorld(t, func(app *App[noDeps]) {
		app.AddSystems(StageFixedUpdate, SystemFunc(func(res *Resources, t, dt time.Duration) {
			positions, posGuard := WriteStorage[Position](res)
			defer posGuard.Release()

			velocities, velGuard := ReadStorage[Velocity](res)
			defer velGuard.Release()

			for pos, vel := range spoke.Join2(spoke.Write(positions), spoke.Read(velocities)).Items() {
				pos.X += vel.X * dt.Seconds()
				pos.Y += vel.Y * dt.Seconds()
			}
		}))
	})

	res := world.Resources()

	RequestCreate(res, func(res *Resources, entity spoke.Entity) {
		positions, posGuard := WriteStorage[Position](res)
		defer posGuard.Release()

		velocities, velGuard := WriteStorage[Velocity](res)
		defer velGuard.Release()

		positions.Insert(entity.Index, Position{})
		velocities.Insert(entity.Index, Velocity{X: 2, Y: -4})
	})

	world.Maintain()

	world.FixedUpdate(0, 500*time.Millisecond)

	positions, guard := ReadStorage[Position](res)
	defer guard.Release()

	require.Equal(t, Position{X: 1, Y: -2}, positions.GetUnchecked(0))
}
