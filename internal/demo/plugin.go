// Package demo implements a small simulation of bouncing dots. Dots are
// spawned periodically, move with a fixed time step and are destroyed once
// their lifetime runs out.
package demo

import (
	"context"

	"github.com/oliverbestmann/spindle"
)

// Plugin adds the components, resources and systems of the simulation.
// Render systems are added by TerminalPlugin and EbitenPlugin.
func Plugin(app *spindle.App[Config]) {
	spindle.AddComponent[Position](app)
	spindle.AddComponent[Velocity](app)
	spindle.AddComponent[Lifetime](app)
	spindle.AddComponent[Special](app)

	spindle.AddResourceFrom(app, func(ctx context.Context, config Config) (Config, error) {
		return config, nil
	})

	spindle.AddResourceFrom(app, func(ctx context.Context, config Config) (spindle.FixedTime, error) {
		return spindle.FixedTime{StepInterval: config.FixedStep}, nil
	})

	spindle.AddResourceFrom(app, func(ctx context.Context, config Config) (Bounds, error) {
		return Bounds{Width: config.Width, Height: config.Height}, nil
	})

	spindle.AddResourceFrom(app, func(ctx context.Context, config Config) (Rand, error) {
		return NewRand(config.Seed), nil
	})

	spindle.AddResourceFrom(app, func(ctx context.Context, config Config) (Spawner, error) {
		timer := spindle.NewTimer(config.SpawnInterval, spindle.TimerRepeating)

		// spawn the first dots right away
		timer.Tick(config.SpawnInterval - 1)

		return Spawner{
			Timer:        timer,
			Count:        config.SpawnCount,
			SpecialEvery: config.SpecialEvery,
			Lifetime:     spindle.NewTimer(config.Lifetime, spindle.TimerOnce),
			MaxSpeed:     config.MaxSpeed,
		}, nil
	})

	spindle.AddResource(app, Population{})

	app.AddSystems(spindle.StageFixedUpdate,
		spindle.Named("move", spindle.SystemFunc(moveSystem)),
		spindle.Named("bounce", spindle.SystemFunc(bounceSystem)),
	)

	app.AddSystems(spindle.StageUpdate,
		spindle.Named("spawn", spindle.SystemFunc(spawnSystem)),
		spindle.Named("lifetime", spindle.SystemFunc(lifetimeSystem)),
	)

	app.AddSystemsWith(spindle.StageUpdate, newPopulationSystem)

	app.AddSystemsWith(spindle.StageUpdate, func(ctx context.Context, res *spindle.Resources) (spindle.System, error) {
		config := spindle.Read[Config](res)
		defer config.Release()

		return &stopAfter{duration: config.Get().Duration}, nil
	})
}

// NewWorld builds the simulation world. The plugins add driver specific systems.
func NewWorld(ctx context.Context, config Config, plugins ...spindle.PluginFunc[Config]) (*spindle.World, error) {
	var app spindle.App[Config]
	app.AddPlugin(spindle.PluginFunc[Config](Plugin))

	for _, plugin := range plugins {
		app.AddPlugin(plugin)
	}

	return app.Build(ctx, config)
}
