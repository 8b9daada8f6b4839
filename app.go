package spindle

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/oliverbestmann/spindle/spoke"
)

// WithDependencies builds a value from the external dependencies passed to App.Build.
// It may block, e.g. to perform I/O, and should respect ctx.
type WithDependencies[D, R any] = func(ctx context.Context, deps D) (R, error)

// WithResources builds a value from resources that were built before.
type WithResources[R any] = func(ctx context.Context, res *Resources) (R, error)

type resourceInit[D any] struct {
	name  string
	build func(ctx context.Context, deps D, res *Resources) error
}

type systemInit struct {
	name  string
	build WithResources[System]
}

// App describes the resources and systems of a World. D is the type of the
// external dependencies that resources can be built from.
//
// Resources are built in the order they were added, then the systems of the
// fixed update, update and render stages, each in the order they were added.
//
// The zero value is an empty App ready to use.
type App[D any] struct {
	resources    []resourceInit[D]
	systems      [stageCount][]systemInit
	destroyHooks []DestroyHook
	logger       *slog.Logger
}

// Plugin bundles the configuration of an App.
type Plugin[D any] interface {
	ApplyTo(app *App[D])
}

type PluginFunc[D any] func(app *App[D])

func (plugin PluginFunc[D]) ApplyTo(app *App[D]) {
	plugin(app)
}

func (app *App[D]) AddPlugin(plugin Plugin[D]) {
	plugin.ApplyTo(app)
}

// SetLogger sets the logger of the World. Defaults to slog.Default().
func (app *App[D]) SetLogger(logger *slog.Logger) {
	app.logger = logger
}

// AddResource adds a resource with a fixed initial value.
func AddResource[R, D any](app *App[D], value R) {
	app.resources = append(app.resources, resourceInit[D]{
		name: reflect.TypeFor[R]().String(),
		build: func(ctx context.Context, deps D, res *Resources) error {
			Insert(res, value)
			return nil
		},
	})
}

// AddResourceFrom adds a resource built from the external dependencies.
func AddResourceFrom[R, D any](app *App[D], init WithDependencies[D, R]) {
	app.resources = append(app.resources, resourceInit[D]{
		name: reflect.TypeFor[R]().String(),
		build: func(ctx context.Context, deps D, res *Resources) error {
			value, err := init(ctx, deps)
			if err != nil {
				return err
			}

			Insert(res, value)
			return nil
		},
	})
}

// AddResourceWith adds a resource built from resources added before it.
func AddResourceWith[R, D any](app *App[D], init WithResources[R]) {
	app.resources = append(app.resources, resourceInit[D]{
		name: reflect.TypeFor[R]().String(),
		build: func(ctx context.Context, deps D, res *Resources) error {
			value, err := init(ctx, res)
			if err != nil {
				return err
			}

			Insert(res, value)
			return nil
		},
	})
}

// AddComponent adds the storage of component type C as a resource. Values of
// entities destroyed by the World are removed from this storage before their
// slot is reused.
func AddComponent[C spoke.IsComponent[C], D any](app *App[D]) {
	app.resources = append(app.resources, resourceInit[D]{
		name: reflect.TypeFor[spoke.Storage[C]]().String(),
		build: func(ctx context.Context, deps D, res *Resources) error {
			InsertStorage[C](res)
			return nil
		},
	})

	app.destroyHooks = append(app.destroyHooks, func(res *Resources, entity spoke.Entity) {
		storage, guard := WriteStorage[C](res)
		defer guard.Release()

		storage.Remove(entity.Index)
	})
}

// AddDestroyHook adds a hook that is run for each entity destroyed by the World.
func (app *App[D]) AddDestroyHook(hook DestroyHook) {
	app.destroyHooks = append(app.destroyHooks, hook)
}

// AddSystems adds already constructed systems to a stage.
func (app *App[D]) AddSystems(stage Stage, systems ...System) {
	for _, system := range systems {
		app.systems[stage] = append(app.systems[stage], systemInit{
			name: NameOf(system),
			build: func(ctx context.Context, res *Resources) (System, error) {
				return system, nil
			},
		})
	}
}

// AddSystemsWith adds systems to a stage that are constructed once all
// resources were built, e.g. to subscribe to an EventQueue.
func (app *App[D]) AddSystemsWith(stage Stage, inits ...WithResources[System]) {
	for _, init := range inits {
		app.systems[stage] = append(app.systems[stage], systemInit{
			name:  fmt.Sprintf("%s#%d", stage, len(app.systems[stage])),
			build: init,
		})
	}
}

// Build creates a World. If any constructor fails, everything built so far is
// discarded and an *InitError is returned.
func (app *App[D]) Build(ctx context.Context, deps D) (*World, error) {
	logger := app.logger
	if logger == nil {
		logger = slog.Default()
	}

	res := NewResources()

	// resources every world has. Added first so that they can be replaced
	// and used by the resources of the app.
	Insert(res, spoke.Entities{})
	Insert(res, EventQueue[WorldEvent]{})
	Insert(res, EventQueue[EntityEvent]{})
	Insert(res, DefaultFixedTime())

	for _, init := range app.resources {
		if err := ctx.Err(); err != nil {
			res.Clear()
			return nil, &InitError{Kind: "resource", Name: init.name, Err: err}
		}

		if err := init.build(ctx, deps, res); err != nil {
			res.Clear()
			return nil, &InitError{Kind: "resource", Name: init.name, Err: err}
		}
	}

	world := &World{
		resources:    res,
		destroyHooks: append([]DestroyHook(nil), app.destroyHooks...),
		logger:       logger,
	}

	queue := Write[EventQueue[WorldEvent]](res)
	world.receiver = Subscribe[World](queue.Get())
	queue.Release()

	for stage := range stageCount {
		for _, init := range app.systems[stage] {
			if err := ctx.Err(); err != nil {
				res.Clear()
				return nil, &InitError{Kind: "system", Name: init.name, Err: err}
			}

			system, err := init.build(ctx, res)
			if err != nil {
				res.Clear()
				return nil, &InitError{Kind: "system", Name: init.name, Err: err}
			}

			world.stages[stage].Add(system)
		}
	}

	logger.Debug(
		"World built",
		slog.Int("resources", res.Len()),
		slog.Int("fixedUpdateSystems", world.stages[StageFixedUpdate].Len()),
		slog.Int("updateSystems", world.stages[StageUpdate].Len()),
		slog.Int("renderSystems", world.stages[StageRender].Len()),
	)

	return world, nil
}
