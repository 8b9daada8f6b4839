package spindle

import (
	"log/slog"
	"time"

	"github.com/oliverbestmann/spindle/spoke"
)

// Stage identifies one of the three system collections of a World.
type Stage uint8

const (
	StageFixedUpdate Stage = iota
	StageUpdate
	StageRender

	stageCount
)

func (s Stage) String() string {
	switch s {
	case StageFixedUpdate:
		return "FixedUpdate"
	case StageUpdate:
		return "Update"
	case StageRender:
		return "Render"
	default:
		return "Stage(?)"
	}
}

// LoopControl tells the driver of a World whether to keep running.
type LoopControl uint8

const (
	LoopContinue LoopControl = iota
	LoopAbort
)

func (c LoopControl) String() string {
	if c == LoopAbort {
		return "Abort"
	}

	return "Continue"
}

// WorldEvent is a request to the World, processed during Maintain.
type WorldEvent interface {
	isWorldEvent()
}

// Abort asks the driver to stop running the world.
type Abort struct {
	Reason string
}

// CreateEntity allocates a new entity. Spawn, if set, is called with the new
// entity and can be used to insert its components.
type CreateEntity struct {
	Spawn func(res *Resources, entity spoke.Entity)
}

// DestroyEntity frees the slot of an entity. Requests for stale entities are ignored.
type DestroyEntity struct {
	Entity spoke.Entity
}

func (Abort) isWorldEvent()         {}
func (CreateEntity) isWorldEvent()  {}
func (DestroyEntity) isWorldEvent() {}

// EntityEvent is broadcast by the World after it processed a WorldEvent.
type EntityEvent interface {
	Target() spoke.Entity
}

type EntityCreated struct {
	Entity spoke.Entity
}

type EntityDestroyed struct {
	Entity spoke.Entity
}

func (e EntityCreated) Target() spoke.Entity   { return e.Entity }
func (e EntityDestroyed) Target() spoke.Entity { return e.Entity }

// DestroyHook runs during Maintain for every destroyed entity, before its
// slot is released.
type DestroyHook func(res *Resources, entity spoke.Entity)

// World owns the resources and the systems of a simulation.
// A World is created using App.Build.
type World struct {
	_ noCopy

	resources    *Resources
	stages       [stageCount]Systems
	receiver     ReceiverId[WorldEvent]
	destroyHooks []DestroyHook
	logger       *slog.Logger
}

// Resources returns the resources of the world.
func (w *World) Resources() *Resources {
	return w.resources
}

// Systems returns the system collection of the given stage.
func (w *World) Systems(stage Stage) *Systems {
	return &w.stages[stage]
}

// FixedUpdate runs all fixed update systems once.
func (w *World) FixedUpdate(t, dt time.Duration) {
	w.runStage(StageFixedUpdate, t, dt)
}

// Update runs all update systems once.
func (w *World) Update(t, dt time.Duration) {
	w.runStage(StageUpdate, t, dt)
}

// Render runs all render systems once.
func (w *World) Render(t, dt time.Duration) {
	w.runStage(StageRender, t, dt)
}

func (w *World) runStage(stage Stage, t, dt time.Duration) {
	systems := &w.stages[stage]

	if !Contains[TimingStats](w.resources) {
		systems.Run(w.resources, t, dt)
		return
	}

	stageStartTime := time.Now()

	for name, system := range systems.All() {
		startTime := time.Now()
		system.Run(w.resources, t, dt)
		duration := time.Since(startTime)

		w.withTimingStats(func(stats *TimingStats) {
			stats.AddSystem(stage, name, duration)
		})
	}

	duration := time.Since(stageStartTime)

	w.withTimingStats(func(stats *TimingStats) {
		stats.AddStage(stage, duration)
	})
}

func (w *World) withTimingStats(fn func(stats *TimingStats)) {
	guard, err := TryWrite[TimingStats](w.resources)
	if err != nil {
		// removed or borrowed by a system, skip the measurement
		return
	}

	defer guard.Release()

	fn(guard.Get())
}

// Maintain processes all pending world events. It returns LoopAbort if an
// Abort event was received.
func (w *World) Maintain() LoopControl {
	queue := Write[EventQueue[WorldEvent]](w.resources)
	events := queue.Get().Receive(w.receiver)
	queue.Release()

	control := LoopContinue

	for _, event := range events {
		switch event := event.(type) {
		case Abort:
			w.logger.Info("Abort requested", slog.String("reason", event.Reason))
			control = LoopAbort

		case CreateEntity:
			entity := w.createEntity()

			if event.Spawn != nil {
				event.Spawn(w.resources, entity)
			}

			w.broadcast(EntityCreated{Entity: entity})

		case DestroyEntity:
			if !w.destroyEntity(event.Entity) {
				continue
			}

			w.broadcast(EntityDestroyed{Entity: event.Entity})
		}
	}

	return control
}

func (w *World) createEntity() spoke.Entity {
	entities := Write[spoke.Entities](w.resources)
	defer entities.Release()

	return entities.Get().Create()
}

func (w *World) destroyEntity(entity spoke.Entity) bool {
	entities := Write[spoke.Entities](w.resources)
	alive := entities.Get().IsAlive(entity)
	entities.Release()

	if !alive {
		w.logger.Warn("Ignore destroy of stale entity", slog.Any("entity", entity))
		return false
	}

	for _, hook := range w.destroyHooks {
		hook(w.resources, entity)
	}

	entities = Write[spoke.Entities](w.resources)
	entities.Get().Destroy(entity.Index)
	entities.Release()

	return true
}

func (w *World) broadcast(event EntityEvent) {
	queue := Write[EventQueue[EntityEvent]](w.resources)
	defer queue.Release()

	queue.Get().Send(event)
}

// Clear removes all systems and then all resources. The world can not be
// used afterwards.
func (w *World) Clear() {
	for idx := range w.stages {
		w.stages[idx].Clear()
	}

	w.destroyHooks = nil
	w.resources.Clear()

	w.logger.Debug("World cleared")
}

// SendWorldEvent queues a request to the World. It is processed during the next Maintain.
func SendWorldEvent(res *Resources, event WorldEvent) {
	queue := Write[EventQueue[WorldEvent]](res)
	defer queue.Release()

	queue.Get().Send(event)
}

// RequestAbort queues an Abort event.
func RequestAbort(res *Resources, reason string) {
	SendWorldEvent(res, Abort{Reason: reason})
}

// RequestCreate queues a CreateEntity event.
func RequestCreate(res *Resources, spawn func(res *Resources, entity spoke.Entity)) {
	SendWorldEvent(res, CreateEntity{Spawn: spawn})
}

// RequestDestroy queues a DestroyEntity event.
func RequestDestroy(res *Resources, entity spoke.Entity) {
	SendWorldEvent(res, DestroyEntity{Entity: entity})
}
