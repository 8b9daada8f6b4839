// Package spindle is the runtime core of an entity component system.
//
// A World owns a Resources container and three ordered collections of
// systems: fixed update, update and render. The World is described by an App
// and created using App.Build:
//
//	var app spindle.App[Config]
//	spindle.AddComponent[Position](&app)
//	spindle.AddComponent[Velocity](&app)
//	app.AddSystems(spindle.StageFixedUpdate, spindle.SystemFunc(moveSystem))
//
//	world, err := app.Build(ctx, config)
//
// A Runner then drives the world frame by frame. Systems access resources and
// component storages through guards:
//
//	func moveSystem(res *spindle.Resources, t, dt time.Duration) {
//		positions, posGuard := spindle.WriteStorage[Position](res)
//		defer posGuard.Release()
//
//		velocities, velGuard := spindle.ReadStorage[Velocity](res)
//		defer velGuard.Release()
//
//		for pos, vel := range spoke.Join2(spoke.Write(positions), spoke.Read(velocities)).Items() {
//			pos.X += vel.X * dt.Seconds()
//		}
//	}
//
// Borrowing a resource exclusively while any other guard of it is live panics,
// as does any shared borrow while an exclusive guard is live. A shared borrow
// of a component storage only yields a spoke.View, which can not be modified.
//
// Entities are created and destroyed by sending CreateEntity and DestroyEntity
// requests, which the World processes in Maintain.
package spindle
