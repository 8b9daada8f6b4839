package spindle

import (
	"context"
	"fmt"
	"time"
)

// FixedTime configures and tracks the fixed time step of a World.
// Every World contains a FixedTime resource, the Runner reads the StepInterval
// from it at the beginning of each frame.
//
// The default value of StepInterval is 1/64s.
type FixedTime struct {
	Elapsed   time.Duration
	Delta     time.Duration
	DeltaSecs float64

	StepInterval time.Duration

	overstep time.Duration
}

func DefaultFixedTime() FixedTime {
	return FixedTime{StepInterval: time.Second / 64}
}

// Overstep returns the accumulated time that was not yet consumed by a fixed step.
func (ft FixedTime) Overstep() time.Duration {
	return ft.overstep
}

// Alpha returns the fraction of a step the overstep amounts to.
// Render systems can use it to interpolate between two fixed steps.
func (ft FixedTime) Alpha() float64 {
	if ft.StepInterval <= 0 {
		return 0
	}

	return float64(ft.overstep) / float64(ft.StepInterval)
}

// Runner drives a World frame by frame. Each frame runs as many fixed updates
// as the accumulated time allows, then one update and one render.
type Runner struct {
	world *World

	// MaintainEvery runs World.Maintain only every n-th frame.
	// Values below two maintain every frame.
	MaintainEvery int

	elapsed   time.Duration
	frameTime time.Duration
	frames    uint64
}

func NewRunner(world *World) *Runner {
	return &Runner{world: world}
}

func (r *Runner) World() *World {
	return r.world
}

// Frame runs one complete frame and returns the result of maintenance.
func (r *Runner) Frame(frameTime time.Duration) LoopControl {
	r.Advance(frameTime)
	r.Render()
	return r.EndFrame()
}

// Advance runs the fixed updates the frame time is worth, followed by a single update.
func (r *Runner) Advance(frameTime time.Duration) {
	fixedTime := Write[FixedTime](r.world.resources)
	ft := fixedTime.Get()
	ft.overstep += frameTime
	step := ft.StepInterval
	fixedTime.Release()

	if step <= 0 {
		panic(fmt.Sprintf("fixed step interval must be positive, got %s", step))
	}

	for {
		fixedTime := Write[FixedTime](r.world.resources)
		ft := fixedTime.Get()

		if ft.overstep < step {
			fixedTime.Release()
			break
		}

		ft.overstep -= step
		ft.Elapsed += step
		ft.Delta = step
		ft.DeltaSecs = step.Seconds()

		t := ft.Elapsed
		fixedTime.Release()

		r.world.FixedUpdate(t, step)
	}

	r.elapsed += frameTime
	r.frameTime = frameTime

	r.world.Update(r.elapsed, frameTime)
}

// Render runs the render stage for the current frame.
func (r *Runner) Render() {
	r.world.Render(r.elapsed, r.frameTime)
}

// EndFrame finishes the frame and runs maintenance if it is due.
func (r *Runner) EndFrame() LoopControl {
	r.frames += 1

	if r.MaintainEvery > 1 && r.frames%uint64(r.MaintainEvery) != 0 {
		return LoopContinue
	}

	return r.world.Maintain()
}

// Elapsed returns the sum of all frame times.
func (r *Runner) Elapsed() time.Duration {
	return r.elapsed
}

// Frames returns the number of completed frames.
func (r *Runner) Frames() uint64 {
	return r.frames
}

// Run runs a frame on each tick of a ticker with the given interval until the
// world requests to abort or the context is done.
func (r *Runner) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-ticker.C:
			frameTime := now.Sub(lastTime)
			lastTime = now

			if r.Frame(frameTime) == LoopAbort {
				return nil
			}
		}
	}
}
