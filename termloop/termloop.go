// Package termloop drives a spindle World inside a terminal using tcell.
//
// Render systems draw to the Terminal resource. The driver clears the screen
// before the render stage and shows it afterwards. Key presses are forwarded
// to an EventQueue[KeyEvent], except for Escape and Ctrl-C, which abort the world.
package termloop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/oliverbestmann/spindle"
)

// Terminal is the resource render systems draw to.
type Terminal struct {
	Screen tcell.Screen

	Width  int
	Height int
}

// KeyEvent is sent for every key pressed, except for the ones that abort.
type KeyEvent struct {
	Key  tcell.Key
	Rune rune
	Mod  tcell.ModMask
}

type Config struct {
	// FrameInterval is the time between two frames. Defaults to 1/30s.
	FrameInterval time.Duration
}

// Plugin adds the resources of the terminal driver to an app.
func Plugin[D any](app *spindle.App[D]) {
	spindle.AddResource(app, Terminal{})
	spindle.AddResource(app, spindle.EventQueue[KeyEvent]{})
}

// Run initializes the screen and runs frames until the world aborts or the
// context is done. The screen is finalized before Run returns.
func Run(ctx context.Context, runner *spindle.Runner, screen tcell.Screen, config Config) error {
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}

	defer screen.Fini()

	interval := config.FrameInterval
	if interval <= 0 {
		interval = time.Second / 30
	}

	res := runner.World().Resources()
	updateTerminal(res, screen)

	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 16)
	go pollEvents(screen, events, done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Debug("Terminal loop started", slog.Duration("interval", interval))

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				// screen was closed below us
				return nil
			}

			handleEvent(res, screen, ev)

		case now := <-ticker.C:
			frameTime := now.Sub(lastTime)
			lastTime = now

			screen.Clear()
			control := runner.Frame(frameTime)
			screen.Show()

			if control == spindle.LoopAbort {
				slog.Debug("Terminal loop stopped", slog.Uint64("frames", runner.Frames()))
				return nil
			}
		}
	}
}

func pollEvents(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	defer close(events)

	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}

		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func handleEvent(res *spindle.Resources, screen tcell.Screen, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		screen.Sync()
		updateTerminal(res, screen)

	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			spindle.RequestAbort(res, "key "+ev.Name())
			return
		}

		queue := spindle.Write[spindle.EventQueue[KeyEvent]](res)
		defer queue.Release()

		queue.Get().Send(KeyEvent{Key: ev.Key(), Rune: ev.Rune(), Mod: ev.Modifiers()})
	}
}

func updateTerminal(res *spindle.Resources, screen tcell.Screen) {
	width, height := screen.Size()

	spindle.Insert(res, Terminal{
		Screen: screen,
		Width:  width,
		Height: height,
	})
}
