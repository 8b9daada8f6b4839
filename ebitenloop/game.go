// Package ebitenloop drives a spindle World using ebitengine.
//
// Each ebiten tick advances the world by one tick worth of time: the fixed
// updates that are due, one update and maintenance. The render stage runs
// during ebiten's Draw with the Screen resource set to the current screen.
// Maintain therefore runs before the render stage of the same frame, so render
// systems already see the entities created or destroyed during that frame.
package ebitenloop

import (
	"errors"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/oliverbestmann/spindle"
)

// Screen is the resource render systems draw to. Its Image is only valid
// during the render stage.
type Screen struct {
	Image *ebiten.Image
}

type ScreenSize struct {
	Width  int
	Height int
}

type WindowConfig struct {
	Title         string
	Width         int
	Height        int
	DisableResize bool
}

// Plugin adds the resources and systems of the ebiten driver to an app.
// Pressing F3 toggles an overlay showing the timings of all systems.
func Plugin[D any](app *spindle.App[D]) {
	spindle.AddResource(app, Screen{})
	spindle.AddResource(app, ScreenSize{})

	app.AddSystems(spindle.StageUpdate, spindle.Named("toggleTimings", spindle.SystemFunc(toggleTimingsSystem)))
	app.AddSystems(spindle.StageRender, spindle.Named("timingsOverlay", &timingsOverlay{}))
}

// Run opens a window and runs the world until it aborts or the window is closed.
func Run(runner *spindle.Runner, window WindowConfig) error {
	ebiten.SetWindowTitle(window.Title)
	ebiten.SetWindowSize(window.Width, window.Height)

	if !window.DisableResize {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	var options ebiten.RunGameOptions
	options.SingleThread = true

	slog.Debug("Starting ebiten game", slog.String("title", window.Title))

	err := ebiten.RunGameWithOptions(&game{runner: runner}, &options)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}

	return err
}

type game struct {
	runner *spindle.Runner
}

func (g *game) Update() error {
	// ebiten calls Update at a fixed rate
	frameTime := time.Second / time.Duration(ebiten.TPS())

	g.runner.Advance(frameTime)

	if g.runner.EndFrame() == spindle.LoopAbort {
		return ebiten.Termination
	}

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	res := g.runner.World().Resources()

	spindle.Insert(res, Screen{Image: screen})
	defer spindle.Insert(res, Screen{})

	g.runner.Render()
}

func (g *game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	spindle.Insert(g.runner.World().Resources(), ScreenSize{
		Width:  outsideWidth,
		Height: outsideHeight,
	})

	return outsideWidth, outsideHeight
}
