package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/oliverbestmann/spindle"
	"github.com/oliverbestmann/spindle/ebitenloop"
	"github.com/oliverbestmann/spindle/internal/demo"
	"github.com/oliverbestmann/spindle/spoke"
	"github.com/oliverbestmann/spindle/termloop"
)

// RunOptions holds the flags of the run command.
type RunOptions struct {
	*RootOptions

	Driver    string
	Frames    int
	FrameTime time.Duration
	Duration  time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		Long: `Run the simulation using one of the drivers:

  term      draw to the terminal, press Escape to quit
  ebiten    draw into a window
  headless  run frames as fast as possible without drawing

Example:
  spindle run --driver term
  spindle run --driver headless --frames 600 --config demo.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Driver, "driver", "term", "driver to run the simulation with (term|ebiten|headless)")
	cmd.Flags().IntVar(&opts.Frames, "frames", 0, "number of frames to run headless, zero runs until the simulation stops")
	cmd.Flags().DurationVar(&opts.FrameTime, "frame-time", time.Second/60, "time of a headless frame")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "stop the simulation after this time, overrides the configuration")

	return cmd
}

func runSimulation(ctx context.Context, opts *RunOptions, out io.Writer) error {
	config, err := opts.loadConfig()
	if err != nil {
		return err
	}

	if opts.Duration > 0 {
		config.Duration = opts.Duration
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	defer opts.startProfile()()

	var plugins []spindle.PluginFunc[demo.Config]

	switch opts.Driver {
	case "term":
		plugins = append(plugins, demo.TerminalPlugin)
	case "ebiten":
		plugins = append(plugins, demo.EbitenPlugin)
	case "headless":
	default:
		return fmt.Errorf("unknown driver %q", opts.Driver)
	}

	world, err := demo.NewWorld(ctx, config, plugins...)
	if err != nil {
		return fmt.Errorf("build world: %w", err)
	}

	defer world.Clear()

	runner := spindle.NewRunner(world)
	runner.MaintainEvery = config.MaintainEvery

	slog.Info("Starting simulation", slog.String("driver", opts.Driver), slog.Duration("fixedStep", config.FixedStep))

	switch opts.Driver {
	case "term":
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("create screen: %w", err)
		}

		err = termloop.Run(ctx, runner, screen, termloop.Config{})
		if err != nil && ctx.Err() == nil {
			return err
		}

	case "ebiten":
		window := ebitenloop.WindowConfig{
			Title:  "spindle",
			Width:  int(config.Width),
			Height: int(config.Height),
		}

		if err := ebitenloop.Run(runner, window); err != nil {
			return err
		}

	case "headless":
		err := runHeadless(ctx, runner, opts.Frames, opts.FrameTime)
		if err != nil && ctx.Err() == nil {
			return err
		}
	}

	_, err = fmt.Fprintf(out, "frames=%d elapsed=%s entities=%d\n",
		runner.Frames(), runner.Elapsed(), liveEntities(world))

	return err
}

// runHeadless runs frames until the world aborts, the frame limit is reached
// or the context is done. A limit of zero runs until the world aborts.
func runHeadless(ctx context.Context, runner *spindle.Runner, frames int, frameTime time.Duration) error {
	if frameTime <= 0 {
		return fmt.Errorf("frame time must be positive, got %s", frameTime)
	}

	for frame := 0; frames <= 0 || frame < frames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if runner.Frame(frameTime) == spindle.LoopAbort {
			return nil
		}
	}

	return nil
}

func liveEntities(world *spindle.World) int {
	entities := spindle.Read[spoke.Entities](world.Resources())
	defer entities.Release()

	alive := entities.Get()
	return alive.Len()
}
