package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/oliverbestmann/spindle"
	"github.com/oliverbestmann/spindle/internal/benchstore"
	"github.com/oliverbestmann/spindle/internal/demo"
)

// BenchOptions holds the flags of the bench command.
type BenchOptions struct {
	*RootOptions

	Frames    int
	FrameTime time.Duration
	Database  string
	History   int
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure the systems of a headless simulation",
		Long: `Run the simulation headless for a number of frames and report the
time spent in every stage and system.

Results can be recorded in a SQLite database using --db. With --history the
latest recorded runs are printed instead of running a new benchmark.

Example:
  spindle bench --frames 5000
  spindle bench --db bench.db
  spindle bench --db bench.db --history 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.History > 0 {
				return printHistory(cmd.Context(), opts, cmd.OutOrStdout())
			}

			return runBenchmark(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.Frames, "frames", 1000, "number of frames to run")
	cmd.Flags().DurationVar(&opts.FrameTime, "frame-time", time.Second/60, "time of a single frame")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to a SQLite database to record the run in")
	cmd.Flags().IntVar(&opts.History, "history", 0, "print the given number of recorded runs")

	return cmd
}

func runBenchmark(ctx context.Context, opts *BenchOptions, out io.Writer) error {
	if opts.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", opts.Frames)
	}

	config, err := opts.loadConfig()
	if err != nil {
		return err
	}

	// the benchmark decides when to stop
	config.Duration = 0

	measure := spindle.PluginFunc[demo.Config](func(app *spindle.App[demo.Config]) {
		spindle.AddResource(app, spindle.NewTimingStats())
	})

	world, err := demo.NewWorld(ctx, config, measure)
	if err != nil {
		return fmt.Errorf("build world: %w", err)
	}

	defer world.Clear()

	runner := spindle.NewRunner(world)
	runner.MaintainEvery = config.MaintainEvery

	run := benchstore.Run{
		ID:        benchstore.NewRunID(),
		StartedAt: time.Now(),
		FrameTime: opts.FrameTime,
	}

	slog.Debug("Starting benchmark", slog.String("run", run.ID), slog.Int("frames", opts.Frames))

	stopProfile := opts.startProfile()

	if err := runHeadless(ctx, runner, opts.Frames, opts.FrameTime); err != nil {
		stopProfile()
		return err
	}

	stopProfile()

	run.Duration = time.Since(run.StartedAt)
	run.Frames = int(runner.Frames())
	run.Entities = liveEntities(world)
	run.Systems = systemTimingsOf(world.Resources())

	if err := printRun(out, run); err != nil {
		return err
	}

	if opts.Database == "" {
		return nil
	}

	store, err := benchstore.Open(opts.Database)
	if err != nil {
		return err
	}

	defer func() { _ = store.Close() }()

	if err := store.Save(ctx, run); err != nil {
		return err
	}

	slog.Info("Recorded benchmark run", slog.String("run", run.ID), slog.String("db", opts.Database))

	return nil
}

func systemTimingsOf(res *spindle.Resources) []benchstore.SystemTiming {
	stats := spindle.Read[spindle.TimingStats](res)
	defer stats.Release()

	var timings []benchstore.SystemTiming

	for _, key := range stats.Get().SystemOrder {
		t := stats.Get().BySystem[key]

		timings = append(timings, benchstore.SystemTiming{
			Stage:   key.Stage.String(),
			System:  key.Name,
			Count:   t.Count,
			Min:     t.Min,
			Max:     t.Max,
			Average: t.MovingAverage,
		})
	}

	return timings
}

func printHistory(ctx context.Context, opts *BenchOptions, out io.Writer) error {
	if opts.Database == "" {
		return fmt.Errorf("--history requires --db")
	}

	store, err := benchstore.Open(opts.Database)
	if err != nil {
		return err
	}

	defer func() { _ = store.Close() }()

	runs, err := store.Recent(ctx, opts.History)
	if err != nil {
		return err
	}

	for _, run := range runs {
		if err := printRun(out, run); err != nil {
			return err
		}
	}

	return nil
}

func printRun(out io.Writer, run benchstore.Run) error {
	p := message.NewPrinter(language.English)

	var perFrame time.Duration
	if run.Frames > 0 {
		perFrame = run.Duration / time.Duration(run.Frames)
	}

	if _, err := p.Fprintf(out, "run %s at %s\n  frames=%d entities=%d duration=%s perFrame=%s\n",
		run.ID, run.StartedAt.Format(time.DateTime), run.Frames, run.Entities, run.Duration, perFrame); err != nil {
		return err
	}

	for _, t := range run.Systems {
		_, err := p.Fprintf(out, "  %-12s %-16s runs=%d min=%s max=%s avg=%s\n",
			t.Stage, t.System, t.Count, t.Min, t.Max, t.Average)

		if err != nil {
			return err
		}
	}

	return nil
}
