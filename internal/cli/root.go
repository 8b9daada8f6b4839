// Package cli implements the spindle command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/oliverbestmann/spindle/internal/demo"
)

// RootOptions holds the flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Config  string
	Profile string
}

var validProfiles = []string{"", "cpu", "mem"}

// NewRootCommand creates the root command of the spindle CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "spindle",
		Short: "Run a simulation of bouncing dots",
		Long: `spindle runs a small entity component simulation of bouncing dots.

Dots are spawned periodically, move with a fixed time step and are
destroyed once their lifetime runs out. The simulation can be shown in the
terminal or in a window, or run headless for benchmarking.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validProfiles, opts.Profile) {
				return fmt.Errorf("invalid profile %q: must be one of cpu, mem", opts.Profile)
			}

			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}

			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))

			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "path to a yaml configuration file")
	cmd.PersistentFlags().StringVar(&opts.Profile, "profile", "", "write a profile to the working directory (cpu|mem)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewBenchCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

func (opts *RootOptions) loadConfig() (demo.Config, error) {
	return demo.LoadConfig(opts.Config)
}

// startProfile starts the profiler selected by the profile flag.
// The returned function stops it.
func (opts *RootOptions) startProfile() func() {
	switch opts.Profile {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop

	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop

	default:
		return func() {}
	}
}
