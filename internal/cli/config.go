package cli

import (
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration the simulation would run with as yaml.
Values missing from the file given by --config are filled with defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}

			buf, err := config.Marshal()
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(buf)
			return err
		},
	}
}
