package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vcwatch",
		Short:         "vcwatch: voice-channel study time notifier",
		Long:          "vcwatch watches one voice channel, announces joins and leaves with session and daily totals, and posts a daily summary at the configured JST cutoff.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
	)

	return rootCmd
}
