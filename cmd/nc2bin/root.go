package main

import (
	"github.com/spf13/cobra"

	"nc2bin/internal/source"
	"nc2bin/internal/source/netcdf"
)

func newRootCommand() *cobra.Command {
	return buildRootCommand(netcdf.Open)
}

func buildRootCommand(opener source.Opener) *cobra.Command {
	var configFlag string
	var logLevelFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, opener)

	rootCmd := &cobra.Command{
		Use:           "nc2bin",
		Short:         "Convert NSIDC netCDF files to legacy binary files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newIdentifyCommand(ctx))
	rootCmd.AddCommand(newProductsCommand())
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newManifestCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
