package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"nc2bin/internal/config"
	"nc2bin/internal/convert"
	"nc2bin/internal/legacy"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var noOverwrite bool
	var noLock bool

	cmd := &cobra.Command{
		Use:   "convert <input> [output-dir]",
		Short: "Convert one netCDF file into legacy binary files",
		Long: `Convert one NSIDC netCDF file into the legacy flat binary files it replaces.

The output directory is taken from the second argument, then --output, then
paths.output_dir in the config, then the product default ("." for sea ice
concentration, "./extracted_bins" for brightness temperature).`,
		Args: requireInput(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input := strings.TrimSpace(args[0])
			argDir := ""
			if len(args) > 1 {
				argDir = args[1]
			}
			outputDir := resolveOutputDir(cfg, input, argDir, outputFlag)
			if err := prepareOutputDir(input, outputDir); err != nil {
				return err
			}

			logger, err := ctx.newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			store, err := ctx.openManifest(cfg)
			if err != nil {
				return err
			}
			opts := convert.Options{
				OutputDir:          outputDir,
				Opener:             ctx.opener,
				Logger:             logger,
				Overwrite:          cfg.Conversion.Overwrite && !noOverwrite,
				HeaderAttribute:    cfg.Conversion.HeaderAttribute,
				StartTimeAttribute: cfg.Conversion.StartTimeAttribute,
				LockOutputDir:      cfg.Conversion.LockOutputDir && !noLock,
			}
			if store != nil {
				defer store.Close()
				opts.Recorder = store
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := convert.New(opts).Run(runCtx, input)
			if report != nil && len(report.Written)+len(report.Skipped) > 0 {
				printConvertSummary(cmd, report)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (overridden by the output-dir argument)")
	cmd.Flags().BoolVar(&noOverwrite, "no-overwrite", false, "Fail instead of replacing existing output files")
	cmd.Flags().BoolVar(&noLock, "no-lock", false, "Do not lock the output directory while converting")

	return cmd
}

// resolveOutputDir applies the argument, flag, config, product default
// precedence. It returns "" when the product cannot be identified so the
// pipeline reports the identification error itself.
func resolveOutputDir(cfg *config.Config, input, argDir, flagDir string) string {
	if dir := strings.TrimSpace(argDir); dir != "" {
		return dir
	}
	if dir := strings.TrimSpace(flagDir); dir != "" {
		return dir
	}
	if dir := cfg.OutputDir(""); dir != "" {
		return dir
	}
	desc, err := legacy.Identify(input)
	if err != nil {
		return ""
	}
	return desc.DefaultOutputDir
}

// prepareOutputDir creates dir once input exists and names a known product.
// Otherwise it leaves the filesystem alone and the pipeline reports why.
func prepareOutputDir(input, dir string) error {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(input)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	if _, err := legacy.Identify(input); err != nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

func printConvertSummary(cmd *cobra.Command, report *convert.Report) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(report.Written)+len(report.Skipped))
	for _, w := range report.Written {
		rows = append(rows, []string{
			filepath.Base(w.Path),
			w.Candidate.String(),
			humanize.IBytes(uint64(w.Bytes)),
			"written",
		})
	}
	for _, s := range report.Skipped {
		rows = append(rows, []string{"-", s.Candidate.String(), "-", "skipped"})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Output", "Variable", "Size", "Status"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	fmt.Fprintf(out, "%s: %d written, %d skipped to %s\n",
		report.Product.ID, len(report.Written), len(report.Skipped), report.OutputDir)
}

