package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"nc2bin/internal/fileutil"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var verify bool

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "List recorded conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Manifest.Enabled {
				return errors.New("manifest is disabled (set manifest.enabled = true in the config)")
			}
			store, err := ctx.openManifest(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if runID != "" {
				outputs, err := store.Outputs(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if len(outputs) == 0 {
					fmt.Fprintf(out, "No outputs recorded for run %s\n", runID)
					return nil
				}
				headers := []string{"Path", "Variable", "Size", "SHA-256"}
				if verify {
					headers = append(headers, "Check")
				}
				rows := make([][]string, 0, len(outputs))
				failed := 0
				for _, o := range outputs {
					row := []string{o.Path, o.Variable, humanize.IBytes(uint64(o.Bytes)), o.SHA256}
					if verify {
						check := "ok"
						if err := fileutil.VerifyFile(o.Path, o.SHA256); err != nil {
							failed++
							check = "mismatch"
							if errors.Is(err, fs.ErrNotExist) {
								check = "missing"
							}
						}
						row = append(row, check)
					}
					rows = append(rows, row)
				}
				fmt.Fprintln(out, renderTable(out, headers, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}))
				if failed > 0 {
					return fmt.Errorf("%d of %d outputs failed verification", failed, len(outputs))
				}
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No conversions recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				product := run.Product
				if product == "" {
					product = "-"
				}
				outputDir := run.OutputDir
				if outputDir == "" {
					outputDir = "-"
				}
				rows = append(rows, []string{
					run.RunID,
					humanize.Time(run.StartedAt),
					product,
					string(run.Status),
					strconv.Itoa(run.Outputs),
					strconv.Itoa(run.Skipped),
					run.Input,
					outputDir,
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Run", "Started", "Product", "Status", "Outputs", "Skipped", "Input", "Output Dir"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "List the outputs of one run instead")
	cmd.Flags().BoolVar(&verify, "verify", false, "With --run, check each output against its recorded SHA-256")
	return cmd
}
