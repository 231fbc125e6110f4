package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nc2bin/internal/convert"
	"nc2bin/internal/logging"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "identify <input>",
		Short: "Show the product, metadata and outputs a conversion would produce",
		Args:  requireInput(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input := strings.TrimSpace(args[0])
			pipeline := convert.New(convert.Options{
				OutputDir:          resolveOutputDir(cfg, input, "", outputFlag),
				Opener:             ctx.opener,
				Logger:             logging.NewNop(),
				StartTimeAttribute: cfg.Conversion.StartTimeAttribute,
			})
			plan, err := pipeline.Plan(cmd.Context(), input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Product:    %s (%s)\n", plan.Product.ID, plan.Product.Title)
			fmt.Fprintf(out, "Date:       %s\n", plan.Metadata.Date)
			fmt.Fprintf(out, "Hemisphere: %s\n", plan.Metadata.Hemisphere)
			fmt.Fprintf(out, "Version:    %s\n", plan.Metadata.Version)
			fmt.Fprintf(out, "Payload:    %s (header: %s)\n", plan.Product.PayloadType, yesNo(plan.Product.HasHeader))
			fmt.Fprintf(out, "Output dir: %s\n", plan.OutputDir)

			if len(plan.Outputs) == 0 {
				fmt.Fprintln(out, "No fields found")
				return nil
			}
			rows := make([][]string, 0, len(plan.Outputs))
			for _, o := range plan.Outputs {
				rows = append(rows, []string{o.Candidate.String(), o.Satellite, o.Channel, o.Path})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Variable", "Satellite", "Channel", "Output"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory to plan against")
	return cmd
}
