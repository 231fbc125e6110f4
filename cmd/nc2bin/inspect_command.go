package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"nc2bin/internal/source"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var unpacked bool

	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "List the groups and variables of a netCDF file",
		Args:  requireInput(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := source.Raw
			if unpacked {
				mode = source.Unpacked
			}
			input := strings.TrimSpace(args[0])
			ds, err := ctx.opener(input, mode)
			if err != nil {
				return fmt.Errorf("open %s: %w", input, err)
			}
			defer ds.Close()

			var rows [][]string
			appendRows := func(group string, ns source.Namespace) error {
				for _, name := range ns.Variables() {
					v, err := ns.Variable(name)
					if err != nil {
						return fmt.Errorf("read %s: %w", name, err)
					}
					rows = append(rows, describeVariable(group, v))
				}
				return nil
			}
			if err := appendRows("/", ds); err != nil {
				return err
			}
			for _, group := range ds.Groups() {
				ns, err := ds.Group(group)
				if err != nil {
					return err
				}
				if err := appendRows(group, ns); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s values)\n", input, mode)
			if len(rows) == 0 {
				fmt.Fprintln(out, "No variables found")
				return nil
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Group", "Variable", "Shape", "Type", "Min", "Max"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&unpacked, "unpacked", false, "Apply _FillValue, scale_factor and add_offset before computing ranges")
	return cmd
}

func describeVariable(group string, v *source.Variable) []string {
	minValue, maxValue := "-", "-"
	if lo, hi, ok := v.Array.Range(); ok {
		minValue = strconv.FormatFloat(lo, 'g', 6, 64)
		maxValue = strconv.FormatFloat(hi, 'g', 6, 64)
	}
	return []string{group, v.Name, formatShape(v.Array.Shape), v.Array.ElementType(), minValue, maxValue}
}

func formatShape(shape []int) string {
	if len(shape) == 0 {
		return "scalar"
	}
	parts := make([]string, len(shape))
	for i, n := range shape {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "×")
}
