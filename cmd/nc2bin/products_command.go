package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"nc2bin/internal/legacy"
)

func newProductsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "products",
		Short:       "List the supported products and their encoding rules",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			title := cases.Title(language.English)
			products := legacy.Products()
			rows := make([][]string, 0, len(products))
			for _, desc := range products {
				header := "-"
				if desc.HasHeader {
					header = strconv.Itoa(desc.HeaderSize)
				}
				rows = append(rows, []string{
					string(desc.ID),
					title.String(strings.ReplaceAll(desc.Family.String(), "-", " ")),
					desc.PayloadType.String(),
					header,
					desc.Version.String(),
					desc.FilenameTemplate,
					desc.DefaultOutputDir,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]string{"Product", "Family", "Payload", "Header", "Version", "Template", "Default Dir"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
