package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/catalog"
)

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the job categories and their suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			cat, err := catalog.Load(cfg.Catalog.Path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"#", "Category", "Suggestion"})
			table.SetBorder(true)
			table.SetRowLine(true)
			table.SetAutoWrapText(true)
			table.SetColWidth(70)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)

			for i, name := range cat.Names() {
				table.Append([]string{strconv.Itoa(i + 1), name, cat.Lookup(name)})
			}
			table.Render()

			fmt.Fprintf(out, "%d categories from %s\n", cat.Len(), cat.Source())
			if skipped := cat.Skipped(); len(skipped) > 0 {
				fmt.Fprintf(out, "Skipped %d entries without a suggestion: %v\n", len(skipped), skipped)
			}
			fmt.Fprintf(out, "Other categories use: %s\n", catalog.FallbackSuggestion)
			return nil
		},
	}
}
