package commands

import (
	"fatec-api/internal/export"
	"fatec-api/internal/siga"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var exportOutput *string
var exportCategories *[]string

func init() {
	exportOutput = exportCmd.Flags().StringP("output", "o", "siga.xlsx", "The workbook to write.")
	exportCategories = exportCmd.Flags().StringSlice("only", nil, "Export only these categories (ex. history,schedules).")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [-o <path/to/output.xlsx>] [--only <category,...>]",
	Short: "Fetches every category and writes them to an excel workbook.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		categories := siga.Categories
		if len(*exportCategories) > 0 {
			categories = nil
			for _, name := range *exportCategories {
				category, err := siga.ParseCategory(name)
				if err != nil {
					return err
				}
				categories = append(categories, category)
			}
		}

		account, err := login(cmd.Context())
		if err != nil {
			return err
		}
		for _, category := range categories {
			_, err := account.Fetch(cmd.Context(), category)
			if err != nil {
				// a broken page should not lose the rest of the export
				slog.Warn("skipping category", "category", category, "err", err)
			}
		}

		err = export.WriteFile(*exportOutput, account.Student())
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		slog.Info("exported workbook", "path", *exportOutput)
		return nil
	},
}

