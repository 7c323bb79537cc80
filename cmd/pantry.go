package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hearthside/mealplan/internal/importer"
	"github.com/hearthside/mealplan/internal/model"
)

var (
	pantryImportSeed  string
	pantryImportXLSX  string
	pantryImportSheet string
)

var pantryCmd = &cobra.Command{
	Use:   "pantry",
	Short: "Inspect and maintain pantry stock",
}

var pantryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pantry rows in allocation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		rows, err := s.ListPantry(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tQUANTITY\tID")
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\n", row.Name, row.QuantityText, row.ID)
		}
		return w.Flush()
	},
}

var pantryAddCmd = &cobra.Command{
	Use:   "add <name> [quantity]",
	Short: "Add one pantry row",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		qty := ""
		if len(args) > 1 {
			qty = args[1]
		}
		row := importer.NewPantryRow(args[0], qty)
		if err := s.InsertPantryRow(cmd.Context(), row); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", row.Name, row.ID)
		return nil
	},
}

var pantryImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk import pantry rows from a YAML seed file or XLSX export",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (pantryImportSeed == "") == (pantryImportXLSX == "") {
			return fmt.Errorf("exactly one of --seed or --xlsx is required")
		}

		var (
			rows []model.PantryRow
			err  error
		)
		if pantryImportSeed != "" {
			rows, err = importer.ReadYAMLSeed(pantryImportSeed)
		} else {
			sheet := pantryImportSheet
			if sheet == "" {
				sheet = cfg.Import.SheetName
			}
			rows, err = importer.ReadXLSXPantry(pantryImportXLSX, importer.XLSXOptions{SheetName: sheet})
		}
		if err != nil {
			return err
		}

		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.BulkInsertPantry(cmd.Context(), rows)
		if err != nil {
			return err
		}

		zap.L().Info("pantry import complete", zap.Int64("rows", n))
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d pantry rows\n", n)
		return nil
	},
}

func init() {
	pantryImportCmd.Flags().StringVar(&pantryImportSeed, "seed", "", "YAML seed file")
	pantryImportCmd.Flags().StringVar(&pantryImportXLSX, "xlsx", "", "XLSX inventory export")
	pantryImportCmd.Flags().StringVar(&pantryImportSheet, "sheet", "", "sheet name (default from config)")

	pantryCmd.AddCommand(pantryListCmd)
	pantryCmd.AddCommand(pantryAddCmd)
	pantryCmd.AddCommand(pantryImportCmd)
	rootCmd.AddCommand(pantryCmd)
}
