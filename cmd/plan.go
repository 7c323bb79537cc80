package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hearthside/mealplan/internal/model"
	"github.com/hearthside/mealplan/internal/planner"
)

var planServings int

var planCmd = &cobra.Command{
	Use:   "plan <recipe-id> <date> <slot>",
	Short: "Plan a meal, deducting its ingredients from the pantry",
	Long:  "Creates a plan entry for a recipe on a date (YYYY-MM-DD) and slot (breakfast, lunch, dinner, snack), deducting the scaled ingredient needs from the pantry. Shortfalls are reported, not errors.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		entry, err := planner.New(s).Plan(cmd.Context(), args[0], args[1], model.MealSlot(args[2]), planServings)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "planned entry %s\n", entry.ID)
		for _, d := range entry.Deductions {
			if short := d.Shortfall(); short > 0 {
				fmt.Fprintf(out, "  %s: short %g %s\n", d.NormalizedKey, short, d.BaseUnit)
			}
		}
		return nil
	},
}

var unplanCmd = &cobra.Command{
	Use:   "unplan <entry-id>",
	Short: "Remove a plan entry, restocking what it deducted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		if err := planner.New(s).Unplan(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed entry %s\n", args[0])
		return nil
	},
}

var shoppingCmd = &cobra.Command{
	Use:   "shopping <from> <to>",
	Short: "Aggregate pantry shortfalls over a date range",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		items, err := planner.New(s).Shortfalls(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INGREDIENT\tQUANTITY\tUNIT")
		for _, item := range items {
			fmt.Fprintf(w, "%s\t%g\t%s\n", item.NormalizedKey, item.Quantity, item.BaseUnit)
		}
		return w.Flush()
	},
}

func init() {
	planCmd.Flags().IntVar(&planServings, "servings", 1, "servings to plan for")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(unplanCmd)
	rootCmd.AddCommand(shoppingCmd)
}
