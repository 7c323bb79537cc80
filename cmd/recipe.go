package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hearthside/mealplan/internal/planner"
)

var (
	recipeServings int
	recipeFile     string
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Manage recipes",
}

var recipeAddCmd = &cobra.Command{
	Use:   "add <title> [ingredient-line...]",
	Short: "Add a recipe from ingredient lines",
	Long:  "Stores a recipe with its parsed ingredient lines. Lines come from arguments, a file (--file), or stdin.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := collectLines(args[1:], recipeFile)
		if err != nil {
			return err
		}

		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		recipe, err := planner.New(s).CreateRecipe(cmd.Context(), args[0], recipeServings, lines)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "added recipe %q (%s) with %d ingredients\n",
			recipe.Title, recipe.ID, len(recipe.Ingredients))
		return nil
	},
}

func init() {
	recipeAddCmd.Flags().IntVar(&recipeServings, "servings", 1, "servings the ingredient quantities yield")
	recipeAddCmd.Flags().StringVar(&recipeFile, "file", "", "read ingredient lines from a file")

	recipeCmd.AddCommand(recipeAddCmd)
	rootCmd.AddCommand(recipeCmd)
}
