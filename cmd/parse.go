package main

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hearthside/mealplan/internal/ingredient"
	"github.com/hearthside/mealplan/internal/model"
)

var parseFile string

var parseCmd = &cobra.Command{
	Use:   "parse [line...]",
	Short: "Parse ingredient lines into structured records",
	Long:  "Parses free-text ingredient lines given as arguments, from a file (--file), or from stdin, and prints the structured records as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("parse"); err != nil {
			return err
		}

		lines, err := collectLines(args, parseFile)
		if err != nil {
			return err
		}

		records, err := parseLines(lines, cfg.Parse.MaxConcurrent)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(records), "encode records")
	},
}

// collectLines gathers input lines from args, a file, or stdin, in that
// preference order.
func collectLines(args []string, file string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	r := os.Stdin
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, eris.Wrap(err, "open input file")
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, eris.Wrap(scanner.Err(), "read input")
}

// parseLines parses in parallel but keeps the output in input order. Blank
// lines are dropped after parsing so indices stay aligned during the fan-out.
func parseLines(lines []string, maxConcurrent int) ([]model.IngredientRecord, error) {
	slots := make([]*model.IngredientRecord, len(lines))

	g := errgroup.Group{}
	g.SetLimit(maxConcurrent)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			slots[i] = ingredient.ParseLine(line)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]model.IngredientRecord, 0, len(lines))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func init() {
	parseCmd.Flags().StringVar(&parseFile, "file", "", "read ingredient lines from a file instead of arguments")
	rootCmd.AddCommand(parseCmd)
}
