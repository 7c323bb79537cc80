package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/hearthside/mealplan/internal/units"
)

var convertCmd = &cobra.Command{
	Use:   "convert <quantity> <from-unit> <to-unit>",
	Short: "Convert a quantity between units of the same family",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return eris.Wrapf(err, "parse quantity %q", args[0])
		}

		res := units.Convert(qty, args[1], args[2])
		if !res.OK {
			return eris.Errorf("cannot convert %s to %s: units are not in the same family", args[1], args[2])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n",
			args[0], units.Canonical(args[1]),
			strconv.FormatFloat(res.Qty, 'f', -1, 64), units.Canonical(args[2]),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
