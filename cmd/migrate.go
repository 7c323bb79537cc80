package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		caps := s.Capabilities()
		fmt.Fprintf(cmd.OutOrStdout(), "schema ready (structured quantity: %v)\n", caps.StructuredQuantity)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
