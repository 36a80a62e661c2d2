package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Long: `Opens the configured database and applies the schema. Running it again
is safe: every statement is idempotent.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) (err error) {
	var s *store
	s, err = openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s)\n", s.cfg.DBDriver)
	return err
}
