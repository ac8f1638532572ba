package main

import (
	"fmt"

	"github.com/kendall-kelly/cafe-pos-api/idbridge"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// resolvable maps --table values to the tables carrying numeric ids
var resolvable = map[string]string{
	"orders": models.Order{}.TableName(),
	"sales":  models.Sale{}.TableName(),
}

func newResolveCmd(e env) *cobra.Command {
	var (
		table          string
		includeDeleted bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <numeric-id>",
		Short: "Find the UUID behind a receipt number",
		Long: "Scans the most recent records of a table for the one whose numeric id matches. " +
			"Only the configured fetch window is searched; older records are not found.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, ok := resolvable[table]
			if !ok {
				return fmt.Errorf("unknown table %q (want orders or sales)", table)
			}
			if !idbridge.IsNumeric(args[0]) {
				return fmt.Errorf("%q is not a numeric id", args[0])
			}

			cfg, db, err := e.connect()
			if err != nil {
				return err
			}

			scope := models.Visible
			if includeDeleted {
				scope = func(db *gorm.DB) *gorm.DB { return db }
			}

			finder := idbridge.NewFinder(
				idbridge.NewGormSource(db, name, scope),
				idbridge.WithMaxDigits(cfg.IDMaxDigits),
				idbridge.WithFetchLimit(cfg.IDFetchLimit),
			)

			id, found, err := finder.FindString(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("lookup failed: %w", err)
			}
			if !found {
				return fmt.Errorf("no %s record with numeric id %s among the latest %d", table, args[0], finder.FetchLimit())
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&table, "table", "t", "orders", "table to search (orders or sales)")
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "also match soft-deleted records")
	return cmd
}

func newMigrateCmd(e env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := e.connect()
			if err != nil {
				return err
			}
			if err := models.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables (%s)\n", len(models.All()), cfg.DatabaseDriver)
			return nil
		},
	}
}
