package main

import (
	"fmt"

	"github.com/kendall-kelly/cafe-pos-api/config"
	"github.com/kendall-kelly/cafe-pos-api/idbridge"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// env is what commands need from the outside world
type env struct {
	loadConfig func() (*config.Config, error)
	openDB     func(*config.Config) (*gorm.DB, error)
}

func defaultEnv() env {
	return env{
		loadConfig: config.Load,
		openDB:     config.ConnectDatabase,
	}
}

func newRootCmd(e env) *cobra.Command {
	root := &cobra.Command{
		Use:          "posctl",
		Short:        "Café POS operator tool",
		Long:         "posctl converts order UUIDs to receipt numbers and back, and manages the POS database.",
		SilenceUsage: true,
	}

	root.AddCommand(
		newNumericCmd(),
		newDisplayCmd(),
		newResolveCmd(e),
		newMigrateCmd(e),
	)
	return root
}

func newNumericCmd() *cobra.Command {
	var digits int

	cmd := &cobra.Command{
		Use:   "numeric <uuid>",
		Short: "Print the numeric id of a UUID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, ok := idbridge.Numeric(args[0], digits)
			if !ok {
				return fmt.Errorf("%q is not a UUID", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	cmd.Flags().IntVarP(&digits, "digits", "d", idbridge.DefaultMaxDigits, "maximum number of decimal digits")
	return cmd
}

func newDisplayCmd() *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:   "display <uuid>",
		Short: "Print the short display code of a UUID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !idbridge.IsCanonical(args[0]) {
				return fmt.Errorf("%q is not a UUID", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), idbridge.DisplayID(args[0], length))
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "l", idbridge.DefaultDisplayLength, "number of characters to keep")
	return cmd
}

// connect loads configuration and opens the configured database
func (e env) connect() (*config.Config, *gorm.DB, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := e.openDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
