package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and print the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close()

		version, err := database.SchemaVersion()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s at schema version %d\n", database.Path(), version)
		return nil
	},
}
