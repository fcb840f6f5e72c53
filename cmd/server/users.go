package main

import (
	"fmt"

	"github.com/kaistout4/ImageGallerySPA/gallery/domain"
	"github.com/kaistout4/ImageGallerySPA/gallery/persistence"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage author display names",
}

var usersUpsertCmd = &cobra.Command{
	Use:   "upsert <username> <display name> [<username> <display name>...]",
	Short: "Create or update display names",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return fmt.Errorf("expected username and display name pairs, got %d arguments", len(args))
		}
		return nil
	},
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

		authors := make([]domain.Author, 0, len(args)/2)
		for i := 0; i < len(args); i += 2 {
			authors = append(authors, domain.Author{ID: args[i], DisplayName: args[i+1]})
		}

		// all pairs or none
		if err := persistence.NewUserDirectory(database.DB()).UpsertUsers(cmd.Context(), authors); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d user(s) updated\n", len(args)/2)
		return nil
	},
}

func init() {
	usersCmd.AddCommand(usersUpsertCmd)
}
