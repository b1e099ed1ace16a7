package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/spf13/cobra"

	"github.com/sincarebunch/barbershop-api/internal/config"
	"github.com/sincarebunch/barbershop-api/internal/database"
	"github.com/sincarebunch/barbershop-api/internal/repository"
)

// NewMigrateCmd creates the migrate command with up and down subcommands.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(true, func(db *sql.DB) error {
				cmd.Println("Running migrations...")
				if err := database.MigrateUp(db); err != nil {
					return err
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(true, func(db *sql.DB) error {
				if err := database.MigrateDown(db); err != nil {
					return err
				}
				cmd.Println("Rolled back one migration")
				return nil
			})
		},
	})
	return cmd
}

// NewPruneTokensCmd creates the command that deletes expired refresh tokens.
func NewPruneTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-tokens",
		Short: "Delete expired refresh tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(false, func(db *sql.DB) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				n, err := repository.NewTokenRepo(db, 0).DeleteExpired(ctx)
				if err != nil {
					return err
				}
				cmd.Printf("Deleted %d expired refresh tokens\n", n)
				return nil
			})
		},
	}
}

func withDB(multiStatements bool, fn func(*sql.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.DB.DSN(multiStatements))
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}
