package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	pg "rentflow/internal/platform/postgres"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the PostgreSQL schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		url, err := databaseURL()
		if err != nil {
			return err
		}
		if err := pg.MigrateUp(url); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		url, err := databaseURL()
		if err != nil {
			return err
		}
		if err := pg.MigrateDown(url, migrateSteps); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", migrateSteps)
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

func databaseURL() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Database.URL == "" {
		return "", errors.New("database.url is not set (RENTFLOW_DATABASE_URL)")
	}
	return cfg.Database.URL, nil
}
