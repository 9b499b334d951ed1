package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/planty/config"
	"github.com/shashiranjanraj/planty/database/seeders"
	"github.com/shashiranjanraj/planty/pkg/database"
	"github.com/shashiranjanraj/planty/pkg/migration"
)

// bootDB loads config and opens the database connection. The returned
// func disconnects.
func bootDB(ctx context.Context) (func(), error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	if err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase(), config.DBTimeout()); err != nil {
		return nil, err
	}
	return func() { _ = database.Disconnect(context.Background()) }, nil
}

// withRunner boots the database and hands fn a migration runner.
func withRunner(cmd *cobra.Command, fn func(ctx context.Context, r *migration.Runner) error) error {
	ctx := cmd.Context()
	closeDB, err := bootDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	tracker, err := migration.NewMongoTracker(ctx, database.DB)
	if err != nil {
		return err
	}
	return fn(ctx, migration.New(database.DB, tracker, cmd.OutOrStdout()))
}

// planty migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(ctx context.Context, r *migration.Runner) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Running migrations…")
			return r.Run(ctx)
		})
	},
}

// planty migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(ctx context.Context, r *migration.Runner) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Rolling back last batch…")
			return r.Rollback(ctx)
		})
	},
}

// planty migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(ctx context.Context, r *migration.Runner) error {
			return r.Status(ctx)
		})
	},
}

// planty seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		closeDB, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.RunAll(ctx, database.DB, cmd.OutOrStdout())
	},
}
