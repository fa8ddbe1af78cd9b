// Package main manages the database schema and the starter data set.
package main

import (
	"fmt"
	"os"

	"github.com/jstittsworth/monster-team-builder/internal/models"
	"github.com/jstittsworth/monster-team-builder/internal/seed"
	"github.com/jstittsworth/monster-team-builder/pkg/config"
	"github.com/jstittsworth/monster-team-builder/pkg/database"
	"github.com/jstittsworth/monster-team-builder/pkg/logger"
	"github.com/spf13/cobra"
)

var databaseURL string

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Schema and seed management for the team builder",
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update all tables and indexes",
	RunE: withDB(func(db *database.DB) error {
		if err := runMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.GetLogger().Info("Migrations completed successfully")
		return nil
	}),
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Drop all tables",
	RunE: withDB(func(db *database.DB) error {
		if err := dropTables(db); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
		logger.GetLogger().Info("Tables dropped successfully")
		return nil
	}),
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter types, monsters, moves and items",
	RunE: withDB(func(db *database.DB) error {
		if err := seed.Load(db); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
		logger.GetLogger().Info("Data seeded successfully")
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which tables exist and their row counts",
	RunE: withDB(func(db *database.DB) error {
		for _, t := range tableStatus(db) {
			if !t.Exists {
				fmt.Printf("%-24s missing\n", t.Name)
				continue
			}
			fmt.Printf("%-24s %d rows\n", t.Name, t.Rows)
		}
		return nil
	}),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "database URL, overrides DATABASE_URL (sqlite://<path> for sqlite)")
	rootCmd.AddCommand(upCmd, downCmd, seedCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withDB opens the configured database for the duration of one command.
func withDB(run func(db *database.DB) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())

		url := cfg.DatabaseURL
		if databaseURL != "" {
			url = databaseURL
		}

		db, err := database.Open(url, cfg.IsDevelopment())
		if err != nil {
			return err
		}
		defer db.Close()

		return run(db)
	}
}

var indexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_user_monsters_team_slot ON user_monsters(team_id, slot)",
	"CREATE INDEX IF NOT EXISTS idx_teams_created_at ON teams(created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_team_analyses_team_created ON team_analyses(team_id, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_moves_category ON moves(category)",
}

func runMigrations(db *database.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func dropTables(db *database.DB) error {
	for _, table := range models.Tables {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

type tableInfo struct {
	Name   string
	Exists bool
	Rows   int64
}

func tableStatus(db *database.DB) []tableInfo {
	out := make([]tableInfo, 0, len(models.Tables))
	for _, table := range models.Tables {
		info := tableInfo{Name: table, Exists: db.Migrator().HasTable(table)}
		if info.Exists {
			if err := db.Table(table).Count(&info.Rows).Error; err != nil {
				logger.GetLogger().WithError(err).WithField("table", table).Warn("Failed to count rows")
			}
		}
		out = append(out, info)
	}
	return out
}
