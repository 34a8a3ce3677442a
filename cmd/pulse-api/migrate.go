package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/pulse/backend/internal/db"
	"github.com/JonnyWalker81/pulse/backend/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(conn *migrationTarget) error {
			if err := db.Migrate(conn.db, conn.driver); err != nil {
				return err
			}
			return conn.report("migrations applied")
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(conn *migrationTarget) error {
			if err := db.MigrateDown(conn.db, conn.driver); err != nil {
				return err
			}
			return conn.report("migration rolled back")
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(conn *migrationTarget) error {
			version, err := db.Version(conn.db, conn.driver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
			return nil
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

type migrationTarget struct {
	db     *sql.DB
	driver string
	log    logger.Logger
}

func (t *migrationTarget) report(msg string) error {
	version, err := db.Version(t.db, t.driver)
	if err != nil {
		return err
	}
	t.log.Info(msg, logger.Int64("version", version))
	return nil
}

func withDB(fn func(*migrationTarget) error) error {
	cfg, _, log, err := loadConfig()
	if err != nil {
		return err
	}
	conn, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(&migrationTarget{db: conn.DB, driver: cfg.Database.Driver, log: log})
}
