package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"climate-server/internal/config"
	"climate-server/internal/db"
	"climate-server/internal/logging"
	"climate-server/internal/migrate"
	"climate-server/internal/seed"
)

const appName = "climate-tools"

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// tools carries the state shared by subcommands; the database is opened
// read-write in PersistentPreRunE and closed in PersistentPostRunE.
type tools struct {
	logger *slog.Logger
	conn   *sql.DB
}

func newRootCmd() *cobra.Command {
	t := &tools{}

	root := &cobra.Command{
		Use:           "tools",
		Short:         "Maintenance commands for the climate database",
		Long:          "Applies schema migrations and loads station/measurement CSV exports into the SQLite file named by SQLITE_PATH (or DB_DSN).",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			t.logger = logging.New(cmd.ErrOrStderr(), cfg, version, appName)

			conn, err := db.Open(cfg, db.ReadWrite, t.logger)
			if err != nil {
				return err
			}
			t.conn = conn
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return db.Close(t.conn)
		},
	}

	root.AddCommand(newMigrateCmd(t), newSeedCmd(t))
	return root
}

func newMigrateCmd(t *tools) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := migrate.Run(cmd.Context(), t.conn, t.logger)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", n)
			return nil
		},
	}
}

func newSeedCmd(t *tools) *cobra.Command {
	var stationsPath, measurementsPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load station and measurement CSV files",
		Long:  "Loads the stations file first, then the measurements file. Each file is loaded in its own transaction; existing rows are updated.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if stationsPath == "" && measurementsPath == "" {
				return errors.New("seed: at least one of --stations or --measurements is required")
			}
			ctx := cmd.Context()

			if stationsPath != "" {
				n, err := loadFile(stationsPath, func(f *os.File) (int, error) {
					return seed.Stations(ctx, t.conn, f, t.logger)
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d station(s) loaded\n", n)
			}
			if measurementsPath != "" {
				n, err := loadFile(measurementsPath, func(f *os.File) (int, error) {
					return seed.Measurements(ctx, t.conn, f, t.logger)
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d measurement(s) loaded\n", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&stationsPath, "stations", "s", "", "stations CSV (station,name,latitude,longitude,elevation)")
	cmd.Flags().StringVarP(&measurementsPath, "measurements", "m", "", "measurements CSV (station,date,prcp,tobs)")
	return cmd
}

func loadFile(path string, load func(*os.File) (int, error)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	defer func() { _ = f.Close() }()

	n, err := load(f)
	if err != nil {
		return 0, fmt.Errorf("seed %s: %w", path, err)
	}
	return n, nil
}
