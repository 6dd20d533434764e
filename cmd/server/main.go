package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"landmarket/server/config"
	"landmarket/server/internal/database"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "server",
		Short:        "Land parcel marketplace API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		createAdminCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the process logger.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)
	return cfg, logger, nil
}

func openDatabase(cfg *config.Config, logger *logrus.Logger) (*database.Database, error) {
	logger.WithField("driver", cfg.Database.Driver).Info("Opening database")
	db, err := database.NewDatabase(cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer db.Close()

			logger.Info("Database schema is up to date")
			return nil
		},
	}
}

func bootstrap() (*config.Config, *logrus.Logger, *database.Database, error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, db, nil
}
