package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/infrastructure/database"
	"yamdb-backend/pkg/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "dataload",
	Short: "Seed the YaMDb database from CSV or XLSX files",
	Long: `dataload copies seed files into PostgreSQL in dependency order:

  users, category, genre, titles, genre_title, review, comments

Each file may be .csv or .xlsx and is read from a local directory or a MinIO bucket.
Database settings come from the same DB_* variables the API uses.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load(envFile)
		logger.Init(os.Getenv("APP_ENV"))
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")
}

func connect(ctx context.Context) (*database.PostgresDB, error) {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
