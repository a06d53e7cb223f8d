package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/dataload"
	"yamdb-backend/internal/infrastructure/storage"
)

var (
	dir    string
	bucket string
	prefix string
	wipe   bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load seed files into the database",
	Long: `Load every seed file in a single transaction and move the id sequences past the loaded ids.
Missing files are skipped.

Examples:
  dataload load --dir ./static/data            # Load from a local directory
  dataload load --dir ./static/data --clear    # Empty the tables first
  dataload load --bucket yamdb-seed --prefix v1  # Load from MinIO`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		source, err := buildSource(cmd)
		if err != nil {
			return err
		}

		db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		results, err := dataload.NewLoader(db.Pool, source).Load(ctx, dataload.Options{Clear: wipe})
		if err != nil {
			return err
		}

		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d rows\n", r.Table, r.Rows)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().StringVar(&dir, "dir", "", "Local directory holding the seed files")
	loadCmd.Flags().StringVar(&bucket, "bucket", "", "MinIO bucket holding the seed files (overrides MINIO_BUCKET)")
	loadCmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix inside the bucket")
	loadCmd.Flags().BoolVar(&wipe, "clear", false, "Delete existing rows before loading")
	loadCmd.MarkFlagsMutuallyExclusive("dir", "bucket")
	loadCmd.MarkFlagsOneRequired("dir", "bucket")
}

func buildSource(cmd *cobra.Command) (dataload.Source, error) {
	if dir != "" {
		return dataload.DirSource{Dir: dir}, nil
	}

	store, err := openBucket(cmd, false)
	if err != nil {
		return nil, err
	}
	return dataload.BucketSource{Store: store, Prefix: prefix}, nil
}

func openBucket(cmd *cobra.Command, create bool) (*storage.MinIOStorage, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	minioConfig := cfg.MinIO
	if bucket != "" {
		minioConfig.Bucket = bucket
	}
	return storage.NewMinIOStorage(cmd.Context(), minioConfig, create)
}
