package commands

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"yamdb-backend/internal/infrastructure/storage"
)

var contentTypes = map[string]string{
	".csv":  "text/csv",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload a local seed directory to MinIO",
	Long: `Upload every .csv and .xlsx file in --dir to the bucket under --prefix,
creating the bucket if needed. A later "dataload load --bucket" reads them back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openBucket(cmd, true)
		if err != nil {
			return err
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			contentType, ok := contentTypes[ext]
			if entry.IsDir() || !ok {
				continue
			}

			if err := upload(cmd, store, entry.Name(), contentType); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringVar(&dir, "dir", "", "Local directory holding the seed files")
	pushCmd.Flags().StringVar(&bucket, "bucket", "", "Target bucket (overrides MINIO_BUCKET)")
	pushCmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix inside the bucket")
	_ = pushCmd.MarkFlagRequired("dir")
}

func upload(cmd *cobra.Command, store *storage.MinIOStorage, name, contentType string) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	key := path.Join(prefix, name)
	if err := store.Upload(cmd.Context(), key, f, info.Size(), contentType); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s to %s/%s\n", name, store.Bucket(), key)
	return nil
}
