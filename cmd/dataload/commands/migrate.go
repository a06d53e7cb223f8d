package commands

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		return db.Migrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
