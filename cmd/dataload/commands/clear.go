package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"yamdb-backend/internal/dataload"
)

var yes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every seeded row",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !yes {
			return fmt.Errorf("refusing to clear without --yes")
		}

		ctx := cmd.Context()
		db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := dataload.NewLoader(db.Pool, nil).Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "all seeded tables cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
}
