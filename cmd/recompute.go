package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/storage"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute-artwork",
	Short: "Rebuild the cached artwork status of every order",
	Long: `Recompute each order's artwork status from its items and store the result.

Run after restoring a backup or editing designs by hand; the API keeps the cached
value current on its own.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := connect(); err != nil {
			return err
		}

		changed, err := storage.NewOrderStore(config.GetDB()).RecomputeAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("recompute stopped after %d changes: %w", changed, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recomputed artwork status, %d orders changed\n", changed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recomputeCmd)
}
