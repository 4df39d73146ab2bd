package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/kendall-kelly/printshop-api/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := connect(); err != nil {
			return err
		}
		if err := config.Migrate(config.GetDB()); err != nil {
			return err
		}
		log.Println("Database migration completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
