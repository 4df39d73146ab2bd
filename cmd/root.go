// Package cmd is the printshop command line: the API server and its maintenance tasks.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kendall-kelly/printshop-api/config"
)

var rootCmd = &cobra.Command{
	Use:   "printshop-api",
	Short: "Print Shop API - custom print storefront backend",
	Long: `Print Shop API serves the storefront and back office of a custom print shop:
catalog, orders, per-item artwork review, order conversations and notifications.

Run "serve" to start the HTTP server. The other commands are maintenance tasks
that share the server's configuration.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// connect loads configuration and opens the database
func connect() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.SetConfig(cfg)

	if err := config.ConnectDatabase(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
