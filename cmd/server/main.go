package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vnfurniture/internal/config"
	"vnfurniture/internal/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "VN Furniture storefront",
	Long: `VN Furniture storefront server.

Available subcommands:
  serve       - Run the HTTP server
  grant-admin - Give an existing account the admin role`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.Initialize(cfg.Env)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, grantAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
