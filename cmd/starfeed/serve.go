package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/starfeed/starfeed/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Starfeed API server.

The server will:
  - Load configuration from starfeed.yaml (or --config)
  - Or load configuration from STARFEED_* environment variables
  - Open the database and apply migrations
  - Serve the metered content API, checkout and admin endpoints

Environment variables (for container deployments):
  STARFEED_DATABASE_PATH    - SQLite path (default: starfeed.db)
  STARFEED_SERVER_PORT      - Server port (default: 8080)
  STARFEED_AUTH_JWT_SECRET  - Secret for admin token signing
  STARFEED_PAYMENT_PROVIDER - Payment provider: razorpay or dummy
  STARFEED_ADMIN_EMAIL      - Admin email for first-run bootstrap
  STARFEED_ADMIN_PASSWORD   - Admin password for first-run bootstrap

Examples:
  starfeed serve
  starfeed serve --config /etc/starfeed/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if _, err := os.Stat(path); err != nil {
		// No config file; bootstrap falls back to env-only config.
		path = ""
		fmt.Println("Running with environment variables (no config file)")
	}

	app, err := bootstrap.New(path)
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
