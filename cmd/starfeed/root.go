package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/starfeed/starfeed/adapters/sqlite"
	"github.com/starfeed/starfeed/config"
)

const checkMark = "✓"

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "starfeed",
	Short: "Celebrity content API with metered keys and plan checkout",
	Long: `Starfeed serves celebrity, movie and entertainment content through a
quota-metered API. Access is sold in monthly call plans paid through
the configured payment gateway.

Quick start:
  starfeed serve    # Start the API server

Management:
  starfeed users    # Manage accounts
  starfeed keys     # Manage API keys
  starfeed plans    # Show the plan catalog
  starfeed orders   # Inspect and reconcile payment orders`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "starfeed.yaml", "config file path")
}

// loadConfig resolves configuration for management commands.
func loadConfig() (*config.Config, error) {
	return config.LoadWithFallback(cfgFile)
}

// openDatabase opens the configured SQLite database with migrations
// applied.
func openDatabase() (*sqlite.DB, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, cfg, nil
}

// confirm asks the operator for a yes/no answer.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}
