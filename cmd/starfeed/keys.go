package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/starfeed/starfeed/adapters/sqlite"
	"github.com/starfeed/starfeed/domain/key"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
	Long: `Manage Starfeed API keys.

Each account holds at most one active key; issuing a second key
requires revoking or rotating the first. The raw secret is printed
exactly once.

Examples:
  starfeed keys issue --user=user_123
  starfeed keys show --user=user_123
  starfeed keys revoke key_abc123`,
}

var keysIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue an API key for a user",
	RunE:  runKeysIssue,
}

var keysShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a user's key and quota standing",
	RunE:  runKeysShow,
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysRevoke,
}

var keyUserID string

func init() {
	rootCmd.AddCommand(keysCmd)

	keysCmd.AddCommand(keysIssueCmd)
	keysCmd.AddCommand(keysShowCmd)
	keysCmd.AddCommand(keysRevokeCmd)

	keysIssueCmd.Flags().StringVar(&keyUserID, "user", "", "user ID (required)")
	keysIssueCmd.MarkFlagRequired("user")
	keysShowCmd.Flags().StringVar(&keyUserID, "user", "", "user ID (required)")
	keysShowCmd.MarkFlagRequired("user")
}

func runKeysIssue(cmd *cobra.Command, args []string) error {
	db, cfg, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()
	ctx := context.Background()

	// Verify the user exists
	if _, err := sqlite.NewUserStore(db).Get(ctx, keyUserID); err != nil {
		return fmt.Errorf("user not found: %s", keyUserID)
	}

	keyStore := sqlite.NewKeyStore(db)
	if existing, err := keyStore.GetByOwner(ctx, keyUserID); err == nil && existing.Active() {
		return fmt.Errorf("user already holds active key %s; revoke it first", existing.ID)
	}

	rawKey, k := key.Generate(cfg.Auth.KeyPrefix)
	k = k.WithOwner(keyUserID)
	if err := keyStore.Create(ctx, k); err != nil {
		return fmt.Errorf("create key: %w", err)
	}

	fmt.Printf("%s Issued API key for user %s\n", checkMark, keyUserID)
	fmt.Println()
	fmt.Println("API Key (save this, shown once):")
	fmt.Printf("  %s\n", rawKey)
	fmt.Println()
	fmt.Printf("Key ID: %s\n", k.ID)
	return nil
}

func runKeysShow(cmd *cobra.Command, args []string) error {
	db, _, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	k, err := sqlite.NewKeyStore(db).GetByOwner(context.Background(), keyUserID)
	if err != nil {
		return fmt.Errorf("no key for user %s", keyUserID)
	}

	status := "active"
	if !k.Active() {
		status = "revoked"
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", k.ID)
	fmt.Fprintf(w, "Prefix\t%s...\n", k.Prefix)
	fmt.Fprintf(w, "Status\t%s\n", status)
	fmt.Fprintf(w, "Plan\t%s\n", k.PlanID)
	fmt.Fprintf(w, "Quota\t%d (free %d + purchased %d)\n", k.TotalQuota(), k.FreeQuota, k.PurchasedQuota)
	fmt.Fprintf(w, "Lifetime hits\t%d\n", k.Usage.LifetimeHits)
	if !k.Usage.LastUsedAt.IsZero() {
		fmt.Fprintf(w, "Last used\t%s\n", k.Usage.LastUsedAt.Format(time.RFC3339))
	}
	w.Flush()
	return nil
}

func runKeysRevoke(cmd *cobra.Command, args []string) error {
	keyID := args[0]

	db, _, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()
	ctx := context.Background()

	keyStore := sqlite.NewKeyStore(db)
	k, err := keyStore.GetByID(ctx, keyID)
	if err != nil {
		return fmt.Errorf("key not found: %s", keyID)
	}
	if !k.Active() {
		fmt.Printf("Key %s is already revoked.\n", keyID)
		return nil
	}

	if !confirm(fmt.Sprintf("Revoke key %s?", keyID)) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := keyStore.Revoke(ctx, keyID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke key: %w", err)
	}

	fmt.Printf("%s Revoked key: %s\n", checkMark, keyID)
	return nil
}
