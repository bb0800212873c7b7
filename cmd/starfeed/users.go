package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/starfeed/starfeed/adapters/hasher"
	"github.com/starfeed/starfeed/adapters/sqlite"
	"github.com/starfeed/starfeed/ports"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts",
	Long: `Manage Starfeed accounts.

Examples:
  starfeed users list
  starfeed users create --email=dev@example.com --name="Dev"
  starfeed users create --email=ops@example.com --password=secret --role=admin`,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE:  runUsersList,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	RunE:  runUsersCreate,
}

var (
	userEmail    string
	userName     string
	userPassword string
	userRole     string
)

func init() {
	rootCmd.AddCommand(usersCmd)

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)

	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address (required)")
	usersCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	usersCreateCmd.Flags().StringVar(&userPassword, "password", "", "password (needed for admin login)")
	usersCreateCmd.Flags().StringVar(&userRole, "role", "user", "role: user, admin or superadmin")
	usersCreateCmd.MarkFlagRequired("email")
}

func runUsersList(cmd *cobra.Command, args []string) error {
	db, _, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := sqlite.NewUserStore(db).List(context.Background(), 0, 0)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Println("No accounts found.")
		fmt.Println()
		fmt.Println("Create one with: starfeed users create --email=<email>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tROLE\tSTATUS\tCREATED")
	fmt.Fprintln(w, "--\t-----\t----\t------\t-------")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Email, u.Role, u.Status, u.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
	return nil
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	switch userRole {
	case "user", "admin", "superadmin":
	default:
		return fmt.Errorf("invalid role: %s", userRole)
	}
	if (userRole == "admin" || userRole == "superadmin") && userPassword == "" {
		return fmt.Errorf("--password is required for %s accounts", userRole)
	}

	db, _, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	var hash []byte
	if userPassword != "" {
		hash, err = hasher.NewBcrypt(0).Hash(userPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
	}

	now := time.Now().UTC()
	u := ports.User{
		ID:           "user_" + uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(userEmail)),
		Name:         userName,
		PasswordHash: hash,
		Role:         userRole,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := sqlite.NewUserStore(db).Create(context.Background(), u); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("%s Created %s account %s\n", checkMark, u.Role, u.Email)
	fmt.Printf("User ID: %s\n", u.ID)
	return nil
}
