package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

var userRole string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
	Long:  `Manage SafeSplit users directly against the metadata store.`,
}

var userAddCmd = &cobra.Command{
	Use:   "add <username> <email>",
	Short: "Add a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runUserAdd,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserDelete,
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Change a user's password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserPasswd,
}

func init() {
	userAddCmd.Flags().StringVar(&userRole, "role", string(models.RoleEndUser), "user role (end_user, premium_user, sys_admin, super_admin)")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userPasswdCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	username, email := args[0], args[1]

	role, err := models.ParseRole(userRole)
	if err != nil {
		return err
	}

	// Open the store first so the configured password floor is in effect
	// before the prompt is validated.
	_, s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	password, err := promptPassword(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return err
	}
	if err := models.ValidatePassword(password); err != nil {
		return err
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
	}
	if _, err := s.CreateUser(context.Background(), user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("User %s created with role %s\n", username, role)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	_, s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	users, err := s.ListUsers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tEMAIL\tROLE\tENABLED\t2FA\tLAST LOGIN")
	for _, u := range users {
		lastLogin := "never"
		if u.LastLogin != nil {
			lastLogin = u.LastLogin.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\t%s\n",
			u.Username, u.Email, u.Role, u.Enabled, u.TwoFactorEnabled, lastLogin)
	}
	return w.Flush()
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	username := args[0]
	if models.IsSuperAdminUsername(username) {
		return fmt.Errorf("the bootstrap super admin cannot be deleted")
	}

	_, s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteUser(context.Background(), username); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	fmt.Printf("User %s deleted\n", username)
	return nil
}

func runUserPasswd(cmd *cobra.Command, args []string) error {
	username := args[0]

	_, s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	user, err := s.GetUser(context.Background(), username)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	password, err := promptPassword(fmt.Sprintf("New password for %s: ", username))
	if err != nil {
		return err
	}
	if err := models.ValidatePassword(password); err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.UpdateUserPassword(context.Background(), user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Printf("Password updated for %s\n", username)
	return nil
}

// promptPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read for piped input.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
