package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"formpilot/internal/api"
	"formpilot/internal/session"
)

var (
	authUsername string
	authEmail    string
	authPassword string
)

// signupCmd registers a new account
var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account",
	Long: `Create a new account on the autofill backend.

Missing values are prompted for interactively. On success you are logged in
immediately; no separate login step is needed.`,
	RunE: runSignup,
}

// loginCmd authenticates with the backend
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the autofill backend",
	RunE:  runLogin,
}

// logoutCmd clears the stored session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	Long: `Remove the saved session file. Other running formpilot instances sharing
this home directory notice the logout and return to their login screens.`,
	RunE: runLogout,
}

// whoamiCmd shows the authenticated user
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently logged-in user",
	RunE:  runWhoami,
}

// prompt reads one line from stdin with a label. Empty input returns "".
func prompt(label string) string {
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func runSignup(cmd *cobra.Command, args []string) error {
	client, store, _, err := newClient()
	if err != nil {
		return err
	}

	username := authUsername
	if username == "" {
		username = prompt("Username")
	}
	email := authEmail
	if email == "" {
		email = prompt("Email")
	}
	password := authPassword
	confirm := password
	if password == "" {
		password = prompt("Password")
		confirm = prompt("Confirm password")
	}

	tok, err := client.Signup(cmd.Context(), api.SignupRequest{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}

	if err := store.SetCredentials(tok.AccessToken, session.User{
		ID:       tok.UserID.String(),
		Username: tok.Username,
	}); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Printf("✓ Account created. Logged in as %s\n", tok.Username)
	fmt.Println("\nNext: run 'formpilot profile set' to store your answers.")
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, store, _, err := newClient()
	if err != nil {
		return err
	}

	username := authUsername
	if username == "" {
		username = prompt("Username")
	}
	password := authPassword
	if password == "" {
		password = prompt("Password")
	}

	tok, err := client.Login(cmd.Context(), username, password)
	if err != nil {
		return err
	}

	if err := store.SetCredentials(tok.AccessToken, session.User{
		ID:       tok.UserID.String(),
		Username: tok.Username,
	}); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Printf("✓ Logged in as %s\n", tok.Username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := session.NewStore(session.DefaultPath())
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	if !store.IsAuthenticated() {
		fmt.Println("Not logged in.")
		return nil
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Println("✓ Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, store, _, err := newClient()
	if err != nil {
		return err
	}
	if err := requireLogin(store); err != nil {
		return err
	}

	// Ask the backend rather than trusting the cached record; this also
	// surfaces an expired token right away.
	user, err := client.Me(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as: %s\n", user.Username)
	fmt.Printf("  Email:   %s\n", user.Email)
	if user.HasProfile {
		fmt.Println("  Profile: configured")
	} else {
		fmt.Println("  Profile: not set (run 'formpilot profile set')")
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringVarP(&authUsername, "username", "u", "", "Account username")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "Account password (prompted if omitted)")
	}
	signupCmd.Flags().StringVarP(&authEmail, "email", "e", "", "Account email")
}
