package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/freelancekenya/kazi/internal/identity"
)

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Manage authentication for the Freelance Kenya CLI`,
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthStatusCommand())
	cmd.AddCommand(newAuthTokenCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to Freelance Kenya",
		Long: `Authenticate with an email and password.

The long-lived refresh token is stored per context under ~/.config/kazi/;
ID tokens are minted fresh on every invocation and never written to disk.

Examples:
  # Prompt for email and password
  kazi auth login

  # Provide the email on the command line
  kazi auth login --email user@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)
			logger := slog.Default().With("command", "login")

			var err error
			if email == "" || password == "" {
				email, password, err = promptCredentials(email)
				if err != nil {
					return err
				}
			}

			logger.Info("Starting login", "email", email)

			signInCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			principal, err := ctx.Identity.SignInWithPassword(signInCtx, email, password)
			if err != nil {
				var perr *identity.ProviderError
				if errors.As(err, &perr) {
					return fmt.Errorf("login failed: %s", perr.UserMessage())
				}
				return fmt.Errorf("login failed: %w", err)
			}

			// Verify against the backend so a bad account fails loudly now
			// rather than on the first real command
			token, err := ctx.Identity.IDToken(signInCtx, false)
			if err != nil {
				return fmt.Errorf("failed to obtain token: %w", err)
			}
			ident, err := ctx.Backend.VerifyFirebaseAuth(signInCtx, token)
			if err != nil {
				return fmt.Errorf("backend verification failed: %w", err)
			}

			creds := &Credentials{
				RefreshToken: ctx.Identity.RefreshToken(),
				UserID:       ident.UserID,
				Email:        principal.Email,
				Provider:     principal.Provider,
				SavedAt:      time.Now(),
			}
			if err := SaveCredentials(creds); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			fmt.Printf("✓ Successfully logged in as %s\n", principal.Email)
			if !ident.UserExists {
				fmt.Println("  Your profile is incomplete; finish sign-up in the web client.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address (if not provided, will prompt)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (if not provided, will prompt)")

	return cmd
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from Freelance Kenya",
		Long:  `Remove the stored refresh token for the current context`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			if _, err := LoadCredentials(); err != nil {
				return fmt.Errorf("not logged in: %w", err)
			}

			ctx.Identity.SignOut()

			if err := RemoveCredentials(); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}

			fmt.Println("✓ Successfully logged out")
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := LoadCredentials()
			if err != nil {
				fmt.Println("Not logged in")
				return nil
			}

			fmt.Printf("Logged in as: %s\n", creds.Email)
			fmt.Printf("User ID: %s\n", creds.UserID)
			if creds.Provider != "" {
				fmt.Printf("Provider: %s\n", creds.Provider)
			}
			fmt.Printf("Credentials saved: %s\n", creds.SavedAt.Local().Format("2006-01-02 15:04:05 MST"))

			return nil
		},
	}
}

func newAuthTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Mint and display a fresh ID token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			creds, err := LoadCredentials()
			if err != nil {
				return fmt.Errorf("not logged in: %w", err)
			}

			tokenCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if _, err := ctx.Identity.RestoreRefreshToken(tokenCtx, creds.RefreshToken); err != nil {
				return fmt.Errorf("session expired: %w", err)
			}

			token, err := ctx.Identity.IDToken(tokenCtx, false)
			if err != nil {
				return fmt.Errorf("failed to obtain token: %w", err)
			}

			fmt.Println(token)
			return nil
		},
	}
}

func promptCredentials(email string) (string, string, error) {
	if email == "" {
		fmt.Print("Email: ")
		if _, err := fmt.Scanln(&email); err != nil {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(email)
	}

	// Get password (hidden)
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // newline after password input
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}

	return email, string(passwordBytes), nil
}
