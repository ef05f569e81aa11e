package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/freelancekenya/kazi/internal/api"
	"github.com/freelancekenya/kazi/internal/identity"
	"github.com/freelancekenya/kazi/internal/pkg/logger"
	"github.com/freelancekenya/kazi/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const cliContextKey contextKey = "cliContext"

// restoreTimeout bounds how long a command waits for the restored
// session to be verified against the backend
const restoreTimeout = 15 * time.Second

// CliContext holds shared CLI context
type CliContext struct {
	Config   *Config
	Backend  *api.Client
	Identity *identity.Provider
	Boot     *session.Bootstrapper
	Session  session.Session
	Logger   *slog.Logger
}

// UserID returns the backend user ID for the signed-in session
func (c *CliContext) UserID() (string, error) {
	if !c.Session.Authenticated() {
		return "", fmt.Errorf("not logged in: run 'kazi auth login' first")
	}
	if c.Session.NeedsProfile() {
		return "", fmt.Errorf("profile incomplete: finish sign-up in the web client first")
	}
	return c.Session.Profile.UserID, nil
}

// Global logging flags
var (
	logLevel      string
	logFile       string
	logToStderr   bool
	alsoLogStderr bool
	logFormat     string
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var ctx CliContext

	rootCmd := &cobra.Command{
		Use:           "kazi",
		Short:         "CLI for the Freelance Kenya marketplace",
		Long:          `A command line interface for the Freelance Kenya marketplace backend.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors (main.go handles it)
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Setup logging first
			if err := setupLogging(); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}

			// Create logger for this context
			ctx.Logger = slog.Default().With("component", "cli")
			ctx.Logger.Debug("CLI started", "command", cmd.Name())

			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx.Config = config

			backendURL, err := config.BackendURL()
			if err != nil {
				return err
			}
			backend, err := api.NewClient(backendURL)
			if err != nil {
				return fmt.Errorf("invalid backend URL: %w", err)
			}
			ctx.Backend = backend

			// Config commands never touch the identity provider
			if isCommand(cmd, "config") {
				cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
				return nil
			}

			apiKey, err := config.APIKey()
			if err != nil {
				return err
			}
			ctx.Identity = identity.NewProvider(apiKey)
			ctx.Boot = session.New(ctx.Identity, ctx.Backend, ctx.Logger)

			// Auth commands manage credentials themselves
			if isCommand(cmd, "auth") {
				cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
				return nil
			}

			// Everything else needs a verified session
			if err := restoreSession(&ctx); err != nil {
				return fmt.Errorf("authentication required: %w\nPlease run 'kazi auth login' first", err)
			}

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if ctx.Boot != nil {
				ctx.Boot.Close()
			}
			return nil
		},
	}

	// Add subcommands
	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newOverviewCommand())
	rootCmd.AddCommand(newJobsCommand())
	rootCmd.AddCommand(newWalletCommand())
	rootCmd.AddCommand(newProfileCommand())

	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path (if specified, logs to file instead of stderr)")
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false,
		"Log to stderr (default behavior unless --log-file specified)")
	rootCmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false,
		"Log to both file and stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")

	return rootCmd
}

// isCommand reports whether cmd is name or a direct child of name
func isCommand(cmd *cobra.Command, name string) bool {
	if cmd.Name() == name {
		return true
	}
	return cmd.Parent() != nil && cmd.Parent().Name() == name
}

// restoreSession signs in from the stored refresh token and waits for the
// bootstrapper to verify the session against the backend
func restoreSession(c *CliContext) error {
	creds, err := LoadCredentials()
	if err != nil {
		return err
	}

	sessions := make(chan session.Session, 4)
	unsubscribe := c.Boot.Subscribe(func(s session.Session, loading bool) {
		if !loading {
			select {
			case sessions <- s:
			default:
			}
		}
	})
	defer unsubscribe()

	// Drain the snapshot delivered at subscribe time; the session we want
	// is published after the restore below triggers reconciliation
	select {
	case <-sessions:
	default:
	}

	restoreCtx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	if _, err := c.Identity.RestoreRefreshToken(restoreCtx, creds.RefreshToken); err != nil {
		return fmt.Errorf("session expired: %w", err)
	}

	select {
	case s := <-sessions:
		if !s.Authenticated() {
			return fmt.Errorf("backend verification failed")
		}
		c.Session = s
		return nil
	case <-time.After(restoreTimeout):
		return fmt.Errorf("timed out waiting for session verification")
	}
}

// setupLogging configures the global logger based on CLI flags
func setupLogging() error {
	// Default to stderr logging unless file is specified
	if logFile == "" {
		logToStderr = true
	}

	cfg := logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	// Set as default logger
	slog.SetDefault(globalLogger)
	return nil
}

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}
