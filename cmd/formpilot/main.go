package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"formpilot/internal/api"
	"formpilot/internal/config"
	"formpilot/internal/session"
)

var (
	// Global flags
	verbose    bool
	serverURL  string
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "formpilot",
	Short: "formpilot - automatic form filling from your terminal",
	Long: `formpilot submits Google Form URLs to the autofill backend, which answers
each question from your stored profile, previously learned mappings, or AI.

Run without arguments to open the interactive dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The dashboard has its own UI; stdout logging would tear it.
		if cmd.Use == "formpilot" && cmd.CalledAs() == "formpilot" {
			logger = zap.NewNop()
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive dashboard
		return runDashboard()
	},
}

// loadConfig reads the user config, honoring --config and --server overrides.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient wires the session store and API client from config. Most
// subcommands start here.
func newClient() (*api.Client, *session.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := session.NewStore(session.DefaultPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open session: %w", err)
	}

	client := api.NewClient(cfg.ServerURL, store,
		api.WithLogger(logger),
		api.WithUnauthenticatedHook(func() {
			fmt.Fprintln(os.Stderr, "Session expired. Run 'formpilot login' to sign in again.")
		}),
	)
	return client, store, cfg, nil
}

// requireLogin fails fast with a friendly message instead of a guaranteed 401.
func requireLogin(store *session.Store) error {
	if !store.IsAuthenticated() {
		return fmt.Errorf("not logged in. Run 'formpilot login' first")
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.formpilot/config.yaml)")

	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mappingsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
