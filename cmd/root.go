package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devcompass/devcompass/internal/app"
	"github.com/devcompass/devcompass/internal/config"
	"github.com/devcompass/devcompass/internal/logging"
	"github.com/devcompass/devcompass/internal/store"
)

var (
	cfg     *config.Config
	logger  = zap.NewNop()
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "devcompass",
	Short: "Learn Python and JavaScript by solving coding challenges",
	Long: "devcompass tracks your progress through Python and JavaScript challenges, " +
		"runs your solutions remotely, generates personalized learning paths " +
		"and hosts a small community feed.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd, 0)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/devcompass/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory for local data (overrides DEVCOMPASS_DATA_DIR)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DEVCOMPASS_DB)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(challengeCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(communityCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// configPath returns the --config flag or the default location.
func configPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file and applies the command-line overrides,
// which take precedence over the file and the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		if c.Database.Driver == "sqlite" && c.Database.DSN == filepath.Join(c.DataDir, config.DBFile) {
			c.Database.DSN = ""
		}
		c.DataDir = dir
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := store.EnsureDir(p); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		c.Database = store.Config{Driver: "sqlite", DSN: p}
	}
	if err := c.Resolve(); err != nil {
		return nil, err
	}
	return c, nil
}

// openApp opens the application state for a command. Callers must Close it.
func openApp() (*app.App, error) {
	a, err := app.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}
