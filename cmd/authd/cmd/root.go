package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	auth "github.com/goliatone/go-authd"
	"github.com/goliatone/go-authd/config"
)

var (
	cfg        *config.Config
	logger     *auth.SlogLogger
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "authd",
	Short: "Credential based authentication service",
	Long: `authd registers users, verifies credentials at sign-in, issues signed
session cookies and gates protected routes by role.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger = auth.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (env overrides use the AUTHD_ prefix)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dbCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
