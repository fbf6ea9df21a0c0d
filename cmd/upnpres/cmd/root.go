// Package cmd implements the CLI commands for upnpres.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/config"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/observability"
	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/version"
)

// cfgFile holds the config file path from the CLI flag.
var cfgFile string

// cfg and logger are populated by the persistent pre-run and shared by all
// subcommands.
var (
	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "upnpres",
	Short:   "Delivery-profile classifier and resource mediator",
	Version: version.Short(),
	Long: `upnpres classifies broadcast media against standardized delivery
profiles and mediates the resulting resources: each resource gets a
sequence-allocated id, a persisted row, and a protocol-info string a
media renderer can act on.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return initRuntime()
	}

	// Flag values override config and environment only when explicitly
	// set, preserving the priority CLI flag > env var > config > default.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., ./configs, /etc/upnpres, $HOME/.upnpres)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")
}

// initRuntime loads the configuration and builds the process logger.
func initRuntime() error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := rootCmd.PersistentFlags()
	if value, ok := changedString(flags, "log-level"); ok {
		loaded.Logging.Level = value
	}
	if value, ok := changedString(flags, "log-format"); ok {
		loaded.Logging.Format = value
	}

	cfg = loaded
	logger = observability.NewLogger(cfg.Logging)
	observability.SetDefault(logger)
	return nil
}

// changedString returns a string flag's value only when the user explicitly
// set it.
func changedString(flags *pflag.FlagSet, name string) (string, bool) {
	if !flags.Changed(name) {
		return "", false
	}
	value, err := flags.GetString(name)
	if err != nil {
		return "", false
	}
	return value, true
}
