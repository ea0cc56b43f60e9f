package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/quartzboard/quartz/internal/config"
	"github.com/quartzboard/quartz/internal/printer"
	"github.com/quartzboard/quartz/pkg/board"
)

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quartz",
	Short: "Quartz - Typed board store and automation engine",
	Long: `Quartz manages work-tracking boards with typed columns and an
event-driven automation engine.

Boards live in Redis as typed column, group, and item records. Every change
flows through a single write path that publishes board events, and the
automation engine runs trigger/condition/action rules against those events.`,
	Version: version,
	// Prevent silent success when unknown flags are passed to root command
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is specified, show help
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "quartz.yml", "Path to quartz.yml configuration file")
}

// loadConfig reads the configured quartz.yml, reporting a formatted error
// when the file is missing or invalid.
func loadConfig() (*config.QuartzConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, printer.Error(
				"config file not found",
				fmt.Sprintf("No configuration file at '%s'.", configPath),
				[]string{"Create one with:\n  quartz init", "Or point at an existing file:\n  quartz --config path/to/quartz.yml ..."},
			)
		}
		return nil, printer.Error(
			"invalid configuration",
			err.Error(),
			nil,
		)
	}
	return cfg, nil
}

// connectStore loads config and opens the board store client. Callers own
// Close on the returned client.
func connectStore() (*config.QuartzConfig, *board.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := board.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Instance)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create board client: %w", err)
	}
	return cfg, client, nil
}
