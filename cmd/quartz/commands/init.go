package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quartzboard/quartz/internal/printer"
)

var forceInit bool

// starterConfig is the quartz.yml written by `quartz init`.
const starterConfig = `version: "1.0"
instance: default

redis:
  addr: localhost:6379

engine:
  max_chain_depth: 5
  action_timeout: 10s
  run_history_limit: 100

health:
  addr: ":8080"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter quartz.yml",
	Long: `Create a starter quartz.yml in the current directory.

The generated file points at a local Redis on the default port with the
instance name 'default'. Edit it to change the instance name, Redis
connection, or engine settings.

Use --force to overwrite an existing quartz.yml.`,
	RunE: runInit,
}

func init() {
	// Note: cannot use -f shorthand, it reads too much like --config's -c
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing quartz.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if !forceInit {
		if _, err := os.Stat(configPath); err == nil {
			return printer.Error(
				"config file already exists",
				fmt.Sprintf("'%s' already exists.", configPath),
				[]string{"Overwrite it with:\n  quartz init --force"},
			)
		}
	}

	if err := os.WriteFile(configPath, []byte(starterConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	printer.Success("Created %s\n", configPath)
	printer.Info("Edit it to set your instance name and Redis connection, then run:\n  quartz engine --board <board-id>\n")
	return nil
}
