package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quartzboard/quartz/internal/engine"
	"github.com/quartzboard/quartz/internal/notify"
	"github.com/quartzboard/quartz/internal/printer"
)

var engineBoardID string

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Run the automation engine for a board",
	Long: `Run the automation engine for a board until interrupted.

The engine subscribes to the board's change events and runs every enabled
automation's trigger/condition/action pipeline against them. Run history and
run counts are recorded in Redis; notifications are published on the
instance's notifications channel.

When health.addr is set in quartz.yml the engine also serves GET /healthz
and Prometheus metrics on GET /metrics.

Examples:
  # Run the engine for a board
  quartz engine --board sprint-42

  # With an explicit config file
  quartz --config ./ops/quartz.yml engine --board sprint-42`,
	RunE: runEngine,
}

func init() {
	engineCmd.Flags().StringVarP(&engineBoardID, "board", "b", "", "Board ID to serve (required)")
	engineCmd.MarkFlagRequired("board")
	rootCmd.AddCommand(engineCmd)
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, client, err := connectStore()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := client.Ping(ctx); err != nil {
		return printer.Error(
			"cannot reach Redis",
			err.Error(),
			[]string{"Check redis.addr in quartz.yml and that Redis is running"},
		)
	}

	healthAddr := ""
	if cfg.Health != nil {
		healthAddr = cfg.Health.Addr
	}

	eng := engine.New(client, notify.NewRedisNotifier(client), engine.Config{
		BoardID:               engineBoardID,
		MaxChainDepth:         *cfg.Engine.MaxChainDepth,
		ActionTimeout:         cfg.ActionTimeoutDuration(),
		CascadeDeleteSubitems: cfg.Engine.CascadeDeleteSubitems,
		RunHistoryLimit:       *cfg.Engine.RunHistoryLimit,
		HealthAddr:            healthAddr,
	})

	printer.Info("Engine running for board '%s' (instance '%s'). Ctrl+C to stop.\n", engineBoardID, cfg.Instance)
	return eng.Run(ctx)
}
