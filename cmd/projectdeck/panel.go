package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/panel"
	"github.com/fyrsmithlabs/projectdeck/internal/watch"
)

var panelMetricsFile string

func init() {
	rootCmd.AddCommand(panelCmd)
	panelCmd.Flags().StringVar(&panelMetricsFile, "metrics-file", "", "Write cache and command metrics to this file on exit")
}

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Show the live deck in the terminal",
	Long: `Show the deck in a live terminal panel. Changes made by other projectdeck
commands or by editing the settings file appear immediately.

Keys: ↑/↓ select, J/K move, d delete, o open, r reveal, f favicons,
R refresh, q quit.

Logs go to logging.file (default in the user cache directory) while the
panel owns the terminal.

Examples:
  projectdeck panel
  projectdeck panel --metrics-file /tmp/projectdeck.prom`,
	Args: cobra.NoArgs,
	RunE: runPanel,
}

func runPanel(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	h := panel.NewHost()
	coord, err := deck.newCoordinator(h, h, h)
	if err != nil {
		return err
	}

	bridge, err := watch.NewBridge(deck.backend.Path(), deck.store, h, watch.Options{
		MinInterval: deck.cfg.Watch.MinInterval.Duration(),
		Burst:       deck.cfg.Watch.Burst,
		Logger:      deck.logger,
	})
	if err != nil {
		return err
	}
	if err := bridge.Start(ctx); err != nil {
		bridge.Stop()
		return err
	}
	defer bridge.Stop()

	model := panel.NewModel(ctx, deck.store, coord, deck.logger)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	h.Attach(program.Send)
	defer h.Detach()

	deck.logger.Info(ctx, "panel started", zap.String("settings", deck.backend.Path()))
	_, runErr := program.Run()

	if panelMetricsFile != "" {
		if err := writeMetrics(panelMetricsFile, deck.metrics); err != nil {
			deck.logger.Warn(ctx, "failed to write metrics", zap.Error(err))
		}
	}
	if runErr != nil {
		return fmt.Errorf("panel: %w", runErr)
	}
	return nil
}

func writeMetrics(path string, g prometheus.Gatherer) error {
	p, err := absPath(path)
	if err != nil {
		return err
	}
	return prometheus.WriteToTextfile(p, g)
}
