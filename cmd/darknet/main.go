package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gravitrone/darknet/cli/internal/cmd"
	"github.com/gravitrone/darknet/cli/internal/config"
	"github.com/gravitrone/darknet/cli/internal/effects"
	"github.com/gravitrone/darknet/cli/internal/logging"
	"github.com/gravitrone/darknet/cli/internal/navigate"
	"github.com/gravitrone/darknet/cli/internal/schedule"
	"github.com/gravitrone/darknet/cli/internal/ui"
)

// tuiFlags override config values for the interactive session only.
type tuiFlags struct {
	page    string
	logFile string
	matrix  bool
	noBoot  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func newRootCmd() *cobra.Command {
	g := &cmd.Globals{}
	var flags tuiFlags

	root := &cobra.Command{
		Use:   "darknet",
		Short: "Darknet - hacker terminal for the archive site",
		Long:  "Darknet browses the archive site in a terminal: keyboard navigation, live link status and the boot sequence.",
		RunE: func(c *cobra.Command, _ []string) error {
			return runTUI(g, flags, c.Flags().Changed("matrix"))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	g.Bind(root)
	root.Flags().StringVar(&flags.page, "page", "", "page to open first")
	root.Flags().StringVar(&flags.logFile, "log-file", "", `log file path ("-" disables logging)`)
	root.Flags().BoolVar(&flags.matrix, "matrix", false, "draw the matrix rain background")
	root.Flags().BoolVar(&flags.noBoot, "no-boot", false, "skip the boot sequence")

	root.AddCommand(cmd.ProbeCmd(g))
	root.AddCommand(cmd.ItemsCmd(g))
	root.AddCommand(cmd.ConfigCmd(g))
	return root
}

func runTUI(g *cmd.Globals, flags tuiFlags, matrixSet bool) error {
	cfg, err := g.Load()
	if err != nil {
		return err
	}
	applyFlags(cfg, flags, matrixSet)

	client, err := cmd.NewSiteClient(cfg)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Open(cfg.LogFile, slog.LevelInfo)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("session started", "site", client.Root(), "relay", cfg.RelayURL)
	logger.Info(effects.Welcome)

	opts := ui.DefaultOptions()
	opts.StartPage = cfg.StartPage
	opts.BootDelay = cfg.BootDelay
	opts.Navigation = navigate.Options{
		NavDelay:        cfg.NavDelay,
		BackDelay:       cfg.BackDelay,
		OverlayDuration: cfg.OverlayDuration,
	}
	opts.PollInterval = cfg.PollInterval
	opts.ProbeConcurrency = cfg.ProbeConcurrency
	opts.MatrixRain = cfg.MatrixRain

	app := ui.NewApp(ui.Deps{
		Pages:  client,
		Sched:  schedule.New(nil),
		Prober: cmd.NewProber(cfg),
		Player: cmd.NewPlayer(cfg, os.Stdout, logger),
		Opener: navigate.OpenURL,
		Logger: logger,
	}, opts)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	logger.Info("session ended")
	return nil
}

func applyFlags(cfg *config.Config, flags tuiFlags, matrixSet bool) {
	if flags.page != "" {
		cfg.StartPage = flags.page
	}
	if flags.logFile != "" {
		cfg.LogFile = flags.logFile
	}
	if matrixSet {
		cfg.MatrixRain = flags.matrix
	}
	if flags.noBoot {
		cfg.BootDelay = 0
	}
}
