package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/dpesim/internal/api"
	"github.com/rgehrsitz/dpesim/internal/auth"
	"github.com/rgehrsitz/dpesim/internal/bridge"
	"github.com/rgehrsitz/dpesim/internal/config"
	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/logging"
	"github.com/rgehrsitz/dpesim/internal/tui"
	"github.com/rgehrsitz/dpesim/internal/tui/tuimsg"
)

var rootCmd = &cobra.Command{
	Use:   "dpesim-tui REF|URL",
	Short: "Interactive DPE renovation scenario editor",
	Long: `Interactive DPE renovation scenario editor. Pass a project reference, or
a share link (which may carry a selected scenario in simul_id).`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().String("config", "", "Path to config.yaml")
	rootCmd.Flags().String("log-file", "", "Write logs to this file (the terminal belongs to the UI)")
	rootCmd.Flags().Bool("debug", false, "Enable debug logging")
}

// location accepts a bare reference or a full link.
func location(appURL, arg string) (bridge.Location, error) {
	if strings.Contains(arg, "://") {
		return bridge.ParseLocation(arg)
	}
	return bridge.NewLocation(appURL, strings.ToUpper(strings.TrimSpace(arg)))
}

func run(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	logFile, _ := cmd.Flags().GetString("log-file")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.NewInputParser().Load(configPath)
	if err != nil {
		return err
	}
	if debug {
		cfg.Log.Level = "debug"
	}

	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "dpesim")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.FromSlog(logging.NewLogger(cfg.Log.Level, logOut))

	loc, err := location(cfg.Simulation.AppURL, args[0])
	if err != nil {
		return err
	}
	if ref, ok := loc.Ref(); !ok || !domain.ValidRef(ref) {
		return fmt.Errorf("%q: %w", args[0], api.ErrInvalidRef)
	}

	tokens := auth.NewTokenSource(auth.NewFileStore(cfg.Session.File))
	client, err := api.New(cfg.API.BaseURL, tokens, api.WithTimeout(cfg.API.Timeout), api.WithLogger(logger))
	if err != nil {
		return err
	}
	if _, err := tokens.Token(); err != nil {
		logger.Warnf("no valid session (%v): recorded scenarios will not be shown", err)
	}

	d := bridge.NewDispatcher()
	b := bridge.New(client, loc, bridge.Options{
		Tokens:          tokens,
		Dispatcher:      d,
		Logger:          logger,
		MaxCombinations: cfg.Simulation.MaxCombinations,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	model := tui.NewModel(b, d, tui.Options{
		Runner: tuimsg.Runner{Ctx: ctx, Timeout: cfg.API.Timeout},
	})
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
