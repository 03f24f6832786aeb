package cli

import (
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/andyrewlee/scrollwin/internal/app"
	"github.com/andyrewlee/scrollwin/internal/config"
	"github.com/andyrewlee/scrollwin/internal/logging"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// runViewer runs the TUI until the user quits.
func runViewer(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts.apply(cfg, cmd.Flags())
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.Paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("create %s: %w", cfg.Paths.Home, err)
	}
	if err := logging.Initialize(cfg.Paths.LogsRoot, logging.ParseLevel(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not initialize logging: %v\n", err)
	}
	defer logging.Close()

	stdinIsTTY := term.IsTerminal(os.Stdin.Fd())
	src, err := opts.newSource(cfg, args, os.Stdin, stdinIsTTY)
	if err != nil {
		return err
	}
	logging.Info("Starting scrollwin on %s", src.Name())

	programOpts := []tea.ProgramOption{tea.WithFilter(newMouseFilter().filter)}
	if !stdinIsTTY {
		// stdin carries the log, so keys come from the controlling terminal.
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return fmt.Errorf("open terminal for input: %w", err)
		}
		defer tty.Close()
		programOpts = append(programOpts, tea.WithInput(tty))
	}

	a := app.New(cfg, src)
	p := tea.NewProgram(a, programOpts...)
	a.SetMsgSender(p.Send)

	_, runErr := p.Run()
	a.Shutdown()
	if runErr != nil {
		logging.Error("App exited with error: %v", runErr)
		return runErr
	}
	logging.Info("scrollwin shutdown complete")
	return nil
}

// mouseFilter drops wheel events that arrive faster than a frame, which
// some terminals emit in bursts.
type mouseFilter struct {
	interval  time.Duration
	lastWheel time.Time
	now       func() time.Time
}

func newMouseFilter() *mouseFilter {
	return &mouseFilter{interval: 15 * time.Millisecond, now: time.Now}
}

func (f *mouseFilter) filter(_ tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.MouseWheelMsg); ok {
		now := f.now()
		if now.Sub(f.lastWheel) < f.interval {
			return nil
		}
		f.lastWheel = now
	}
	return msg
}
