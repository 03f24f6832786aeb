package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/creack/pty"

	"github.com/andyrewlee/scrollwin/internal/logging"
	"github.com/andyrewlee/scrollwin/internal/safego"
)

// Command runs a shell command under a pseudo terminal and follows its
// output. Programs see a terminal, so they line-buffer instead of holding
// output back in a pipe buffer.
type Command struct {
	command string
	dir     string
	env     []string
	cfg     ReaderConfig

	mu      sync.Mutex
	ptyFile *os.File
	cmd     *exec.Cmd
	rows    uint16
	cols    uint16
	closed  bool
	cancel  context.CancelFunc
	done    <-chan struct{}
}

// NewCommand prepares command to run via sh -c in dir.
func NewCommand(command, dir string, env []string, cfg ReaderConfig) *Command {
	cfg.Label = "source.command.read"
	return &Command{command: command, dir: dir, env: env, cfg: cfg}
}

func (c *Command) Name() string { return c.command }

// SetSize sets the terminal size. Before Start it sets the initial size.
func (c *Command) SetSize(rows, cols uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows, c.cols = rows, cols
	if c.closed || c.ptyFile == nil || rows == 0 || cols == 0 {
		return nil
	}
	return pty.Setsize(c.ptyFile, &pty.Winsize{Rows: rows, Cols: cols})
}

func (c *Command) Start(ctx context.Context, out chan<- tea.Msg) error {
	if strings.TrimSpace(c.command) == "" {
		return ErrEmptyCommand
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		return ErrStarted
	}

	cmd := exec.Command("sh", "-c", c.command)
	cmd.Dir = c.dir
	cmd.Env = append(os.Environ(), c.env...)
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")

	var (
		ptmx *os.File
		err  error
	)
	if c.rows > 0 && c.cols > 0 {
		ptmx, err = pty.StartWithSize(cmd, &pty.Winsize{Rows: c.rows, Cols: c.cols})
	} else {
		ptmx, err = pty.Start(cmd)
	}
	if err != nil {
		return fmt.Errorf("start %q: %w", c.command, err)
	}
	logging.Info("command source started: %q pid=%d", c.command, cmd.Process.Pid)

	c.cmd = cmd
	c.ptyFile = ptmx
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = safego.GoDone("source.command.run", func() {
		err := RunReader(ctx, ptmx, out, c.command, c.cfg)
		if errors.Is(err, syscall.EIO) {
			// The pty reports EIO once the child side is gone.
			err = nil
		}
		if ctx.Err() != nil {
			_ = cmd.Process.Kill()
		}
		if waitErr := cmd.Wait(); waitErr != nil && err == nil {
			err = waitErr
		}
		logging.Info("command source exited: %q err=%v", c.command, err)
		stopped(ctx, out, c.command, err)
	})
	return nil
}

// Running reports whether the command was started and has not exited.
func (c *Command) Running() bool {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Close kills the command and waits for the read loop to finish.
func (c *Command) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cancel, done, ptmx := c.cancel, c.done, c.ptyFile
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	if ptmx != nil {
		return ptmx.Close()
	}
	return nil
}
