package app

import (
	"fmt"
	"runtime/debug"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/andyrewlee/scrollwin/internal/logging"
	"github.com/andyrewlee/scrollwin/internal/messages"
	"github.com/andyrewlee/scrollwin/internal/perf"
	"github.com/andyrewlee/scrollwin/internal/ui/common"
)

// Update handles all messages with panic recovery.
func (a *App) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("panic in app.Update: %v\n%s", r, debug.Stack())
			a.err = fmt.Errorf("internal error: %v", r)
			model = a
			cmd = nil
		}
	}()
	return a.update(msg)
}

func (a *App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer perf.Time("update")()
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.setSize(msg.Width, msg.Height)

	case tea.KeyPressMsg:
		if key.Matches(msg, a.keymap.Quit) {
			a.quitting = true
			return a, tea.Quit
		}
		cmds = append(cmds, a.handleKey(msg))

	case tea.MouseWheelMsg:
		a.handleWheel(msg)

	case tea.MouseClickMsg:
		a.handleClick(msg)

	case messages.SourceOutput:
		a.ingest(msg.Data)

	case messages.SourceRestarted:
		if msg.Continues {
			a.history.Flush()
			a.syncLines()
		} else {
			a.restart()
		}
		cmds = append(cmds, a.toast.Show(fmt.Sprintf("%s %s", msg.Source, msg.Reason), messages.ToastWarning))

	case messages.SourceStopped:
		cmds = append(cmds, a.sourceStopped(msg))

	case messages.Frame:
		a.frames.RunFrame()

	case messages.CopyWindow:
		cmds = append(cmds, a.copyWindow())

	case messages.Toast, messages.ToastExpired:
		var cmd tea.Cmd
		a.toast, cmd = a.toast.Update(msg)
		cmds = append(cmds, cmd)

	case messages.Error:
		cmds = append(cmds, a.toast.Show(msg.Error(), messages.ToastError))
	}

	cmds = append(cmds, a.frames.Cmd())
	return a, tea.Batch(cmds...)
}

// setSize lays out the log pane above the footer and attaches the surface on
// the first size.
func (a *App) setSize(width, height int) {
	a.width = width
	a.height = height
	a.layoutPane()

	if r, ok := a.source.(resizer); ok && width > 0 && a.paneHeight() > 0 {
		if err := r.SetSize(uint16(a.paneHeight()), uint16(width)); err != nil {
			logging.Warn("resize source: %v", err)
		}
	}
}

// layoutPane sizes the surface and keeps the window taller than the pane, so
// the pane can always scroll toward an edge the window can grow past.
func (a *App) layoutPane() {
	pane := a.paneHeight()
	a.surface.SetSize(a.width, pane)
	a.scroller.SetVisibleCount(max(a.cfg.Window.VisibleCount, 2*pane))

	if !a.ready {
		a.ready = true
		a.scroller.SetViewport(a.surface)
	}
	a.scroller.RequestRefresh()
	if a.scroller.LineCount() > 0 {
		a.scroller.OnScroll()
	}
}

func (a *App) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	km := a.keymap
	switch {
	case key.Matches(msg, km.LineUp):
		a.scrollRows(-1)
	case key.Matches(msg, km.LineDown):
		a.scrollRows(1)
	case key.Matches(msg, km.HalfUp):
		a.scrollRows(-max(1, a.paneHeight()/2))
	case key.Matches(msg, km.HalfDown):
		a.scrollRows(max(1, a.paneHeight()/2))
	case key.Matches(msg, km.PageUp):
		a.scrollRows(-max(1, a.paneHeight()-1))
	case key.Matches(msg, km.PageDown):
		a.scrollRows(max(1, a.paneHeight()-1))
	case key.Matches(msg, km.Top):
		a.scrollToOldest()
	case key.Matches(msg, km.Follow):
		a.scroller.Follow()
	case key.Matches(msg, km.Reset):
		a.restart()
		return a.toast.Show("cleared", messages.ToastInfo)
	case key.Matches(msg, km.Copy):
		return func() tea.Msg { return messages.CopyWindow{} }
	case key.Matches(msg, km.Help):
		return a.toggleHelp()
	}
	return nil
}

// scrollRows scrolls the pane. A gesture that cannot move the pane still
// re-classifies the position so the window can grow past its edge.
func (a *App) scrollRows(delta int) {
	if !a.surface.ScrollRows(delta) {
		a.scroller.OnScroll()
	}
}

// scrollToOldest walks the window back to the oldest retained line.
func (a *App) scrollToOldest() {
	if !a.surface.ScrollToTop() {
		a.scroller.OnScroll()
	}
	for !a.scroller.JumpPending() {
		start, _ := a.scroller.Window()
		if start <= a.scroller.LineOffset() {
			break
		}
		a.surface.SetScrollOffset(0)
		a.scroller.OnScroll()
		if next, _ := a.scroller.Window(); next == start {
			break
		}
	}
	a.surface.SetScrollOffset(0)
}

func (a *App) handleWheel(msg tea.MouseWheelMsg) {
	m := msg.Mouse()
	if m.Y < 0 || m.Y >= a.paneHeight() {
		return
	}
	switch m.Button {
	case tea.MouseWheelUp:
		a.scrollRows(-wheelRows)
	case tea.MouseWheelDown:
		a.scrollRows(wheelRows)
	}
}

func (a *App) handleClick(msg tea.MouseClickMsg) {
	m := msg.Mouse()
	if m.Button != tea.MouseLeft {
		return
	}
	z := a.zone.Get(followZoneID)
	if z == nil || z.IsZero() {
		return
	}
	if m.X >= z.StartX && m.X <= z.EndX && m.Y >= z.StartY && m.Y <= z.EndY {
		a.scroller.Follow()
	}
}

// ingest appends raw source bytes and hands the new snapshot to the window.
func (a *App) ingest(data []byte) {
	defer perf.Time("ingest")()
	_, _ = a.history.Write(data)
	a.syncLines()
}

func (a *App) syncLines() {
	lines, offset := a.history.Snapshot()
	a.scroller.SetLines(lines, offset)
	a.scroller.RequestRefresh()
}

// restart follows the tail of a history that started over.
func (a *App) restart() {
	a.history.Clear()
	a.scroller.Reset()
	a.syncLines()
}

func (a *App) sourceStopped(msg messages.SourceStopped) tea.Cmd {
	a.history.Flush()
	a.syncLines()
	a.stopped = true
	a.stopErr = msg.Err
	if msg.Err != nil {
		logging.Warn("source %q stopped: %v", msg.Source, msg.Err)
		return a.toast.Show(fmt.Sprintf("%s: %v", msg.Source, msg.Err), messages.ToastError)
	}
	logging.Info("source %q reached end of input", msg.Source)
	return a.toast.Show("end of input", messages.ToastInfo)
}

// copyWindow copies the materialized window to the clipboard off the update
// goroutine.
func (a *App) copyWindow() tea.Cmd {
	lines := a.scroller.Lines()
	text := strings.Join(lines, "\n")
	n := len(lines)
	return common.SafeCmd(func() tea.Msg {
		if err := common.CopyToClipboard(text); err != nil {
			logging.Warn("copy to clipboard: %v", err)
			return messages.Error{Err: err, Context: "copy"}
		}
		return messages.Toast{Message: fmt.Sprintf("copied %d lines", n), Level: messages.ToastSuccess}
	})
}

func (a *App) toggleHelp() tea.Cmd {
	a.cfg.UI.ShowHelp = !a.cfg.UI.ShowHelp
	if a.ready {
		a.layoutPane()
	}
	snapshot := *a.cfg
	show := snapshot.UI.ShowHelp
	return common.SafeCmd(func() tea.Msg {
		if err := snapshot.SaveUISettings(); err != nil {
			return messages.Error{Err: err, Context: "save settings"}
		}
		logging.Debug("help visible: %v", show)
		return nil
	})
}
