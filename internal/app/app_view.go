package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/andyrewlee/scrollwin/internal/perf"
)

// View renders the log pane, the status bar and the help footer.
func (a *App) View() tea.View {
	defer perf.Time("view")()

	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion
	view.SetContent(a.render())
	return view
}

func (a *App) render() string {
	if a.quitting {
		return ""
	}
	if !a.ready {
		return "Loading..."
	}

	parts := make([]string, 0, 3)
	if a.paneHeight() > 0 {
		parts = append(parts, a.surface.View())
	}
	parts = append(parts, a.statusBar())
	if a.cfg.UI.ShowHelp {
		parts = append(parts, a.helpView())
	}
	return a.zone.Scan(strings.Join(parts, "\n"))
}

func (a *App) paneHeight() int {
	return max(0, a.height-a.footerHeight())
}

func (a *App) footerHeight() int {
	h := 1
	if a.cfg.UI.ShowHelp {
		h += lipgloss.Height(a.helpView())
	}
	return h
}

func (a *App) helpView() string {
	lines := strings.Split(a.help.View(a.keymap), "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, a.width, "")
	}
	return strings.Join(lines, "\n")
}

func (a *App) statusBar() string {
	st := a.styles

	left := st.SourceName.Render(a.sourceName()) + st.LineRange.Render(a.rangeText())
	if trimmed := a.history.Offset(); trimmed > 0 {
		left += st.Trimmed.Render(fmt.Sprintf("%d trimmed", trimmed))
	}
	if a.err != nil {
		left += st.Error.Render(" " + a.err.Error())
	}

	var right []string
	if toast := a.toast.View(); toast != "" {
		right = append(right, toast)
	}
	if !a.scroller.Sticky() {
		right = append(right, a.zone.Mark(followZoneID, st.HelpKey.Render("[follow]")))
	}
	if a.stopped {
		label := "EOF"
		if a.stopErr != nil {
			label = "EXITED"
		}
		right = append(right, st.StoppedBadge.Render(label))
	}
	if a.scroller.Sticky() {
		right = append(right, st.FollowBadge.Render("FOLLOW"))
	} else {
		right = append(right, st.PausedBadge.Render("PAUSED"))
	}
	rightText := lipgloss.JoinHorizontal(lipgloss.Top, right...)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(rightText)
	if gap < 1 {
		return ansi.Truncate(left+" "+rightText, a.width, "")
	}
	return left + st.StatusBar.Render(strings.Repeat(" ", gap)) + rightText
}

func (a *App) sourceName() string {
	if a.source == nil {
		return "-"
	}
	return a.source.Name()
}

// rangeText describes the absolute lines in view, 1-based.
func (a *App) rangeText() string {
	total := a.scroller.LineCount()
	first, count := a.surface.VisibleRows()
	if count == 0 {
		return fmt.Sprintf("0 of %d", total)
	}
	start, _ := a.scroller.Window()
	from := start + first + 1
	return fmt.Sprintf("%d-%d of %d", from, from+count-1, total)
}
