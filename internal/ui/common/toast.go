package common

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/andyrewlee/scrollwin/internal/messages"
)

// ToastModel manages the single toast shown in the status bar.
type ToastModel struct {
	current *messages.Toast
	seq     int
	styles  Styles
}

// NewToastModel creates a new toast model
func NewToastModel() *ToastModel {
	return &ToastModel{styles: DefaultStyles()}
}

// Show displays message and returns the command that expires it.
func (m *ToastModel) Show(message string, level messages.ToastLevel) tea.Cmd {
	m.seq++
	m.current = &messages.Toast{Message: message, Level: level}
	seq := m.seq
	return SafeTick(durationFor(level), func(time.Time) tea.Msg {
		return messages.ToastExpired{Seq: seq}
	})
}

func durationFor(level messages.ToastLevel) time.Duration {
	switch level {
	case messages.ToastError:
		return 5 * time.Second
	case messages.ToastWarning:
		return 4 * time.Second
	default:
		return 3 * time.Second
	}
}

// Update handles toast messages.
func (m *ToastModel) Update(msg tea.Msg) (*ToastModel, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.Toast:
		return m, m.Show(msg.Message, msg.Level)
	case messages.ToastExpired:
		// A newer toast owns the slot.
		if msg.Seq == m.seq {
			m.current = nil
		}
	}
	return m, nil
}

// View renders the toast notification
func (m *ToastModel) View() string {
	if m.current == nil {
		return ""
	}
	switch m.current.Level {
	case messages.ToastSuccess:
		return m.styles.ToastSuccess.Render("✓ " + m.current.Message)
	case messages.ToastError:
		return m.styles.ToastError.Render("✗ " + m.current.Message)
	case messages.ToastWarning:
		return m.styles.ToastWarning.Render("! " + m.current.Message)
	default:
		return m.styles.ToastInfo.Render("i " + m.current.Message)
	}
}

// Visible returns whether a toast is showing.
func (m *ToastModel) Visible() bool { return m.current != nil }

// Dismiss immediately hides the toast
func (m *ToastModel) Dismiss() { m.current = nil }
