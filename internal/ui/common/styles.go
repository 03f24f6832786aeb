package common

import "github.com/charmbracelet/lipgloss"

// Styles contains all the application styles
type Styles struct {
	// Status bar
	StatusBar    lipgloss.Style
	SourceName   lipgloss.Style
	LineRange    lipgloss.Style
	Trimmed      lipgloss.Style
	FollowBadge  lipgloss.Style
	PausedBadge  lipgloss.Style
	StoppedBadge lipgloss.Style

	// Help bar
	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	Muted lipgloss.Style
	Error lipgloss.Style

	// Toast notifications
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
	ToastInfo    lipgloss.Style
	ToastWarning lipgloss.Style
}

// DefaultStyles returns the default application styles using Tokyo Night palette
func DefaultStyles() Styles {
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	return Styles{
		StatusBar: lipgloss.NewStyle().
			Foreground(ColorForeground).
			Background(ColorSurface1),

		SourceName: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary).
			Background(ColorSurface1).
			Padding(0, 1),

		LineRange: lipgloss.NewStyle().
			Foreground(ColorForeground).
			Background(ColorSurface1).
			Padding(0, 1),

		Trimmed: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Background(ColorSurface1).
			Padding(0, 1),

		FollowBadge: badge.
			Foreground(ColorBackground).
			Background(ColorPrimary),

		PausedBadge: badge.
			Foreground(ColorBackground).
			Background(ColorWarning),

		StoppedBadge: badge.
			Foreground(ColorBackground).
			Background(ColorMuted),

		Help: lipgloss.NewStyle().
			Foreground(ColorMuted),

		HelpKey: lipgloss.NewStyle().
			Foreground(ColorPrimary),

		HelpDesc: lipgloss.NewStyle().
			Foreground(ColorMuted),

		Muted: lipgloss.NewStyle().
			Foreground(ColorMuted),

		Error: lipgloss.NewStyle().
			Foreground(ColorError),

		ToastSuccess: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Background(ColorSurface2).
			Padding(0, 1),

		ToastError: lipgloss.NewStyle().
			Foreground(ColorError).
			Background(ColorSurface2).
			Padding(0, 1),

		ToastInfo: lipgloss.NewStyle().
			Foreground(ColorInfo).
			Background(ColorSurface2).
			Padding(0, 1),

		ToastWarning: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Background(ColorSurface2).
			Padding(0, 1),
	}
}
