package common

import "github.com/charmbracelet/lipgloss"

// Tokyo Night-inspired color palette
var (
	ColorBackground = lipgloss.Color("#1a1b26")
	ColorForeground = lipgloss.Color("#a9b1d6")
	ColorMuted      = lipgloss.Color("#565f89")
	ColorBorder     = lipgloss.Color("#292e42")

	ColorPrimary   = lipgloss.Color("#7aa2f7") // Blue - follow badge, keys
	ColorSecondary = lipgloss.Color("#bb9af7") // Purple - source name
	ColorSuccess   = lipgloss.Color("#9ece6a")
	ColorWarning   = lipgloss.Color("#e0af68") // Yellow - paused
	ColorError     = lipgloss.Color("#f7768e")
	ColorInfo      = lipgloss.Color("#7dcfff")

	ColorSurface1 = lipgloss.Color("#1f2335") // Status bar
	ColorSurface2 = lipgloss.Color("#24283b")
)
