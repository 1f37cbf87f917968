package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary    = lipgloss.Color("#6366F1") // Indigo
	Python     = lipgloss.Color("#3B82F6") // Blue
	JavaScript = lipgloss.Color("#EAB308") // Yellow
	Accent     = lipgloss.Color("#F97316") // Orange
	Success    = lipgloss.Color("#22C55E") // Green
	Error      = lipgloss.Color("#F43F5E") // Rose
	Text       = lipgloss.Color("#F3F4F6") // Gray 100
	TextDim    = lipgloss.Color("#9CA3AF") // Gray 400
	Border     = lipgloss.Color("#374151") // Gray 700
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Streak = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
)

// States
var (
	Passed = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Failed = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Components
var (
	ProgressEmpty = lipgloss.NewStyle().
		Background(Border)
)
