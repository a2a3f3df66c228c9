package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains lipgloss styles for rendered views
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Tag       lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Card      lipgloss.Style
	ErrorBox  lipgloss.Style
	StatValue lipgloss.Style
	StatLabel lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the colored styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Tag: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")), // Cyan
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Accent: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")), // Pink
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
		ErrorBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1),
		StatValue: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		StatLabel: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
	}
}

// PlainStyles keeps layout but drops colors and borders, for --no-color
// and piped output
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:     plain,
		Subtitle:  plain,
		Tag:       plain,
		Muted:     plain,
		Accent:    plain,
		Error:     plain,
		Success:   plain,
		Card:      plain.PaddingLeft(2),
		ErrorBox:  plain,
		StatValue: plain,
		StatLabel: plain,
		Help:      plain.MarginTop(1),
	}
}

// StylesFor picks the style set for the color setting
func StylesFor(noColor bool) Styles {
	if noColor {
		return PlainStyles()
	}
	return DefaultStyles()
}
