package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/krishichetan/kchetan/internal/view"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("28")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("25"))

	botStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("28"))

	toneStyles = map[view.Tone]lipgloss.Style{
		view.ToneGood:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		view.ToneWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		view.ToneAlert: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

func toned(t view.Tone, s string) string {
	if st, ok := toneStyles[t]; ok {
		return st.Render(s)
	}
	return s
}

func markerStyle(c view.MarkerColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(string(c)))
}
