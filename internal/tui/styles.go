// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/trendscope/internal/present"
)

const sidebarWidth = 18

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	topBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			PaddingRight(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(lipgloss.Color("238"))

	navItemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	navActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

	contentStyle = lipgloss.NewStyle().PaddingLeft(1)

	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Width(12)
	helpBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var toneStyles = map[present.Tone]lipgloss.Style{
	present.TonePositive:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	present.ToneStrongPositive: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
	present.ToneNegative:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	present.ToneStrongNegative: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	present.ToneWarning:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	present.ToneMuted:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
}

func toned(t present.Tone, s string) string {
	if st, ok := toneStyles[t]; ok {
		return st.Render(s)
	}
	return s
}

func field(label, value string) string {
	return labelStyle.Render(label) + value
}
