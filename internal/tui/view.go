package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(15)
	valueStyle  = lipgloss.NewStyle()
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	offStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// View renders the status table, the controls and the key help.
func (m Model) View() string {
	v := m.view

	authenticated := v.Authenticated
	if v.UserName != "" {
		authenticated += " (" + v.UserName + ")"
	}

	rows := []string{
		row("Loading", v.Loading),
		row("Authenticated", authenticated),
		row("Expires at", v.ExpiresAt),
		row("Expires in", v.ExpiresIn),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("User"), userStyle.Render(v.User)),
	}
	table := boxStyle.Render(strings.Join(rows, "\n"))

	autoRefresh := offStyle.Render("off")
	if v.AutoRefresh {
		autoRefresh = onStyle.Render("on")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("J26 Authentication Demo"))
	b.WriteString("\n\n")
	b.WriteString(table)
	b.WriteString("\n\nAuto-refresh: ")
	b.WriteString(autoRefresh)
	b.WriteString("\n")

	if m.loginURL != "" {
		b.WriteString("\nSign in: ")
		b.WriteString(m.loginURL)
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	help := "a toggle auto-refresh • l sign-in link • q quit"
	if v.RefreshEnabled {
		help = "r refresh • " + help
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(help))
	b.WriteString("\n")
	return b.String()
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}
