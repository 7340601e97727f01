package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/b0bbywan/go-portal-doctor/rules"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)

	stepStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))

	detailStyle = lipgloss.NewStyle().PaddingLeft(4)
)

func severityBadge(severity rules.Severity) string {
	switch severity {
	case rules.SeverityError:
		return errorStyle.Render("ERROR")
	case rules.SeverityWarning:
		return warnStyle.Render("WARN ")
	default:
		return infoStyle.Render("INFO ")
	}
}
