package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-pluginform/pkg/form"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// RenderNotice formats a notice as a one-line banner.
func RenderNotice(n form.Notice) string {
	switch n.Kind {
	case form.NoticeSuccess:
		return successStyle.Render("✔ " + n.Message)
	case form.NoticeError:
		return errorStyle.Render("✘ " + n.Message)
	default:
		return ""
	}
}
