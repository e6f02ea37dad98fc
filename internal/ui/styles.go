package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// --- UI Styles ---
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#ED225D"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ED225D")).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	sizeCellStyle  = cellStyle.Align(lipgloss.Right)
	rowFocusStyle  = cellStyle.Background(lipgloss.Color("#2A2B3D"))
	focusCellStyle = cellStyle.Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#ED225D"))
	menuCellStyle  = cellStyle.Foreground(lipgloss.Color("252"))
	borderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#ED225D")).
			Padding(1, 2).
			Margin(1, 0)
)
