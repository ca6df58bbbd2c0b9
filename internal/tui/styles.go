package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ohare93/xagentsync/internal/handoff"
)

var (
	// Base styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6")).
			MarginBottom(1)

	rowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(lipgloss.Color("240")).
				Bold(true)

	// Mode colors
	deployColor = lipgloss.Color("2") // Green
	debugColor  = lipgloss.Color("1") // Red
	planColor   = lipgloss.Color("4") // Blue

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))
)

func modeStyle(mode handoff.Mode) lipgloss.Style {
	switch mode {
	case handoff.ModeDeploy:
		return lipgloss.NewStyle().Foreground(deployColor)
	case handoff.ModeDebug:
		return lipgloss.NewStyle().Foreground(debugColor)
	case handoff.ModePlan:
		return lipgloss.NewStyle().Foreground(planColor)
	default:
		return lipgloss.NewStyle()
	}
}
