package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ohare93/xagentsync/internal/handoff"
)

// Consistent color scheme for modes and statuses across commands
var (
	// Modes
	StyleDeploy = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green - shipping
	StyleDebug  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red - something is broken
	StylePlan   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // Blue - thinking ahead

	// Statuses
	StyleInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow - still being written
	StylePending    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // Cyan - waiting for a reader
	StyleArchived   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // Gray - consumed

	// UI elements
	StyleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	StyleHighlight = lipgloss.NewStyle().Bold(true)
	StyleSuccess   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	StyleWarning   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// GetModeStyle returns the style used to print a mode name
func GetModeStyle(mode handoff.Mode) lipgloss.Style {
	switch mode {
	case handoff.ModeDeploy:
		return StyleDeploy
	case handoff.ModeDebug:
		return StyleDebug
	case handoff.ModePlan:
		return StylePlan
	default:
		return lipgloss.NewStyle()
	}
}

// GetStatusStyle returns the style used to print a status
func GetStatusStyle(status handoff.Status) lipgloss.Style {
	switch status {
	case handoff.StatusInProgress:
		return StyleInProgress
	case handoff.StatusPending:
		return StylePending
	case handoff.StatusArchived:
		return StyleArchived
	default:
		return lipgloss.NewStyle()
	}
}
