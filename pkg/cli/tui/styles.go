package tui

import (
	"strings"

	"scrape-dash-go/pkg/models"
	"scrape-dash-go/pkg/orchestrator"

	"github.com/charmbracelet/lipgloss"
)

// Define a consistent color palette
var (
	// Colors
	colorPrimary   = lipgloss.Color("62")  // Purple/blue
	colorSecondary = lipgloss.Color("244") // Gray
	colorSuccess   = lipgloss.Color("42")  // Green
	colorError     = lipgloss.Color("196") // Red
	colorWarning   = lipgloss.Color("214") // Orange/Yellow
	colorInfo      = lipgloss.Color("39")  // Cyan
	colorMuted     = lipgloss.Color("240") // Dark gray
	colorBorder    = lipgloss.Color("238") // Border gray
)

// Reusable style definitions
var (
	// Title/Header styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	// Text styles
	boldStyle = lipgloss.NewStyle().Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Status styles
	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorInfo)

	// File/result styles
	fileNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	fileMetaStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	urlStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	// Field label styles
	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			MarginRight(2)

	// List/item styles
	selectedStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	selectedMarkerStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	focusedPanelStyle = panelStyle.
				BorderForeground(colorPrimary)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(colorError).
			Bold(true).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorError).
			Padding(1, 2)

	// Divider
	dividerStyle = lipgloss.NewStyle().
			Foreground(colorBorder)

	// Help text
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)
)

// Helper functions for common formatting patterns
func renderSuccess(msg string) string {
	return successStyle.Render("✓ " + msg)
}

func renderError(msg string) string {
	return errorStyle.Render("❌ " + msg)
}

func renderWarning(msg string) string {
	return warningStyle.Render("⚠ " + msg)
}

func renderInfo(msg string) string {
	return infoStyle.Render("ℹ " + msg)
}

func renderDivider(length int) string {
	return dividerStyle.Render(strings.Repeat("─", length))
}

// statusStyle colors a job status badge.
func statusStyle(s models.JobStatus) lipgloss.Style {
	switch s {
	case models.JobStatusCompleted:
		return successStyle
	case models.JobStatusFailed:
		return errorStyle
	case models.JobStatusTerminating, models.JobStatusTerminated:
		return warningStyle.Bold(true)
	default:
		return infoStyle.Bold(true)
	}
}

// renderNotification renders a toast line for its level.
func renderNotification(msg string, level orchestrator.Level) string {
	switch level {
	case orchestrator.LevelSuccess:
		return renderSuccess(msg)
	case orchestrator.LevelError, orchestrator.LevelAlert:
		return renderError(msg)
	default:
		return renderInfo(msg)
	}
}
