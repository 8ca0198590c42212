package tui

import (
	"fmt"
	"strings"
)

// HelpItem represents a single keyboard shortcut and its description
type HelpItem struct {
	Key         string
	Description string
}

// CommonHelpContent returns help for common commands
func CommonHelpContent() string {
	items := []HelpItem{
		{"?", "Toggle help"},
		{"q", "Quit application"},
		{"Ctrl+C", "Force quit"},
	}
	return renderHelpItems(items)
}

// DashboardHelpContent returns help for the dashboard
func DashboardHelpContent() string {
	items := []HelpItem{
		{"Tab / Shift+Tab", "Switch pane"},
		{"i", "Edit single query"},
		{"e", "Edit multiple queries (one per line)"},
		{"s / Enter", "Start scraping (config pane)"},
		{"t", "Terminate running job"},
		{"c", "Clear job status"},
		{"r", "Refresh file list"},
		{"↑ / ↓ / j / k", "Navigate file list"},
		{"w", "Save selected file to the download directory"},
		{"d", "Delete selected file"},
		{"D", "Delete all CSV files"},
		{"PgUp / PgDn", "Scroll"},
	}
	return renderHelpItems(items) + "\n" + CommonHelpContent()
}

// JobConfigHelpContent returns help while a query field is being edited
func JobConfigHelpContent() string {
	items := []HelpItem{
		{"Enter", "Start scraping (single query)"},
		{"Ctrl+S", "Start scraping (multiple queries)"},
		{"Esc", "Stop editing"},
	}
	return renderHelpItems(items)
}

// renderHelpItems formats help items into a readable string
func renderHelpItems(items []HelpItem) string {
	var b strings.Builder
	for _, item := range items {
		keyStyle := boldStyle.Foreground(colorPrimary)
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			keyStyle.Render(item.Key),
			item.Description))
	}
	return b.String()
}
