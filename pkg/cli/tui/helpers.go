package tui

import (
	"errors"
	"fmt"
	"strings"

	"scrape-dash-go/pkg/scraper"
)

// renderEmptyState renders a muted placeholder for an empty pane
func renderEmptyState(message string) string {
	return mutedStyle.Render(message) + "\n"
}

// renderLoadingState renders a standard loading message
func renderLoadingState(message string) string {
	return infoStyle.Render(message) + "\n"
}

// renderField renders a "Label: value" line
func renderField(label, value string) string {
	return fieldLabelStyle.Render(label) + " " + value + "\n"
}

// wrapText wraps text to a specified width, breaking at word boundaries
func wrapText(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return indent + "\n"
	}

	var b strings.Builder
	line := ""
	for _, word := range words {
		if line != "" && len(line)+len(word)+1 > width {
			b.WriteString(fmt.Sprintf("%s%s\n", indent, line))
			line = word
		} else {
			if line != "" {
				line += " "
			}
			line += word
		}
	}
	if line != "" {
		b.WriteString(fmt.Sprintf("%s%s\n", indent, line))
	}
	return b.String()
}

// handleListNavigation handles common navigation keys for list views (up/down/j/k)
// Returns the new selected index and whether navigation occurred
func handleListNavigation(key string, selected int, total int) (newSelected int, handled bool) {
	switch key {
	case "up", "k":
		if selected > 0 {
			return selected - 1, true
		}
		return selected, true
	case "down", "j":
		if selected < total-1 {
			return selected + 1, true
		}
		return selected, true
	case "home", "g":
		return 0, true
	case "end", "G":
		if total > 0 {
			return total - 1, true
		}
		return 0, true
	}
	return selected, false
}

// clampIndex keeps a list cursor inside [0, total).
func clampIndex(selected, total int) int {
	if total == 0 || selected < 0 {
		return 0
	}
	if selected >= total {
		return total - 1
	}
	return selected
}

// handleQuitKeys checks if a key should quit the application
func handleQuitKeys(key string) bool {
	switch key {
	case "ctrl+c", "q":
		return true
	}
	return false
}

// userFacingError converts structured backend errors into friendly messages,
// while leaving other error types unchanged.
func userFacingError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *scraper.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.UserMessage())
	}

	return err
}
