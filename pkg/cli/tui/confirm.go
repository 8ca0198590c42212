package tui

import (
	"strings"

	"scrape-dash-go/pkg/orchestrator"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// confirmPrompt asks y/N for the orchestrator's pending destructive action.
type confirmPrompt struct {
	input textinput.Model
	kind  orchestrator.ConfirmKind
}

func newConfirmPrompt() confirmPrompt {
	input := textinput.New()
	input.Placeholder = "y/N"
	input.CharLimit = 3
	input.Width = 10
	input.Cursor.SetMode(cursor.CursorStatic)

	return confirmPrompt{input: input}
}

// open resets the input for a new confirmation.
func (p *confirmPrompt) open(kind orchestrator.ConfirmKind) tea.Cmd {
	p.kind = kind
	p.input.Reset()
	return p.input.Focus()
}

func (p *confirmPrompt) close() {
	p.kind = orchestrator.ConfirmNone
	p.input.Blur()
}

func (p *confirmPrompt) isOpen() bool {
	return p.kind != orchestrator.ConfirmNone
}

// update feeds a key to the prompt. done is true once the user answered.
func (p *confirmPrompt) update(msg tea.KeyMsg) (done, yes bool, cmd tea.Cmd) {
	switch msg.String() {
	case "enter":
		answer := strings.ToLower(strings.TrimSpace(p.input.Value()))
		return true, answer == "y" || answer == "yes", nil
	case "esc":
		return true, false, nil
	}
	p.input, cmd = p.input.Update(msg)
	return false, false, cmd
}

func (p *confirmPrompt) view(c orchestrator.Confirmation, width int) string {
	var b strings.Builder
	b.WriteString(renderWarning(confirmTitle(c.Kind)) + "\n\n")
	b.WriteString(wrapText(c.Prompt, width, ""))
	b.WriteString("\n" + p.input.View() + "\n")
	b.WriteString(helpStyle.Render("Type y and press Enter to confirm • Esc to cancel"))
	return panelStyle.BorderForeground(colorWarning).Render(b.String())
}

func confirmTitle(kind orchestrator.ConfirmKind) string {
	switch kind {
	case orchestrator.ConfirmTerminate:
		return "Terminate job?"
	case orchestrator.ConfirmClear:
		return "Clear job status?"
	case orchestrator.ConfirmDeleteFile:
		return "Delete file?"
	case orchestrator.ConfirmDeleteAllFiles:
		return "Delete all files?"
	default:
		return "Confirm"
	}
}
