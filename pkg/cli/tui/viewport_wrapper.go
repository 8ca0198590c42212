package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"scrape-dash-go/pkg/cli/logger"
)

// ViewportWrapper wraps a model with viewport and common command support
type ViewportWrapper struct {
	model    tea.Model
	viewport viewport.Model
	width    int
	height   int
	config   ViewportConfig

	// Common commands
	showHelp    bool
	helpContent string
}

// ViewportConfig configures the wrapper behavior
type ViewportConfig struct {
	Title        string
	ShowHeader   bool
	ShowFooter   bool
	HeaderHeight int           // Fixed header height (0 = auto)
	FooterHeight int           // Fixed footer height (0 = auto)
	UseViewport  bool          // Enable scrolling (false = simple responsive)
	MinWidth     int           // Minimum terminal width
	MinHeight    int           // Minimum terminal height
	EnableHelp   bool          // Enable '?' for help
	HelpContent  func() string // Function to generate help text
	OnQuit       func()        // Called once before the program quits
}

// InputCapturer is implemented by models that sometimes need every key,
// e.g. while a text field has focus. Only ctrl+c is intercepted then.
type InputCapturer interface {
	CapturingInput() bool
}

// NewViewportWrapper creates a new wrapper around a model
func NewViewportWrapper(model tea.Model, config ViewportConfig) *ViewportWrapper {
	vp := viewport.New(0, 0)
	// Arrow keys belong to the wrapped model's lists, so the viewport only pages.
	vp.KeyMap = viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
	}

	return &ViewportWrapper{
		model:    model,
		viewport: vp,
		config:   config,
		width:    80, // Default
		height:   24, // Default
	}
}

func (w *ViewportWrapper) Init() tea.Cmd {
	var cmd tea.Cmd
	if w.model != nil {
		cmd = w.model.Init()
	}
	return cmd
}

func (w *ViewportWrapper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	log := logger.L()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		log.Debug("window resized", zap.Int("width", msg.Width), zap.Int("height", msg.Height))
		w.width = msg.Width
		w.height = msg.Height

		// Validate minimum size
		if w.config.MinWidth > 0 && w.width < w.config.MinWidth {
			w.width = w.config.MinWidth
		}
		if w.config.MinHeight > 0 && w.height < w.config.MinHeight {
			w.height = w.config.MinHeight
		}

		w.calculateLayout()

		var cmd tea.Cmd
		if w.model != nil {
			w.model, cmd = w.model.Update(msg)
		}
		return w, cmd

	case tea.KeyMsg:
		k := msg.String()
		if k == "ctrl+c" {
			return w, w.quit()
		}
		if w.capturing() {
			break
		}
		switch {
		case k == "?" && w.config.EnableHelp:
			w.showHelp = !w.showHelp
			if w.showHelp && w.config.HelpContent != nil {
				w.helpContent = w.config.HelpContent()
			}
			return w, nil
		case w.showHelp:
			// Help overlay swallows keys; esc or q close it
			if k == "esc" || k == "q" {
				w.showHelp = false
			}
			return w, nil
		case handleQuitKeys(k):
			return w, w.quit()
		}
	}

	// Forward all other messages to wrapped model
	var cmd tea.Cmd
	if w.model != nil {
		w.model, cmd = w.model.Update(msg)
	}

	if w.config.UseViewport {
		var vpCmd tea.Cmd
		w.viewport, vpCmd = w.viewport.Update(msg)
		cmd = tea.Batch(cmd, vpCmd)
	}

	return w, cmd
}

func (w *ViewportWrapper) quit() tea.Cmd {
	logger.L().Debug("quit requested")
	if w.config.OnQuit != nil {
		w.config.OnQuit()
		w.config.OnQuit = nil
	}
	return tea.Quit
}

func (w *ViewportWrapper) capturing() bool {
	c, ok := w.model.(InputCapturer)
	return ok && c.CapturingInput()
}

func (w *ViewportWrapper) View() string {
	if w.showHelp {
		return w.renderHelpOverlay()
	}

	content := ""
	if w.model != nil {
		content = w.model.View()
	}

	if w.config.UseViewport {
		w.calculateLayout()
		w.viewport.SetContent(content)
		content = w.viewport.View()
	}

	var parts []string
	if w.config.ShowHeader {
		parts = append(parts, w.renderHeader())
	}
	parts = append(parts, content)
	if w.config.ShowFooter {
		parts = append(parts, w.renderFooter())
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (w *ViewportWrapper) calculateLayout() {
	headerH := w.config.HeaderHeight
	if headerH == 0 && w.config.ShowHeader {
		headerH = 2 // Default header height
	}

	footerH := w.config.FooterHeight
	if footerH == 0 && w.config.ShowFooter {
		footerH = 1 // Default footer height
	}

	if w.width <= 0 {
		w.width = 80
	}
	if w.height <= 0 {
		w.height = 24
	}

	contentH := w.height - headerH - footerH
	if contentH < 1 {
		contentH = 1
	}

	if w.config.UseViewport {
		w.viewport.Width = w.width
		w.viewport.Height = contentH
	}
}

func (w *ViewportWrapper) renderHeader() string {
	var b strings.Builder

	if w.config.Title != "" {
		b.WriteString(titleStyle.Render(w.config.Title) + "\n")
	}
	if w.config.EnableHelp {
		b.WriteString(helpStyle.Render("Press '?' for help"))
	}

	return b.String()
}

func (w *ViewportWrapper) renderFooter() string {
	shortcuts := []string{}

	if w.config.EnableHelp {
		shortcuts = append(shortcuts, "? help")
	}
	if w.config.UseViewport {
		shortcuts = append(shortcuts, "pgup/pgdn scroll")
	}
	shortcuts = append(shortcuts, "q quit")

	return helpStyle.Render(strings.Join(shortcuts, " • "))
}

func (w *ViewportWrapper) renderHelpOverlay() string {
	helpText := w.helpContent
	if helpText == "" {
		helpText = "No help available"
	}

	overlayStyle := lipgloss.NewStyle().
		Width(w.width-2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2).
		Foreground(lipgloss.Color("252"))

	title := titleStyle.Render("Keyboard Shortcuts")
	closeHint := helpStyle.Render("Press '?' or Esc to close")

	return overlayStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, title, helpText, closeHint),
	)
}
