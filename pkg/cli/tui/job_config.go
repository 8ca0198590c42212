package tui

import (
	"strconv"
	"strings"

	"scrape-dash-go/pkg/utils"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// queryMode selects which input supplies the next job's queries.
type queryMode int

const (
	modeSingle queryMode = iota
	modeMultiple
)

// jobConfig holds the query inputs: one line for a single query, a textarea
// for a batch with one query per line.
type jobConfig struct {
	single   textinput.Model
	multiple textarea.Model
	mode     queryMode
	editing  bool
	location string
}

func newJobConfig(location string) jobConfig {
	single := textinput.New()
	single.Placeholder = "e.g. coffee shops in Austin"
	single.CharLimit = 256
	single.Width = 60
	single.Prompt = "› "
	single.Cursor.SetMode(cursor.CursorStatic)

	multiple := textarea.New()
	multiple.Placeholder = "One query per line"
	multiple.SetWidth(60)
	multiple.SetHeight(5)
	multiple.CharLimit = 10000
	multiple.ShowLineNumbers = false
	multiple.Cursor.SetMode(cursor.CursorStatic)

	return jobConfig{
		single:   single,
		multiple: multiple,
		location: location,
	}
}

// editSingle focuses the single-query input.
func (c *jobConfig) editSingle() tea.Cmd {
	c.mode = modeSingle
	c.editing = true
	c.multiple.Blur()
	return c.single.Focus()
}

// editMultiple focuses the batch textarea.
func (c *jobConfig) editMultiple() tea.Cmd {
	c.mode = modeMultiple
	c.editing = true
	c.single.Blur()
	return c.multiple.Focus()
}

func (c *jobConfig) stopEditing() {
	c.editing = false
	c.single.Blur()
	c.multiple.Blur()
}

// queries returns the trimmed, non-empty queries of the active mode.
func (c *jobConfig) queries() []string {
	if c.mode == modeMultiple {
		return utils.ParseQueries(c.multiple.Value())
	}
	return utils.CleanQueries([]string{c.single.Value()})
}

func (c *jobConfig) reset() {
	c.single.Reset()
	c.multiple.Reset()
}

func (c *jobConfig) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if c.mode == modeMultiple {
		c.multiple, cmd = c.multiple.Update(msg)
	} else {
		c.single, cmd = c.single.Update(msg)
	}
	return cmd
}

// view renders the config pane. disabled carries the reason starting is
// blocked, or "" when a job can be started.
func (c *jobConfig) view(disabled string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("New Scraping Job") + "\n")

	single := "Single query"
	multiple := "Multiple queries"
	if c.mode == modeSingle {
		single = selectedStyle.Render("● " + single)
		multiple = mutedStyle.Render("○ " + multiple)
	} else {
		single = mutedStyle.Render("○ " + single)
		multiple = selectedStyle.Render("● " + multiple)
	}
	b.WriteString(single + "   " + multiple + "\n\n")

	if c.mode == modeMultiple {
		b.WriteString(c.multiple.View() + "\n")
		n := len(utils.ParseQueries(c.multiple.Value()))
		b.WriteString(mutedStyle.Render(pluralize(n, "query", "queries")+" entered") + "\n")
	} else {
		b.WriteString(c.single.View() + "\n")
	}

	if c.location != "" {
		b.WriteString(renderField("Location:", c.location))
	}

	switch {
	case disabled != "":
		b.WriteString(renderWarning(disabled) + "\n")
	case c.editing && c.mode == modeMultiple:
		b.WriteString(helpStyle.Render("Ctrl+S start • Esc stop editing") + "\n")
	case c.editing:
		b.WriteString(helpStyle.Render("Enter start • Esc stop editing") + "\n")
	default:
		b.WriteString(helpStyle.Render("i single • e multiple • s start") + "\n")
	}

	return b.String()
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
