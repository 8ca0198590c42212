package tui

import (
	"fmt"
	"strings"
	"time"

	"scrape-dash-go/pkg/cli/format"
	"scrape-dash-go/pkg/models"
)

// fileGrid is the selectable list of generated CSV files.
type fileGrid struct {
	selected int
}

// sync clamps the cursor after the file list changed.
func (g *fileGrid) sync(total int) {
	g.selected = clampIndex(g.selected, total)
}

// current returns the selected file, if any.
func (g *fileGrid) current(files []models.GeneratedFile) (models.GeneratedFile, bool) {
	if len(files) == 0 {
		return models.GeneratedFile{}, false
	}
	return files[clampIndex(g.selected, len(files))], true
}

func (g *fileGrid) navigate(key string, total int) bool {
	next, handled := handleListNavigation(key, g.selected, total)
	if handled {
		g.selected = next
	}
	return handled
}

// view renders the files pane. Links point at the backend download routes.
func (g *fileGrid) view(files []models.GeneratedFile, now time.Time, focused bool, width int, links downloadLinks) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Generated Files (%d)", len(files))) + "\n")

	if len(files) == 0 {
		b.WriteString(renderEmptyState("No CSV files yet. Completed queries will appear here."))
		return b.String()
	}

	nameWidth := width - 30
	if nameWidth < 16 {
		nameWidth = 16
	}

	for i, f := range files {
		marker := " "
		nameStyle := fileNameStyle
		if focused && i == g.selected {
			marker = selectedMarkerStyle.Render("→")
			nameStyle = selectedStyle
		}

		meta := fmt.Sprintf("%s • %s", format.FileSize(f.Size), format.RelativeTime(f.Created.Time, now))
		if f.IsProcessing() {
			meta += " • " + warningStyle.Render("writing")
		}
		b.WriteString(fmt.Sprintf("%s %s  %s\n", marker, nameStyle.Render(format.Truncate(f.Filename, nameWidth)), fileMetaStyle.Render(meta)))
	}

	b.WriteString(renderDivider(width-4) + "\n")
	if focused {
		if f, ok := g.current(files); ok && links.file != nil {
			b.WriteString(renderField("Download:", urlStyle.Render(links.file(f.Filename))))
		}
		b.WriteString(helpStyle.Render("w save • d delete • D delete all • a save zip • m save merged CSV") + "\n")
	}
	if links.zip != "" {
		b.WriteString(renderField("All (zip):", urlStyle.Render(links.zip)))
	}
	if links.merged != "" {
		b.WriteString(renderField("Merged CSV:", urlStyle.Render(links.merged)))
	}

	return b.String()
}

// downloadLinks are the backend URLs shown next to the file list.
type downloadLinks struct {
	file   func(string) string
	zip    string
	merged string
}
