package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scrape-dash-go/pkg/cli/tui/dashboard"
	"scrape-dash-go/pkg/orchestrator"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Downloader exposes the backend's file download routes.
// *scraper.Client implements it.
type Downloader interface {
	DownloadURL(filename string) string
	DownloadAllZipURL() string
	MergedCSVURL() string
	DownloadFile(ctx context.Context, filename string, w io.Writer) (int64, error)
	DownloadAllZip(ctx context.Context, w io.Writer) (int64, error)
	DownloadMergedCSV(ctx context.Context, w io.Writer) (int64, error)
}

// DashboardOptions configures the dashboard shell.
type DashboardOptions struct {
	Location     string
	DownloadDir  string        // Where saved files go; "" means the working directory
	RefreshEvery time.Duration // Minimum spacing of manual refreshes
	RefreshBurst int
	Now          func() time.Time
	Logger       *zap.Logger
}

// Saved file names for the bulk downloads
const (
	zipDownloadName    = "all_results.zip"
	mergedDownloadName = "merged_results.csv"
)

// rootModel is the dashboard app shell. It forwards every message to the
// orchestrator and renders the three panes from its snapshot.
type rootModel struct {
	orch    *orchestrator.Orchestrator
	toasts  *dashboard.Toasts
	files   Downloader
	opts    DashboardOptions
	log     *zap.Logger
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc

	config jobConfig
	grid   fileGrid
	prompt confirmPrompt
	focus  dashboard.Focus

	width int
	now   time.Time
}

// NewDashboard builds the dashboard wrapped in the standard viewport shell.
// toasts must be the notifier the orchestrator was created with.
func NewDashboard(orch *orchestrator.Orchestrator, toasts *dashboard.Toasts, files Downloader, opts DashboardOptions) tea.Model {
	m := newRootModel(orch, toasts, files, opts)
	return NewViewportWrapper(m, ViewportConfig{
		Title:       "Scrape Dashboard",
		ShowHeader:  true,
		ShowFooter:  true,
		UseViewport: true,
		MinWidth:    60,
		MinHeight:   20,
		EnableHelp:  true,
		HelpContent: m.helpContent,
		OnQuit:      m.shutdown,
	})
}

func newRootModel(orch *orchestrator.Orchestrator, toasts *dashboard.Toasts, files Downloader, opts DashboardOptions) *rootModel {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RefreshEvery <= 0 {
		opts.RefreshEvery = time.Second
	}
	if opts.RefreshBurst <= 0 {
		opts.RefreshBurst = 2
	}
	if toasts == nil {
		toasts = dashboard.NewToasts(0, opts.Now)
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &rootModel{
		orch:    orch,
		toasts:  toasts,
		files:   files,
		opts:    opts,
		log:     opts.Logger,
		limiter: rate.NewLimiter(rate.Every(opts.RefreshEvery), opts.RefreshBurst),
		ctx:     ctx,
		cancel:  cancel,
		config:  newJobConfig(opts.Location),
		prompt:  newConfirmPrompt(),
		focus:   dashboard.FocusConfig,
		width:   dashboard.DefaultWidth,
		now:     opts.Now(),
	}
}

func (m *rootModel) Init() tea.Cmd {
	return tea.Batch(m.orch.Init(), uiTick())
}

func uiTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return dashboard.UITickMsg{At: t}
	})
}

// CapturingInput implements InputCapturer.
func (m *rootModel) CapturingInput() bool {
	if _, ok := m.toasts.Alert(); ok {
		return true
	}
	return m.config.editing || m.prompt.isOpen()
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.orch.Update(msg)}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case dashboard.UITickMsg:
		m.now = m.opts.Now()
		m.toasts.Expire(m.now)
		cmds = append(cmds, uiTick())

	case dashboard.DownloadDoneMsg:
		if msg.Err != nil {
			m.log.Warn("download failed", zap.String("file", msg.Filename), zap.Error(msg.Err))
			m.toasts.Notify("Download failed: "+userFacingError(msg.Err).Error(), orchestrator.LevelError)
		} else {
			m.log.Info("download saved", zap.String("file", msg.Filename), zap.String("path", msg.Path), zap.Int64("bytes", msg.Bytes))
			m.toasts.Notify(fmt.Sprintf("Saved %s (%d bytes)", msg.Path, msg.Bytes), orchestrator.LevelSuccess)
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	}

	cmds = append(cmds, m.syncPrompt())
	return m, tea.Batch(cmds...)
}

// syncPrompt opens or closes the y/N prompt to follow the orchestrator.
func (m *rootModel) syncPrompt() tea.Cmd {
	snap := m.orch.Snapshot()
	m.grid.sync(len(snap.Files))

	switch {
	case snap.Pending.Active() && m.prompt.kind != snap.Pending.Kind:
		m.config.stopEditing()
		return m.prompt.open(snap.Pending.Kind)
	case !snap.Pending.Active() && m.prompt.isOpen():
		m.prompt.close()
	}
	return nil
}

func (m *rootModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if _, ok := m.toasts.Alert(); ok {
		switch key {
		case "enter", "esc", " ":
			m.toasts.Dismiss()
		}
		return nil
	}

	if m.prompt.isOpen() {
		done, yes, cmd := m.prompt.update(msg)
		if !done {
			return cmd
		}
		m.prompt.close()
		return m.orch.Confirm(yes)
	}

	if m.config.editing {
		return m.handleEditKey(msg)
	}

	switch key {
	case "tab":
		m.focus = m.focus.Next()
	case "shift+tab":
		m.focus = m.focus.Prev()
	case "i":
		m.focus = dashboard.FocusConfig
		return m.config.editSingle()
	case "e":
		m.focus = dashboard.FocusConfig
		return m.config.editMultiple()
	case "s":
		return m.submit()
	case "enter":
		if m.focus == dashboard.FocusConfig {
			return m.submit()
		}
	case "t":
		return m.orch.RequestTerminate()
	case "c":
		return m.orch.RequestClear()
	case "r":
		return m.refresh()
	case "D":
		return m.orch.RequestDeleteAllFiles()
	case "a":
		if m.files != nil {
			return m.save(zipDownloadName, m.files.DownloadAllZip)
		}
	case "m":
		if m.files != nil {
			return m.save(mergedDownloadName, m.files.DownloadMergedCSV)
		}
	}

	if m.focus == dashboard.FocusFiles {
		return m.handleFilesKey(key)
	}
	return nil
}

func (m *rootModel) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.config.stopEditing()
		return nil
	case "enter":
		if m.config.mode == modeSingle {
			return m.submit()
		}
	case "ctrl+s":
		return m.submit()
	}
	return m.config.update(msg)
}

func (m *rootModel) handleFilesKey(key string) tea.Cmd {
	files := m.orch.Snapshot().Files
	if m.grid.navigate(key, len(files)) {
		return nil
	}

	f, ok := m.grid.current(files)
	if !ok || m.files == nil {
		return nil
	}
	switch key {
	case "d", "delete":
		return m.orch.RequestDeleteFile(f.Filename)
	case "w":
		name := f.Filename
		return m.save(name, func(ctx context.Context, w io.Writer) (int64, error) {
			return m.files.DownloadFile(ctx, name, w)
		})
	}
	return nil
}

// submit starts a job from the active query input.
func (m *rootModel) submit() tea.Cmd {
	if reason := m.startBlocked(m.orch.Snapshot()); reason != "" {
		m.toasts.Notify(reason, orchestrator.LevelInfo)
		return nil
	}
	queries := m.config.queries()
	if len(queries) == 0 {
		m.toasts.Notify("Enter at least one query", orchestrator.LevelInfo)
		return nil
	}

	m.config.reset()
	m.config.stopEditing()
	m.focus = dashboard.FocusStatus
	return m.orch.StartScrape(queries)
}

// startBlocked returns why a new job cannot start, or "".
func (m *rootModel) startBlocked(snap orchestrator.Snapshot) string {
	switch {
	case snap.Health == orchestrator.HealthDown:
		return "Backend is offline"
	case snap.Scraping:
		return "A scraping job is already running"
	}
	return ""
}

func (m *rootModel) refresh() tea.Cmd {
	if !m.limiter.Allow() {
		m.toasts.Notify("Refreshing too quickly, try again in a moment", orchestrator.LevelInfo)
		return nil
	}
	return m.orch.RefreshFiles()
}

// save streams a download into DownloadDir off the update loop.
func (m *rootModel) save(name string, fetch func(ctx context.Context, w io.Writer) (int64, error)) tea.Cmd {
	ctx := m.ctx
	path := filepath.Join(m.opts.DownloadDir, filepath.Base(name))
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return dashboard.DownloadDoneMsg{Filename: name, Path: path, Err: err}
		}
		n, err := fetch(ctx, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
		return dashboard.DownloadDoneMsg{Filename: name, Path: path, Bytes: n, Err: err}
	}
}

func (m *rootModel) shutdown() {
	m.cancel()
	m.orch.Shutdown()
}

func (m *rootModel) helpContent() string {
	if m.config.editing {
		return JobConfigHelpContent()
	}
	return DashboardHelpContent()
}

func (m *rootModel) View() string {
	snap := m.orch.Snapshot()
	inner := m.width - 4
	if inner < 40 {
		inner = 40
	}

	var parts []string

	if snap.Health == orchestrator.HealthDown {
		parts = append(parts, bannerStyle.Render(dashboard.OfflineBanner))
	}

	if msg, ok := m.toasts.Alert(); ok {
		parts = append(parts, modalStyle.Render(
			errorStyle.Render("Alert")+"\n\n"+wrapText(msg, inner-6, "")+"\n"+helpStyle.Render("Press Enter to dismiss")))
	}

	if snap.Pending.Active() && m.prompt.isOpen() {
		parts = append(parts, m.prompt.view(snap.Pending, inner-4))
	}

	parts = append(parts,
		m.panel(dashboard.FocusConfig, inner, m.config.view(m.startBlocked(snap))),
		m.panel(dashboard.FocusStatus, inner, m.statusView(snap, inner)),
		m.panel(dashboard.FocusFiles, inner, m.grid.view(snap.Files, m.now, m.focus == dashboard.FocusFiles, inner, m.links())),
	)

	if toasts := m.toasts.Active(); len(toasts) > 0 {
		var b strings.Builder
		for _, t := range toasts {
			b.WriteString(renderNotification(t.Message, t.Level) + "\n")
		}
		parts = append(parts, b.String())
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *rootModel) statusView(snap orchestrator.Snapshot, width int) string {
	var download func(string) string
	if m.files != nil {
		download = m.files.DownloadURL
	}
	out := renderStatusSection(snap.Job, m.now, width, download)
	if snap.Polling {
		out += "\n" + renderLoadingState("● live")
	}
	return out
}

func (m *rootModel) links() downloadLinks {
	if m.files == nil {
		return downloadLinks{}
	}
	return downloadLinks{
		file:   m.files.DownloadURL,
		zip:    m.files.DownloadAllZipURL(),
		merged: m.files.MergedCSVURL(),
	}
}

func (m *rootModel) panel(f dashboard.Focus, width int, content string) string {
	style := panelStyle
	if m.focus == f {
		style = focusedPanelStyle
	}
	return style.Width(width).Render(strings.TrimRight(content, "\n"))
}
