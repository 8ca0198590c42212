package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"scrape-dash-go/pkg/cli/logger"
	"scrape-dash-go/pkg/cli/tui"
	"scrape-dash-go/pkg/cli/tui/dashboard"
	"scrape-dash-go/pkg/config"
	"scrape-dash-go/pkg/orchestrator"
	"scrape-dash-go/pkg/scraper"
	"scrape-dash-go/pkg/utils"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type App struct {
	cfg    *config.Config
	client *scraper.Client
	log    *zap.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

func NewApp(cfg *config.Config) *App {
	return &App{
		cfg:    cfg,
		log:    zap.NewNop(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
	}
}

// getClient returns the HTTP client, creating it if necessary
func (a *App) getClient() (*scraper.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	baseURL, err := utils.ValidateURL(a.cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api.base_url: %w", err)
	}

	a.client = scraper.NewClient(baseURL,
		scraper.WithTimeout(a.cfg.API.RequestTimeout.Std()),
		scraper.WithLogger(a.log.Named("backend")),
	)
	return a.client, nil
}

// orchestratorOptions maps the dashboard config section onto the orchestrator.
func (a *App) orchestratorOptions() orchestrator.Options {
	d := a.cfg.Dashboard
	return orchestrator.Options{
		PollInterval:          d.PollInterval.Std(),
		HealthInterval:        d.HealthInterval.Std(),
		FilesInterval:         d.FilesInterval.Std(),
		TerminateConfirmDelay: d.TerminateConfirmDelay.Std(),
		Location:              d.Location,
		Logger:                a.log.Named("orchestrator"),
		Now:                   a.now,
	}
}

// Run starts the interactive dashboard.
func (a *App) Run(ctx context.Context) error {
	client, err := a.getClient()
	if err != nil {
		return err
	}

	toasts := dashboard.NewToasts(a.cfg.Dashboard.ToastDuration.Std(), a.now)
	orch := orchestrator.New(client, orchestrator.TeaScheduler{}, toasts, a.orchestratorOptions())
	defer orch.Shutdown()

	model := tui.NewDashboard(orch, toasts, client, tui.DashboardOptions{
		Location: a.cfg.Dashboard.Location,
		Now:      a.now,
		Logger:   a.log.Named("tui"),
	})

	a.log.Info("dashboard starting", zap.String("base_url", client.BaseURL()), zap.String("log_file", logger.Path()))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return programExit("dashboard exited", err)
}

// programExit treats ctrl+c and context cancellation as a clean exit.
func programExit(what string, err error) error {
	if err == nil || errors.Is(err, tea.ErrInterrupted) || errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}
