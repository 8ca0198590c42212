package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"scrape-dash-go/pkg/cli/format"
	"scrape-dash-go/pkg/models"
	"scrape-dash-go/pkg/orchestrator"
	"scrape-dash-go/pkg/utils"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrNoActiveJob is returned when a command needs a job and none is running.
var ErrNoActiveJob = errors.New("no active job")

func newStartCmd(a *App) *cobra.Command {
	var (
		file  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "start [query...]",
		Short: "Start a scraping job",
		Long: `Start a scraping job for one or more search queries.

Queries come from the arguments and, with --file, from a file holding one
query per line. Blank lines are ignored.`,
		Example: `  scrape-dash start "coffee shops"
  scrape-dash start --file queries.txt --location "Austin, TX" --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := collectQueries(args, file)
			if err != nil {
				return err
			}
			return a.StartJob(cmd.Context(), queries, watch)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read queries from a file, one per line")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow the job until it finishes")
	return cmd
}

func collectQueries(args []string, file string) ([]string, error) {
	queries := utils.CleanQueries(args)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read queries file: %w", err)
		}
		queries = append(queries, utils.ParseQueries(string(data))...)
	}
	if len(queries) == 0 {
		return nil, errors.New("no queries provided")
	}
	return queries, nil
}

// StartJob submits queries and optionally follows the new job.
func (a *App) StartJob(ctx context.Context, queries []string, watch bool) error {
	client, err := a.getClient()
	if err != nil {
		return err
	}

	started, err := client.StartScrape(ctx, queries, a.cfg.Dashboard.Location)
	if err != nil {
		return fmt.Errorf("failed to start scraping: %w", err)
	}
	a.log.Info("job started", zap.String("job_id", started.JobID), zap.Int("queries", started.TotalQueries))
	fmt.Fprintf(a.out, "Started job %s with %d queries\n", started.JobID, started.TotalQueries)

	if !watch {
		return nil
	}
	return a.WatchJob(ctx, started.JobID)
}

func newStatusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status [job_id]",
		Short: "Show a job's status (default: the active job)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ShowStatus(cmd.Context(), firstArg(args))
		},
	}
}

// ShowStatus prints a job summary. An empty id shows the active job.
func (a *App) ShowStatus(ctx context.Context, jobID string) error {
	client, err := a.getClient()
	if err != nil {
		return err
	}

	var job *models.Job
	if jobID == "" {
		job, err = client.GetActiveJob(ctx)
	} else {
		job, err = client.GetJobStatus(ctx, jobID)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch job status: %w", err)
	}

	format.WriteTo(a.out, format.JobSummary(job, a.now()))
	return nil
}

func newWatchCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [job_id]",
		Short: "Follow a job until it finishes (default: the active job)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := a.resolveJobID(cmd.Context(), firstArg(args))
			if err != nil {
				return err
			}
			return a.WatchJob(cmd.Context(), jobID)
		},
	}
}

// WatchJob runs the orchestrator headless and prints a line per change.
func (a *App) WatchJob(ctx context.Context, jobID string) error {
	client, err := a.getClient()
	if err != nil {
		return err
	}

	notifier := orchestrator.LogNotifier{Log: a.log, Out: a.errOut}
	orch := orchestrator.New(client, orchestrator.TeaScheduler{}, notifier, a.orchestratorOptions())
	defer orch.Shutdown()

	m := &watchModel{orch: orch, jobID: jobID, out: a.out, now: a.now}
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
	)
	if _, err := p.Run(); err != nil {
		return programExit("watch stopped", err)
	}

	if m.final != nil {
		fmt.Fprintln(a.out)
		format.WriteTo(a.out, format.JobSummary(m.final, a.now()))
	}
	return nil
}

// watchModel drives the orchestrator without a UI until the job is done.
type watchModel struct {
	orch  *orchestrator.Orchestrator
	jobID string
	out   io.Writer
	now   func() time.Time

	last  string
	final *models.Job
}

func (m *watchModel) Init() tea.Cmd {
	return m.orch.Track(m.jobID)
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.orch.Update(msg)

	snap := m.orch.Snapshot()
	if snap.Job == nil {
		if !snap.Polling {
			return m, tea.Quit
		}
		return m, cmd
	}

	if line := format.ProgressLine(snap.Job, m.now()); line != m.last {
		fmt.Fprintln(m.out, line)
		m.last = line
	}

	if snap.Job.Status.IsTerminal() && !snap.Polling {
		m.final = snap.Job
		return m, tea.Quit
	}
	return m, cmd
}

func (m *watchModel) View() string { return "" }

func newTerminateCmd(a *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "terminate [job_id]",
		Short: "Stop a running job (default: the active job)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.TerminateJob(cmd.Context(), firstArg(args), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// TerminateJob stops a job after confirmation. Completed queries are kept.
func (a *App) TerminateJob(ctx context.Context, jobID string, yes bool) error {
	jobID, err := a.resolveJobID(ctx, jobID)
	if err != nil {
		return err
	}

	ok, err := a.confirm("This will terminate the job and cancel all remaining pending queries. Completed queries will be preserved. Continue?", yes)
	if err != nil || !ok {
		fmt.Fprintln(a.out, "Aborted")
		return err
	}

	client, err := a.getClient()
	if err != nil {
		return err
	}
	ack, err := client.TerminateJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to stop scraping: %w", err)
	}
	a.log.Info("termination requested", zap.String("job_id", jobID))
	fmt.Fprintln(a.out, ack.Message)
	return nil
}

func newClearCmd(a *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear [job_id]",
		Short: "Delete a job's status from the backend (default: the active job)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ClearJob(cmd.Context(), firstArg(args), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// ClearJob forgets a job on the backend after confirmation.
func (a *App) ClearJob(ctx context.Context, jobID string, yes bool) error {
	jobID, err := a.resolveJobID(ctx, jobID)
	if err != nil {
		return err
	}

	ok, err := a.confirm("This will clear the job status, remove all pending queries, and permanently delete this job. Continue?", yes)
	if err != nil || !ok {
		fmt.Fprintln(a.out, "Aborted")
		return err
	}

	client, err := a.getClient()
	if err != nil {
		return err
	}
	if err := client.ClearJobStatus(ctx, jobID); err != nil {
		return fmt.Errorf("failed to clear job status: %w", err)
	}
	a.log.Info("job cleared", zap.String("job_id", jobID))
	fmt.Fprintln(a.out, "Job status cleared")
	return nil
}

// resolveJobID returns jobID, or the active job's id when empty.
func (a *App) resolveJobID(ctx context.Context, jobID string) (string, error) {
	if jobID != "" {
		return jobID, nil
	}
	client, err := a.getClient()
	if err != nil {
		return "", err
	}
	job, err := client.GetActiveJob(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to look up active job: %w", err)
	}
	if job == nil {
		return "", ErrNoActiveJob
	}
	return job.JobID, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
