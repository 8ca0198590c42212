package orchestrator

import (
	"errors"
	"testing"

	"scrape-dash-go/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartPollCompleteScenario(t *testing.T) {
	h := newHarness(t)
	queries := []string{"coffee shops", "gyms"}

	h.exec(h.o.StartScrape(queries))
	assert.True(t, h.o.Snapshot().Scraping)
	assert.Equal(t, 1, h.pendingCount(filesTickMsg{}), "file refresher runs while scraping")

	// Start response lands: optimistic job, first fetch issued.
	processing := jobWith("job-1", models.JobStatusProcessing, queries, 1)
	current := "gyms"
	processing.CurrentQuery = &current
	h.api.queueStatus(processing, nil)
	require.True(t, h.step())

	snap := h.o.Snapshot()
	require.NotNil(t, snap.Job)
	assert.Equal(t, "job-1", snap.Job.JobID)
	assert.Equal(t, models.JobStatusQueued, snap.Job.Status)
	assert.Equal(t, 2, snap.Job.TotalQueries)
	assert.Equal(t, 0, snap.Job.CompletedQueries)
	assert.Empty(t, snap.Job.Results)
	assert.True(t, snap.Job.StartedAt.Equal(h.now))
	assert.Equal(t, "Austin, TX", snap.Job.Location)

	// First poll.
	h.drain()
	snap = h.o.Snapshot()
	assert.Equal(t, models.JobStatusProcessing, snap.Job.Status)
	assert.Equal(t, 1, snap.Job.CompletedQueries)
	assert.Equal(t, "gyms", snap.Job.CurrentQueryText())
	assert.Equal(t, HealthUp, snap.Health)
	assert.True(t, snap.Polling)

	// Next poll completes the job.
	completed := jobWith("job-1", models.JobStatusCompleted, queries, 2)
	completed.Results = []models.QueryResult{{Query: "coffee shops"}, {Query: "gyms"}}
	h.api.queueStatus(completed, nil)
	h.api.files = []models.GeneratedFile{{Filename: "coffee shops.csv"}}
	filesBefore := h.api.calls["files"]

	assert.Equal(t, 1, h.fire(pollTickMsg{}))

	snap = h.o.Snapshot()
	assert.Equal(t, models.JobStatusCompleted, snap.Job.Status)
	assert.Len(t, snap.Job.Results, 2)
	assert.False(t, snap.Scraping)
	assert.False(t, snap.Polling)
	assert.Equal(t, filesBefore+1, h.api.calls["files"], "terminal status refreshes files")
	require.Len(t, snap.Files, 1)

	// The rescheduled tick is stale and schedules nothing further.
	statusCalls := h.api.calls["status"]
	assert.Equal(t, 1, h.fire(pollTickMsg{}))
	assert.Equal(t, 0, h.pendingCount(pollTickMsg{}))
	assert.Equal(t, statusCalls, h.api.calls["status"])

	// File refresher was stopped with the scraping flag.
	filesCalls := h.api.calls["files"]
	h.fire(filesTickMsg{})
	assert.Equal(t, filesCalls, h.api.calls["files"])
	assert.Equal(t, 0, h.pendingCount(filesTickMsg{}))
}

func TestDuplicateTerminalResponsesAreIdempotent(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a")

	gen := h.o.poller.gen
	done := jobWith("job-1", models.JobStatusCompleted, []string{"a"}, 1)
	h.api.queueStatus(done, nil)
	h.fire(pollTickMsg{})
	require.False(t, h.o.Snapshot().Scraping)
	filesCalls := h.api.calls["files"]

	// A late duplicate from the same poller generation is dropped.
	h.exec(h.o.Update(statusFetchedMsg{gen: gen, jobID: "job-1", job: done}))
	h.drain()
	assert.Equal(t, filesCalls, h.api.calls["files"])
	assert.False(t, h.o.Snapshot().Scraping)
}

func TestStopPollingIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a")
	require.True(t, h.o.poller.active)

	h.o.stopPolling()
	gen := h.o.poller.gen
	assert.NotPanics(t, h.o.stopPolling)
	assert.Equal(t, gen, h.o.poller.gen, "second stop must not bump the generation")
	assert.False(t, h.o.Snapshot().Polling)

	assert.NotPanics(t, New(newFakeAPI(), &fakeScheduler{}, nil, Options{}).stopPolling)
}

func TestStartPollingReplacesExistingPoller(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a")
	first := h.o.poller.gen

	h.exec(h.o.startPolling("job-1"))
	assert.NotEqual(t, first, h.o.poller.gen)

	// Two ticks are pending but only the newest generation survives.
	require.Equal(t, 2, h.pendingCount(pollTickMsg{}))
	h.fire(pollTickMsg{})
	assert.Equal(t, 1, h.pendingCount(pollTickMsg{}))
}

func TestPollNotFoundMarksJobLost(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a", "b")

	h.api.queueStatus(nil, notFound())
	h.fire(pollTickMsg{})

	snap := h.o.Snapshot()
	require.NotNil(t, snap.Job)
	assert.Equal(t, models.JobStatusFailed, snap.Job.Status)
	assert.Equal(t, JobLostMessage, snap.Job.ErrorMessage())
	assert.Equal(t, []string{"a", "b"}, snap.Job.Queries, "other fields are kept")
	assert.False(t, snap.Scraping)
	assert.False(t, snap.Polling)

	statusCalls := h.api.calls["status"]
	h.fire(pollTickMsg{})
	assert.Equal(t, statusCalls, h.api.calls["status"], "no further ticks")
	assert.Equal(t, 0, h.pendingCount(pollTickMsg{}))
}

func TestPollTransientErrorKeepsPolling(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a", "b")
	before := h.o.Snapshot().Job

	h.api.queueStatus(nil, errBackendDown)
	h.fire(pollTickMsg{})

	snap := h.o.Snapshot()
	assert.Equal(t, before, snap.Job, "snapshot untouched")
	assert.Equal(t, HealthDown, snap.Health)
	assert.True(t, snap.Scraping)
	assert.True(t, snap.Polling)
	require.Equal(t, 1, h.pendingCount(pollTickMsg{}), "next tick still scheduled")

	h.api.queueStatus(jobWith("job-1", models.JobStatusProcessing, []string{"a", "b"}, 1), nil)
	h.fire(pollTickMsg{})
	snap = h.o.Snapshot()
	assert.Equal(t, 1, snap.Job.CompletedQueries)
	assert.Equal(t, HealthUp, snap.Health)
}

func TestPollTickUsesConfiguredInterval(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a")

	require.NotEmpty(t, h.sched.pending)
	for _, s := range h.sched.pending {
		switch s.msg.(type) {
		case pollTickMsg:
			assert.Equal(t, DefaultOptions().PollInterval, s.d)
		case filesTickMsg:
			assert.Equal(t, DefaultOptions().FilesInterval, s.d)
		}
	}
}

func TestStartFailureRaisesAlert(t *testing.T) {
	h := newHarness(t)
	h.api.startErr = errBackendDown

	h.do(h.o.StartScrape([]string{"a"}))

	snap := h.o.Snapshot()
	assert.Nil(t, snap.Job)
	assert.False(t, snap.Scraping)
	assert.Equal(t, HealthDown, snap.Health)
	assert.False(t, snap.Polling)
	assert.Equal(t, notification{"Failed to start scraping. Is the backend running?", LevelAlert}, h.notifier.last())
	assert.Equal(t, 0, h.api.calls["status"])
	assert.Equal(t, 1, h.api.calls["start"], "no automatic retry")
}

func TestStartIgnoresEmptyAndConcurrentStarts(t *testing.T) {
	h := newHarness(t)

	assert.Nil(t, h.o.StartScrape(nil))
	assert.False(t, h.o.Snapshot().Scraping)

	h.startProcessing("a")
	assert.Nil(t, h.o.StartScrape([]string{"b"}))
	assert.Equal(t, 1, h.api.calls["start"])
}

func TestTerminateOnFinishedJobIsInfoOnly(t *testing.T) {
	for _, status := range []models.JobStatus{
		models.JobStatusCompleted,
		models.JobStatusFailed,
		models.JobStatusTerminated,
		models.JobStatusTerminating,
	} {
		t.Run(string(status), func(t *testing.T) {
			h := newHarness(t)
			h.o.state.setJob(jobWith("job-1", status, []string{"a"}, 1))

			h.do(h.o.RequestTerminate())

			assert.False(t, h.o.Snapshot().Pending.Active(), "no confirmation offered")
			assert.Equal(t, notification{"Termination already in progress...", LevelInfo}, h.notifier.last())
			assert.Equal(t, 0, h.api.calls["terminate"])
		})
	}
}

func TestTerminateWithoutJobDoesNothing(t *testing.T) {
	h := newHarness(t)
	h.do(h.o.RequestTerminate())
	assert.False(t, h.o.Snapshot().Pending.Active())
	assert.Empty(t, h.notifier.got)
}

func TestTerminateDeclinedHasNoEffect(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a")

	h.do(h.o.RequestTerminate())
	require.Equal(t, ConfirmTerminate, h.o.Snapshot().Pending.Kind)

	h.do(h.o.Confirm(false))
	assert.False(t, h.o.Snapshot().Pending.Active())
	assert.Equal(t, models.JobStatusProcessing, h.o.Snapshot().Job.Status)
	assert.Equal(t, 0, h.api.calls["terminate"])
}

func TestTerminateOptimisticThenRollback(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a", "b")
	h.api.terminateErr = errors.New("connection reset")

	h.do(h.o.RequestTerminate())
	cmd := h.o.Confirm(true)

	// Before the terminate call returns.
	assert.Equal(t, models.JobStatusTerminating, h.o.Snapshot().Job.Status)
	assert.Equal(t, notification{"Termination signal sent. Stopping scraper...", LevelInfo}, h.notifier.last())

	h.do(cmd)

	assert.Equal(t, 1, h.api.calls["terminate"])
	assert.Equal(t, models.JobStatusProcessing, h.o.Snapshot().Job.Status)
	last := h.notifier.last()
	assert.Equal(t, LevelError, last.level)
	assert.Contains(t, last.message, "Failed to stop scraping: ")
	assert.Equal(t, 0, h.pendingCount(confirmTickMsg{}), "no confirmation loop after a failed request")
	assert.True(t, h.o.Snapshot().Scraping)
}

func TestTerminateConfirmationLoop(t *testing.T) {
	h := newHarness(t)
	queries := []string{"a", "b"}
	h.startProcessing(queries...)

	h.do(h.o.RequestTerminate())
	h.do(h.o.Confirm(true))
	require.Equal(t, 1, h.pendingCount(confirmTickMsg{}))
	for _, s := range h.sched.pending {
		if _, ok := s.msg.(confirmTickMsg); ok {
			assert.Equal(t, DefaultOptions().TerminateConfirmDelay, s.d)
		}
	}

	// Still terminating: the loop reschedules itself.
	h.api.queueStatus(jobWith("job-1", models.JobStatusTerminating, queries, 1), nil)
	h.fire(confirmTickMsg{})
	assert.Equal(t, models.JobStatusTerminating, h.o.Snapshot().Job.Status)
	require.Equal(t, 1, h.pendingCount(confirmTickMsg{}))

	h.api.queueStatus(jobWith("job-1", models.JobStatusTerminated, queries, 1), nil)
	filesCalls := h.api.calls["files"]
	h.fire(confirmTickMsg{})

	snap := h.o.Snapshot()
	assert.Equal(t, models.JobStatusTerminated, snap.Job.Status)
	assert.False(t, snap.Scraping)
	assert.False(t, snap.Polling)
	assert.Equal(t, filesCalls+1, h.api.calls["files"])
	assert.Equal(t, notification{"Scraping job terminated successfully", LevelSuccess}, h.notifier.last())
	assert.Equal(t, 0, h.pendingCount(confirmTickMsg{}))
}

func TestTerminateConfirmationErrorIsFatal(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a")

	h.do(h.o.RequestTerminate())
	h.do(h.o.Confirm(true))

	h.api.queueStatus(nil, errBackendDown)
	h.fire(confirmTickMsg{})

	snap := h.o.Snapshot()
	assert.False(t, snap.Scraping)
	assert.False(t, snap.Polling)
	assert.Equal(t, models.JobStatusTerminating, snap.Job.Status)
	assert.Equal(t, notification{"Error checking job status after termination", LevelError}, h.notifier.last())
	assert.Equal(t, 0, h.pendingCount(confirmTickMsg{}), "no silent retry")
}

func TestTerminateRechecksAtConfirmTime(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a")
	h.do(h.o.RequestTerminate())

	// Job finishes while the prompt is open.
	h.api.queueStatus(jobWith("job-1", models.JobStatusCompleted, []string{"a"}, 1), nil)
	h.fire(pollTickMsg{})

	h.do(h.o.Confirm(true))
	assert.Equal(t, 0, h.api.calls["terminate"])
	assert.Equal(t, models.JobStatusCompleted, h.o.Snapshot().Job.Status)
	assert.Equal(t, LevelInfo, h.notifier.last().level)
}

func TestClearWithFailingBackendStillResets(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a")
	h.api.clearErr = errBackendDown

	h.do(h.o.RequestClear())
	require.Equal(t, ConfirmClear, h.o.Snapshot().Pending.Kind)
	assert.Equal(t, "job-1", h.o.Snapshot().Pending.Target)

	h.do(h.o.Confirm(true))

	snap := h.o.Snapshot()
	assert.Nil(t, snap.Job)
	assert.False(t, snap.Scraping)
	assert.False(t, snap.Polling)
	assert.Equal(t, 1, h.api.calls["clear"])
}

func TestClearWithoutJobSkipsBackend(t *testing.T) {
	h := newHarness(t)

	h.do(h.o.RequestClear())
	h.do(h.o.Confirm(true))

	assert.Nil(t, h.o.Snapshot().Job)
	assert.Equal(t, 0, h.api.calls["clear"])
}

func TestClearDropsLateResponses(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a")

	// A poll and a termination check are both in flight when the user clears.
	h.do(h.o.RequestTerminate())
	h.do(h.o.Confirm(true))
	h.api.queueStatus(jobWith("job-1", models.JobStatusProcessing, []string{"a"}, 0), nil)
	h.exec(h.o.Update(pollTickMsg{gen: h.o.poller.gen}))
	h.exec(h.o.Update(confirmTickMsg{gen: h.o.confirm.gen}))
	require.NotEmpty(t, h.inbox)

	h.exec(h.o.RequestClear())
	h.exec(h.o.Confirm(true))
	h.drain()

	snap := h.o.Snapshot()
	assert.Nil(t, snap.Job, "cleared job must not come back")
	assert.False(t, snap.Scraping)

	h.fire(pollTickMsg{})
	h.fire(confirmTickMsg{})
	assert.Nil(t, h.o.Snapshot().Job)
}

func TestClearDropsStartStillInFlight(t *testing.T) {
	h := newHarness(t)

	h.exec(h.o.StartScrape([]string{"a"}))
	require.Len(t, h.inbox, 1, "start result not delivered yet")
	require.True(t, h.o.Snapshot().Scraping)

	h.exec(h.o.RequestClear())
	h.exec(h.o.Confirm(true))
	h.drain()

	snap := h.o.Snapshot()
	assert.Nil(t, snap.Job)
	assert.False(t, snap.Scraping)
	assert.False(t, snap.Polling)
	assert.Equal(t, 0, h.api.calls["status"])
	assert.Equal(t, 0, h.pendingCount(pollTickMsg{}))
	assert.Equal(t, 1, h.api.calls["clear"], "orphaned job is cleared on the backend")

	h.api.startID = "job-2"
	h.api.queueStatus(jobWith("job-2", models.JobStatusProcessing, []string{"b"}, 0), nil)
	h.do(h.o.StartScrape([]string{"b"}))

	snap = h.o.Snapshot()
	require.NotNil(t, snap.Job)
	assert.Equal(t, "job-2", snap.Job.JobID)
	assert.True(t, snap.Scraping)
	assert.True(t, snap.Polling)
}

func TestBootstrapResumesActiveJob(t *testing.T) {
	h := newHarness(t)
	h.api.active = jobWith("job-7", models.JobStatusProcessing, []string{"a", "b"}, 1)
	h.api.files = []models.GeneratedFile{{Filename: "a.csv"}}
	h.api.queueStatus(jobWith("job-7", models.JobStatusProcessing, []string{"a", "b"}, 1), nil)

	h.do(h.o.Init())

	snap := h.o.Snapshot()
	require.NotNil(t, snap.Job)
	assert.Equal(t, "job-7", snap.Job.JobID)
	assert.True(t, snap.Scraping)
	assert.True(t, snap.Polling)
	assert.Equal(t, HealthUp, snap.Health)
	assert.Len(t, snap.Files, 1)
	assert.Equal(t, 1, h.pendingCount(healthTickMsg{}))
	assert.Equal(t, 1, h.api.calls["status"], "immediate fetch on resume")
}

func TestBootstrapShowsFinishedJobWithoutPolling(t *testing.T) {
	for _, status := range []models.JobStatus{models.JobStatusCompleted, models.JobStatusTerminating} {
		t.Run(string(status), func(t *testing.T) {
			h := newHarness(t)
			h.api.active = jobWith("job-7", status, []string{"a"}, 1)

			h.do(h.o.Init())

			snap := h.o.Snapshot()
			require.NotNil(t, snap.Job)
			assert.Equal(t, status, snap.Job.Status)
			assert.False(t, snap.Scraping)
			assert.False(t, snap.Polling)
			assert.Equal(t, 0, h.api.calls["status"])
		})
	}
}

func TestBootstrapIgnoresActiveJobFailure(t *testing.T) {
	h := newHarness(t)
	h.api.activeErr = errBackendDown
	h.api.filesErr = errBackendDown
	h.api.healthErr = errBackendDown

	h.do(h.o.Init())

	snap := h.o.Snapshot()
	assert.Nil(t, snap.Job)
	assert.Equal(t, HealthDown, snap.Health)
	assert.Empty(t, h.notifier.got)
}

func TestHealthMonitor(t *testing.T) {
	h := newHarness(t)
	h.do(h.o.Init())
	require.Equal(t, HealthUp, h.o.Snapshot().Health)

	h.api.healthErr = errBackendDown
	assert.Equal(t, 1, h.fire(healthTickMsg{}))
	assert.Equal(t, HealthDown, h.o.Snapshot().Health)
	assert.Equal(t, 1, h.pendingCount(healthTickMsg{}), "monitor keeps running")

	h.api.healthErr = nil
	h.fire(healthTickMsg{})
	assert.Equal(t, HealthUp, h.o.Snapshot().Health)
}

func TestFileRefresherRunsOnlyWhileScraping(t *testing.T) {
	h := newHarness(t)
	h.do(h.o.Init())
	assert.Equal(t, 0, h.pendingCount(filesTickMsg{}))

	h.startProcessing("a")
	require.Equal(t, 1, h.pendingCount(filesTickMsg{}))

	filesCalls := h.api.calls["files"]
	h.fire(filesTickMsg{})
	assert.Equal(t, filesCalls+1, h.api.calls["files"])
	assert.Equal(t, 1, h.pendingCount(filesTickMsg{}))

	h.do(h.o.RequestClear())
	h.do(h.o.Confirm(true))
	filesCalls = h.api.calls["files"]
	h.fire(filesTickMsg{})
	assert.Equal(t, filesCalls, h.api.calls["files"])
	assert.Equal(t, 0, h.pendingCount(filesTickMsg{}))
}

func TestShutdownCancelsEverything(t *testing.T) {
	h := newHarness(t)
	h.do(h.o.Init())
	h.startProcessing("a")
	h.do(h.o.RequestTerminate())
	h.do(h.o.Confirm(true))

	h.o.Shutdown()
	assert.NotPanics(t, h.o.Shutdown)

	calls := len(h.api.calls)
	total := 0
	for _, n := range h.api.calls {
		total += n
	}
	h.fire(pollTickMsg{})
	h.fire(healthTickMsg{})
	h.fire(filesTickMsg{})
	h.fire(confirmTickMsg{})

	after := 0
	for _, n := range h.api.calls {
		after += n
	}
	assert.Equal(t, calls, len(h.api.calls))
	assert.Equal(t, total, after, "no timer fires after shutdown")
	assert.Empty(t, h.sched.pending)
	assert.Error(t, h.o.ctx.Err())
	assert.Nil(t, h.o.StartScrape([]string{"b"}))
}

func TestDeleteFileFlow(t *testing.T) {
	h := newHarness(t)

	h.do(h.o.RequestDeleteFile("a.csv"))
	pending := h.o.Snapshot().Pending
	require.Equal(t, ConfirmDeleteFile, pending.Kind)
	assert.Equal(t, "a.csv", pending.Target)
	assert.Contains(t, pending.Prompt, "a.csv")

	h.do(h.o.Confirm(true))
	assert.Equal(t, 1, h.api.calls["delete"])
	assert.Equal(t, 1, h.api.calls["files"], "list refreshed after delete")

	h.api.deleteErr = errBackendDown
	h.do(h.o.RequestDeleteFile("b.csv"))
	h.do(h.o.Confirm(true))
	assert.Equal(t, notification{"Failed to delete file", LevelAlert}, h.notifier.last())
	assert.Equal(t, 1, h.api.calls["files"], "no refresh after a failed delete")
}

func TestDeleteAllFilesFlow(t *testing.T) {
	h := newHarness(t)

	h.do(h.o.RequestDeleteAllFiles())
	require.Equal(t, ConfirmDeleteAllFiles, h.o.Snapshot().Pending.Kind)
	h.do(h.o.Confirm(true))
	assert.Equal(t, notification{"Deleted 2 CSV files", LevelSuccess}, h.notifier.last())
	assert.Equal(t, 1, h.api.calls["files"])

	h.api.deleteAllErr = errBackendDown
	h.do(h.o.RequestDeleteAllFiles())
	h.do(h.o.Confirm(true))
	assert.Equal(t, notification{"Failed to delete all CSV files", LevelAlert}, h.notifier.last())
}

func TestSnapshotIsACopy(t *testing.T) {
	h := newHarness(t)
	h.startProcessing("a", "b")

	snap := h.o.Snapshot()
	snap.Job.Status = models.JobStatusFailed
	snap.Job.Queries[0] = "changed"

	again := h.o.Snapshot()
	assert.Equal(t, models.JobStatusProcessing, again.Job.Status)
	assert.Equal(t, "a", again.Job.Queries[0])
}

func TestTrackFollowsExistingJob(t *testing.T) {
	h := newHarness(t)
	h.api.queueStatus(jobWith("job-9", models.JobStatusCompleted, []string{"a"}, 1), nil)

	h.exec(h.o.Track("job-9"))
	snap := h.o.Snapshot()
	assert.Nil(t, snap.Job, "nothing is shown before the first poll")
	assert.True(t, snap.Polling)

	h.drain()

	snap = h.o.Snapshot()
	require.NotNil(t, snap.Job)
	assert.Equal(t, models.JobStatusCompleted, snap.Job.Status)
	assert.False(t, snap.Scraping)
	assert.False(t, snap.Polling)
	assert.Equal(t, 0, h.api.calls["start"])

	assert.Nil(t, h.o.Track(""))
}

func TestTrackUnknownJobIsLost(t *testing.T) {
	h := newHarness(t)
	h.api.queueStatus(nil, notFound())

	h.do(h.o.Track("job-404"))

	snap := h.o.Snapshot()
	require.NotNil(t, snap.Job)
	assert.Equal(t, "job-404", snap.Job.JobID)
	assert.Equal(t, models.JobStatusFailed, snap.Job.Status)
	assert.Equal(t, JobLostMessage, snap.Job.ErrorMessage())
	assert.False(t, snap.Polling)
}
