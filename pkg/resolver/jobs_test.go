package resolver

import (
	"testing"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/pkg/normalizer"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobTrackerLifecycle(t *testing.T) {
	tracker := NewJobTracker(10)
	q := normalizer.Normalize("RTX 3080", models.GPU)

	id := tracker.Start(q)
	job, ok := tracker.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.JobRunning, job.Status)
	assert.Equal(t, "rtx 3080", job.Query)
	assert.NotNil(t, job.StartedAt)

	attempt := models.NewLookupAttempt(q)
	require.NoError(t, tracker.Complete(id, 0, 0, attempt))

	job, _ = tracker.Get(id)
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Zero(t, job.ItemsAdded)
	assert.Equal(t, attempt, job.Attempt)
	assert.NotSame(t, attempt, job.Attempt)

	assert.Error(t, tracker.Fail(id, "late", nil))

	_, ok = tracker.Get(uuid.New())
	assert.False(t, ok)
}

func TestJobTrackerListNewestFirst(t *testing.T) {
	tracker := NewJobTracker(10)
	first := tracker.Start(normalizer.Normalize("RTX 3080", models.GPU))
	second := tracker.Start(normalizer.Normalize("i7-9700K", models.CPU))
	require.NoError(t, tracker.Fail(second, "proxy credits exhausted", nil))

	jobs := tracker.List()
	require.Len(t, jobs, 2)
	assert.Equal(t, second, jobs[0].ID)
	assert.Equal(t, models.JobFailed, jobs[0].Status)
	assert.Equal(t, first, jobs[1].ID)
}

func TestJobTrackerKeepsRunningJobsWhenTrimming(t *testing.T) {
	tracker := NewJobTracker(2)
	running := tracker.Start(normalizer.Normalize("RTX 3080", models.GPU))
	for i := 0; i < 3; i++ {
		id := tracker.Start(normalizer.Normalize("RX 6800", models.GPU))
		require.NoError(t, tracker.Complete(id, 0, 0, nil))
	}
	tracker.Start(normalizer.Normalize("RTX 4090", models.GPU))

	_, ok := tracker.Get(running)
	assert.True(t, ok)
	assert.Len(t, tracker.List(), 2)
}

func mustParseJobID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func TestJobTrackerReturnsIndependentCopies(t *testing.T) {
	tracker := NewJobTracker(10)
	q := normalizer.Normalize("RTX 3080", models.GPU)

	id := tracker.Start(q)
	attempt := models.NewLookupAttempt(q)
	attempt.Record(models.AttemptStep{Position: 1, Provider: "aggregator", Outcome: models.OutcomeMatched, Credits: 1})
	require.NoError(t, tracker.Complete(id, 1, 1, attempt))

	// the caller keeps its attempt and may keep using it
	attempt.Steps[0].Provider = "changed by caller"

	job, ok := tracker.Get(id)
	require.True(t, ok)
	require.Len(t, job.Attempt.Steps, 1)
	assert.Equal(t, "aggregator", job.Attempt.Steps[0].Provider)

	job.Attempt.Steps[0].Outcome = models.OutcomeFetchError
	job.Attempt.Steps = append(job.Attempt.Steps, models.AttemptStep{Position: 2})
	job.Attempt.Credits = 99
	*job.CompletedAt = job.CompletedAt.AddDate(1, 0, 0)

	listed := tracker.List()
	require.Len(t, listed, 1)
	listed[0].Attempt.Steps[0].Provider = "changed through list"

	again, _ := tracker.Get(id)
	require.Len(t, again.Attempt.Steps, 1)
	assert.Equal(t, models.OutcomeMatched, again.Attempt.Steps[0].Outcome)
	assert.Equal(t, "aggregator", again.Attempt.Steps[0].Provider)
	assert.Equal(t, 1, again.Attempt.Credits)
	assert.NotEqual(t, *job.CompletedAt, *again.CompletedAt)
}
