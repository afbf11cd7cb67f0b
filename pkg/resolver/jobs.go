package resolver

import (
	"slices"
	"sync"
	"time"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/pkg/metrics"
	"github.com/google/uuid"
)

// DefaultJobHistory is how many finished jobs are kept for listing.
const DefaultJobHistory = 500

// JobTracker records chain executions. Callers only ever see copies.
type JobTracker struct {
	mu      sync.RWMutex
	jobs    map[uuid.UUID]*models.ResolutionJob
	order   []uuid.UUID
	history int
	now     func() time.Time
}

func NewJobTracker(history int) *JobTracker {
	if history <= 0 {
		history = DefaultJobHistory
	}
	return &JobTracker{
		jobs:    make(map[uuid.UUID]*models.ResolutionJob),
		history: history,
		now:     time.Now,
	}
}

// Start creates a running job for q.
func (t *JobTracker) Start(q models.CanonicalQuery) uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	job := models.NewResolutionJob(q, now)
	_ = job.Start(now)
	t.jobs[job.ID] = job
	t.order = append(t.order, job.ID)
	metrics.JobsInFlight.Inc()
	t.trim()
	return job.ID
}

// Complete finishes a job; zero items added means the chain found nothing.
func (t *JobTracker) Complete(id uuid.UUID, found, added int, attempt *models.LookupAttempt) error {
	return t.finish(id, attempt, func(job *models.ResolutionJob, now time.Time) error {
		return job.Complete(found, added, now)
	})
}

func (t *JobTracker) Fail(id uuid.UUID, reason string, attempt *models.LookupAttempt) error {
	return t.finish(id, attempt, func(job *models.ResolutionJob, now time.Time) error {
		return job.Fail(reason, now)
	})
}

func (t *JobTracker) finish(id uuid.UUID, attempt *models.LookupAttempt, transition func(*models.ResolutionJob, time.Time) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return nil
	}
	if err := transition(job, t.now()); err != nil {
		return err
	}
	job.Attempt = attempt.Clone()
	metrics.JobsInFlight.Dec()
	return nil
}

func (t *JobTracker) Get(id uuid.UUID) (models.ResolutionJob, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[id]
	if !ok {
		return models.ResolutionJob{}, false
	}
	return job.Clone(), true
}

// List returns jobs newest first.
func (t *JobTracker) List() []models.ResolutionJob {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.ResolutionJob, 0, len(t.order))
	for _, id := range slices.Backward(t.order) {
		out = append(out, t.jobs[id].Clone())
	}
	return out
}

// trim drops the oldest finished jobs beyond the history size. Running jobs are always kept.
func (t *JobTracker) trim() {
	excess := len(t.order) - t.history
	if excess <= 0 {
		return
	}
	kept := t.order[:0]
	for _, id := range t.order {
		if excess > 0 && t.jobs[id].Terminal() {
			delete(t.jobs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
}
