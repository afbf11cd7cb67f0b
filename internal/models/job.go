package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending   JobStatus = "Pending"
	JobRunning   JobStatus = "Running"
	JobCompleted JobStatus = "Completed"
	JobFailed    JobStatus = "Failed"
)

// ResolutionJob tracks one chain execution from dispatch to a terminal state.
type ResolutionJob struct {
	ID          uuid.UUID      `json:"id"`
	Query       string         `json:"query"`
	Type        ComponentType  `json:"component_type"`
	Status      JobStatus      `json:"status"`
	ItemsFound  int            `json:"items_found"`
	ItemsAdded  int            `json:"items_added"`
	Error       string         `json:"error,omitempty"`
	Attempt     *LookupAttempt `json:"attempt,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

func NewResolutionJob(q CanonicalQuery, now time.Time) *ResolutionJob {
	return &ResolutionJob{
		ID:        uuid.New(),
		Query:     q.Text,
		Type:      q.Type,
		Status:    JobPending,
		CreatedAt: now,
	}
}

func (j *ResolutionJob) Start(now time.Time) error {
	if j.Status != JobPending {
		return fmt.Errorf("job %s cannot start from %s", j.ID, j.Status)
	}
	j.Status = JobRunning
	j.StartedAt = &now
	return nil
}

// Complete marks a finished chain; zero items added means no match was found.
func (j *ResolutionJob) Complete(found, added int, now time.Time) error {
	if j.Status != JobRunning {
		return fmt.Errorf("job %s cannot complete from %s", j.ID, j.Status)
	}
	j.Status = JobCompleted
	j.ItemsFound = found
	j.ItemsAdded = added
	j.CompletedAt = &now
	return nil
}

func (j *ResolutionJob) Fail(reason string, now time.Time) error {
	if j.Terminal() {
		return fmt.Errorf("job %s already %s", j.ID, j.Status)
	}
	j.Status = JobFailed
	j.Error = reason
	j.CompletedAt = &now
	return nil
}

func (j *ResolutionJob) Terminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// Clone returns a deep copy, so the caller may modify it freely.
func (j *ResolutionJob) Clone() ResolutionJob {
	c := *j
	c.Attempt = j.Attempt.Clone()
	if j.StartedAt != nil {
		started := *j.StartedAt
		c.StartedAt = &started
	}
	if j.CompletedAt != nil {
		completed := *j.CompletedAt
		c.CompletedAt = &completed
	}
	return c
}
