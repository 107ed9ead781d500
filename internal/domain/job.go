package domain

import (
	"encoding/json"
	"time"
)

// JobStatus enumerates generation job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions may occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Rank orders statuses along the lifecycle. Terminal states share the highest
// rank; the poller uses this to assert it never observes a regression.
func (s JobStatus) Rank() int {
	switch s {
	case JobStatusPending:
		return 0
	case JobStatusProcessing:
		return 1
	case JobStatusCompleted, JobStatusFailed:
		return 2
	default:
		return -1
	}
}

// CanTransition reports whether the status edge from -> to is legal.
// The lifecycle is strictly forward: pending -> processing -> completed|failed.
// A retry is a new job, never a backward transition.
func CanTransition(from, to JobStatus) bool {
	switch from {
	case JobStatusPending:
		return to == JobStatusProcessing
	case JobStatusProcessing:
		return to == JobStatusCompleted || to == JobStatusFailed
	default:
		return false
	}
}

// JobError carries the terminal failure detail of a generation job. Code is a
// stable machine-readable identifier; Message is safe to surface to the
// caller without leaking generator internals.
type JobError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *JobError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Message
}

// GenerationJob tracks one long-running program generation request.
//
// InputSnapshot is captured once at submission and never rewritten, so a
// finished job can always be audited against the exact input it was generated
// from. Exactly one of Result/Error is populated, and only once the status is
// terminal. UpdatedAt changes only on status transitions.
type GenerationJob struct {
	ID            string
	OwnerID       string
	Status        JobStatus
	InputSnapshot json.RawMessage
	Result        json.RawMessage
	Error         *JobError
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
