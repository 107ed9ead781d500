package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"coach-server/internal/domain"
)

// memJobRepo is an in-memory domain.JobRepository with the same transition
// guarantees as the PostgreSQL implementation.
type memJobRepo struct {
	mu    sync.Mutex
	jobs  map[string]*domain.GenerationJob
	order []string
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]*domain.GenerationJob)}
}

func copyJob(j *domain.GenerationJob) *domain.GenerationJob {
	out := *j
	out.InputSnapshot = append(json.RawMessage(nil), j.InputSnapshot...)
	out.Result = append(json.RawMessage(nil), j.Result...)
	if j.Error != nil {
		e := *j.Error
		out.Error = &e
	}
	return &out
}

func (m *memJobRepo) Create(_ context.Context, job *domain.GenerationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	stored := copyJob(job)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.jobs[job.ID] = stored
	m.order = append(m.order, job.ID)
	return nil
}

func (m *memJobRepo) GetForOwner(_ context.Context, id, ownerID string) (*domain.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return copyJob(job), nil
}

func (m *memJobRepo) Claim(_ context.Context, id string) (*domain.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.Status != domain.JobStatusPending {
		return nil, domain.ErrNotClaimable
	}
	job.Status = domain.JobStatusProcessing
	job.UpdatedAt = time.Now()
	return copyJob(job), nil
}

func (m *memJobRepo) ClaimNextPending(_ context.Context) (*domain.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		job := m.jobs[id]
		if job.Status == domain.JobStatusPending {
			job.Status = domain.JobStatusProcessing
			job.UpdatedAt = time.Now()
			return copyJob(job), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memJobRepo) Complete(_ context.Context, id string, result json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.Status != domain.JobStatusProcessing {
		return domain.ErrInvalidTransition
	}
	job.Status = domain.JobStatusCompleted
	job.Result = append(json.RawMessage(nil), result...)
	job.UpdatedAt = time.Now()
	return nil
}

func (m *memJobRepo) Fail(_ context.Context, id string, jobErr domain.JobError) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.Status != domain.JobStatusProcessing {
		return domain.ErrInvalidTransition
	}
	job.Status = domain.JobStatusFailed
	job.Error = &jobErr
	job.UpdatedAt = time.Now()
	return nil
}

func (m *memJobRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// chanSource is a JobSource fed by an in-process channel, standing in for the
// Redis dispatch queue.
type chanSource struct {
	ch chan string
}

func newChanSource(buffer int) *chanSource {
	return &chanSource{ch: make(chan string, buffer)}
}

func (s *chanSource) Publish(_ context.Context, jobID string) error {
	s.ch <- jobID
	return nil
}

func (s *chanSource) Next(ctx context.Context, timeout time.Duration) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case id := <-s.ch:
		return id, nil
	case <-time.After(timeout):
		return "", nil
	}
}

func validRequest() domain.ProgramRequest {
	return domain.ProgramRequest{
		Goal:        "strength",
		DaysPerWeek: 4,
		Experience:  "beginner",
	}
}
