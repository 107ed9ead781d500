package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"coach-server/internal/domain"
	"coach-server/internal/middleware"
	"coach-server/internal/pipeline"

	"github.com/rs/zerolog"
)

func newTestApp() *App {
	app := NewApp(zerolog.Nop())
	jobs := newFakeJobs()
	app.Jobs = jobs
	app.Profiles = &fakeProfiles{byOwner: map[string]*domain.Profile{}}
	app.Workouts = &fakeWorkouts{}
	app.Submitter = pipeline.NewSubmitter(jobs, noopDispatch{}, zerolog.Nop())
	return app
}

func authedContext(userID string) context.Context {
	return middleware.ContextWithUserID(context.Background(), userID)
}

type noopDispatch struct{}

func (noopDispatch) Publish(context.Context, string) error { return nil }

type fakeJobs struct {
	mu   sync.Mutex
	jobs map[string]*domain.GenerationJob
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: map[string]*domain.GenerationJob{}}
}

func (f *fakeJobs) Create(_ context.Context, job *domain.GenerationJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	stored := *job
	stored.CreatedAt = now
	stored.UpdatedAt = now
	f.jobs[job.ID] = &stored
	return nil
}

func (f *fakeJobs) GetForOwner(_ context.Context, id, ownerID string) (*domain.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok || job.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobs) Claim(_ context.Context, id string) (*domain.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok || job.Status != domain.JobStatusPending {
		return nil, domain.ErrNotClaimable
	}
	job.Status = domain.JobStatusProcessing
	copied := *job
	return &copied, nil
}

func (f *fakeJobs) ClaimNextPending(context.Context) (*domain.GenerationJob, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeJobs) Complete(_ context.Context, id string, result json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok || job.Status != domain.JobStatusProcessing {
		return domain.ErrInvalidTransition
	}
	job.Status = domain.JobStatusCompleted
	job.Result = result
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeJobs) Fail(_ context.Context, id string, jobErr domain.JobError) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok || job.Status != domain.JobStatusProcessing {
		return domain.ErrInvalidTransition
	}
	job.Status = domain.JobStatusFailed
	job.Error = &jobErr
	job.UpdatedAt = time.Now().UTC()
	return nil
}

type fakeProfiles struct {
	mu      sync.Mutex
	byOwner map[string]*domain.Profile
}

func (f *fakeProfiles) Upsert(_ context.Context, profile *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *profile
	f.byOwner[profile.OwnerID] = &copied
	return nil
}

func (f *fakeProfiles) GetByOwner(_ context.Context, ownerID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.byOwner[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

type fakeWorkouts struct {
	mu      sync.Mutex
	entries []domain.WorkoutEntry
}

func (f *fakeWorkouts) Create(_ context.Context, entry *domain.WorkoutEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeWorkouts) ListByOwner(_ context.Context, ownerID string, limit int) ([]domain.WorkoutEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WorkoutEntry
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if f.entries[i].OwnerID == ownerID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}
