package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/spigell/resume-ranker/internal/ranking"
)

// Memory keeps records in process memory.
type Memory struct {
	mu      sync.RWMutex
	jobs    map[string]*ranking.Job
	resumes map[string]*ranking.Resume
}

func NewMemory() *Memory {
	return &Memory{
		jobs:    make(map[string]*ranking.Job),
		resumes: make(map[string]*ranking.Resume),
	}
}

func (m *Memory) CreateJob(_ context.Context, job *ranking.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[job.ID]; ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	m.jobs[job.ID] = cloneJob(job)
	return nil
}

func (m *Memory) GetJob(_ context.Context, id string) (*ranking.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return cloneJob(job), nil
}

func (m *Memory) UpdateJobStatus(_ context.Context, id string, status ranking.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	job.Status = status
	return nil
}

func (m *Memory) AddResume(ctx context.Context, r *ranking.Resume) error {
	return m.AddResumes(ctx, []*ranking.Resume{r})
}

func (m *Memory) AddResumes(_ context.Context, rs []*ranking.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	batch := make(map[string]struct{}, len(rs))
	for _, r := range rs {
		if _, ok := m.jobs[r.JobID]; !ok {
			return fmt.Errorf("job %s: %w", r.JobID, ErrNotFound)
		}
		if _, ok := m.resumes[r.ID]; ok {
			return fmt.Errorf("resume %s already exists", r.ID)
		}
		if _, ok := batch[r.ID]; ok {
			return fmt.Errorf("resume %s already exists", r.ID)
		}
		batch[r.ID] = struct{}{}
	}

	for _, r := range rs {
		m.resumes[r.ID] = cloneResume(r)
	}
	return nil
}

func (m *Memory) SaveResume(_ context.Context, r *ranking.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.resumes[r.ID]; !ok {
		return fmt.Errorf("resume %s: %w", r.ID, ErrNotFound)
	}
	m.resumes[r.ID] = cloneResume(r)
	return nil
}

func (m *Memory) GetResume(_ context.Context, id string) (*ranking.Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.resumes[id]
	if !ok {
		return nil, fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}
	return cloneResume(r), nil
}

func (m *Memory) ListResumes(_ context.Context, jobID string) ([]*ranking.Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.jobs[jobID]; !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}

	out := make([]*ranking.Resume, 0)
	for _, r := range m.resumes {
		if r.JobID == jobID {
			out = append(out, cloneResume(r))
		}
	}
	slices.SortFunc(out, func(a, b *ranking.Resume) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	return out, nil
}

func (m *Memory) Close() error { return nil }
