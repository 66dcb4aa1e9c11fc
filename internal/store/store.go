// Package store persists jobs and résumé records.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spigell/resume-ranker/internal/ranking"
)

// ErrNotFound is returned when a job or résumé does not exist.
var ErrNotFound = errors.New("not found")

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// Store is the persistence contract used by the pipeline and the CLI.
// Returned records are copies; callers own them.
type Store interface {
	CreateJob(ctx context.Context, job *ranking.Job) error
	GetJob(ctx context.Context, id string) (*ranking.Job, error)
	UpdateJobStatus(ctx context.Context, id string, status ranking.JobStatus) error

	AddResume(ctx context.Context, r *ranking.Resume) error
	// AddResumes stores a batch atomically: either every record is stored or none.
	AddResumes(ctx context.Context, rs []*ranking.Resume) error
	SaveResume(ctx context.Context, r *ranking.Resume) error
	GetResume(ctx context.Context, id string) (*ranking.Resume, error)
	// ListResumes returns the résumés of a job in upload order.
	ListResumes(ctx context.Context, jobID string) ([]*ranking.Resume, error)

	Close() error
}

// Open returns a store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite, DriverPgx:
		return OpenSQL(ctx, driver, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func cloneJob(j *ranking.Job) *ranking.Job {
	c := *j
	return &c
}

func cloneResume(r *ranking.Resume) *ranking.Resume {
	c := *r
	c.Profile.Skills = slices.Clone(r.Profile.Skills)
	c.Profile.Education = slices.Clone(r.Profile.Education)
	c.MatchedSkills = slices.Clone(r.MatchedSkills)
	c.MissingSkills = slices.Clone(r.MissingSkills)
	c.Rationale.Strengths = slices.Clone(r.Rationale.Strengths)
	c.Rationale.Gaps = slices.Clone(r.Rationale.Gaps)
	if r.ProcessedAt != nil {
		t := *r.ProcessedAt
		c.ProcessedAt = &t
	}
	return &c
}
