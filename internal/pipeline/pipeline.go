// Package pipeline runs uploaded résumés through parsing, scoring and
// reasoning in the background and keeps résumé and job status up to date.
//
// Each job has its own queue consumed by one worker goroutine, so résumés of a
// job are processed one at a time in upload order while different jobs
// proceed independently. A failing résumé is marked failed and the worker
// moves on to the next one.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/extraction"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/ranking"
	"github.com/spigell/resume-ranker/internal/store"
	"github.com/spigell/resume-ranker/internal/utils"
)

// MaxFilesPerUpload limits a single Upload call.
const MaxFilesPerUpload = 50

const defaultPollInterval = 200 * time.Millisecond

var (
	// ErrNoFiles is returned by Upload when no files are given.
	ErrNoFiles = errors.New("no files uploaded")
	// ErrTooManyFiles is returned by Upload above MaxFilesPerUpload.
	ErrTooManyFiles = errors.New("too many files in one upload")
	// ErrClosed is returned by Upload after Close.
	ErrClosed = errors.New("pipeline is closed")
)

// File is one uploaded document.
type File struct {
	Name string
	Data []byte
}

// Config tunes the orchestrator.
type Config struct {
	PollInterval time.Duration
	Stages       []Stage
}

type task struct {
	resumeID string
	fileName string
	data     []byte
}

type jobQueue struct {
	pending []task
	running bool
}

// Orchestrator accepts uploads and processes them in the background.
type Orchestrator struct {
	store  store.Store
	deps   Deps
	stages []Stage
	logger *zap.Logger
	poll   time.Duration

	// uploadMu serializes uploads with job completion checks.
	uploadMu sync.Mutex

	mu     sync.Mutex
	queues map[string]*jobQueue
	closed bool
	wg     sync.WaitGroup
}

// New creates an orchestrator. Zero config values select the defaults.
func New(st store.Store, deps Deps, cfg Config) *Orchestrator {
	deps.Logger = logger.WithFields(deps.Logger)

	stages := cfg.Stages
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	return &Orchestrator{
		store:  st,
		deps:   deps,
		stages: stages,
		logger: deps.Logger,
		poll:   poll,
		queues: make(map[string]*jobQueue),
	}
}

// CreateJob validates the description and stores a new job.
func (o *Orchestrator) CreateJob(ctx context.Context, description string) (*ranking.Job, error) {
	job, err := ranking.NewJob(description)
	if err != nil {
		return nil, err
	}
	if err := o.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	o.logger.Info("job created", zap.String(logger.FieldJobID, job.ID))
	return job, nil
}

// Upload validates files, stores pending records and queues them for processing.
// It returns as soon as the records are stored. Either every file is accepted or none.
func (o *Orchestrator) Upload(ctx context.Context, jobID string, files []File) ([]*ranking.Resume, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > MaxFilesPerUpload {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyFiles, len(files), MaxFilesPerUpload)
	}
	for _, f := range files {
		if err := extraction.CheckUpload(f.Data); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}

	o.uploadMu.Lock()
	defer o.uploadMu.Unlock()

	o.mu.Lock()
	closed := o.closed
	o.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	if _, err := o.store.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	existing, err := o.store.ListResumes(ctx, jobID)
	if err != nil {
		return nil, err
	}

	records := make([]*ranking.Resume, 0, len(files))
	tasks := make([]task, 0, len(files))
	for i, f := range files {
		r := ranking.NewResume(jobID, f.Name, len(existing)+i)
		records = append(records, r)
		tasks = append(tasks, task{resumeID: r.ID, fileName: f.Name, data: f.Data})
	}

	if err := o.store.AddResumes(ctx, records); err != nil {
		return nil, fmt.Errorf("store resumes: %w", err)
	}

	if err := o.store.UpdateJobStatus(ctx, jobID, ranking.JobProcessing); err != nil {
		o.abandon(ctx, records, err)
		return nil, err
	}

	o.logger.Info("resumes uploaded",
		zap.String(logger.FieldJobID, jobID),
		zap.Int("files", len(files)),
	)

	o.enqueue(context.WithoutCancel(ctx), jobID, tasks)
	return records, nil
}

// abandon marks stored but never queued records failed so the job can still complete.
func (o *Orchestrator) abandon(ctx context.Context, records []*ranking.Resume, cause error) {
	for _, r := range records {
		if err := r.Fail("upload aborted: " + cause.Error()); err != nil {
			continue
		}
		if err := o.store.SaveResume(ctx, r); err != nil {
			o.logger.Error("marking abandoned resume failed",
				append(logger.ResumeFields(r.JobID, r.ID, r.FileName), zap.Error(err))...,
			)
		}
	}
}

func (o *Orchestrator) enqueue(ctx context.Context, jobID string, tasks []task) {
	o.mu.Lock()
	defer o.mu.Unlock()

	q, ok := o.queues[jobID]
	if !ok {
		q = &jobQueue{}
		o.queues[jobID] = q
	}
	q.pending = append(q.pending, tasks...)

	if !q.running {
		q.running = true
		o.wg.Add(1)
		go o.worker(ctx, jobID, q)
	}
}

// worker drains one job queue and exits when it is empty.
func (o *Orchestrator) worker(ctx context.Context, jobID string, q *jobQueue) {
	defer o.wg.Done()

	for {
		o.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			delete(o.queues, jobID)
			o.mu.Unlock()
			return
		}
		t := q.pending[0]
		q.pending = q.pending[1:]
		o.mu.Unlock()

		o.process(ctx, jobID, t)
	}
}

func (o *Orchestrator) process(ctx context.Context, jobID string, t task) {
	log := logger.WithFields(o.logger, logger.ResumeFields(jobID, t.resumeID, t.fileName)...)

	r, err := o.run(ctx, log, jobID, t)
	if err != nil {
		o.fail(ctx, log, r, t.resumeID, err)
	}

	o.checkJobCompletion(ctx, jobID)
}

// run executes every stage. The returned record is the last in-memory state and
// may be nil when loading failed.
func (o *Orchestrator) run(ctx context.Context, log *zap.Logger, jobID string, t task) (r *ranking.Resume, err error) {
	defer func() {
		if p := recover(); p != nil {
			log.Debug("stage panic", zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("internal error: %v", p)
		}
	}()

	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	r, err = o.store.GetResume(ctx, t.resumeID)
	if err != nil {
		return nil, err
	}

	deps := o.deps
	deps.Logger = log
	w := &Work{Job: job, Resume: r, Data: t.data}

	for _, stage := range o.stages {
		if err := o.advance(ctx, r, stage.Status()); err != nil {
			return r, err
		}
		log.Debug("pipeline stage",
			zap.String(logger.FieldStage, stage.Name()),
			zap.String(logger.FieldStatus, string(r.Status)),
		)

		if err := stage.Apply(ctx, deps, w); err != nil {
			return r, fmt.Errorf("%s: %w", stage.Name(), err)
		}
	}

	now := time.Now().UTC()
	r.ProcessedAt = &now
	if err := o.advance(ctx, r, ranking.StatusCompleted); err != nil {
		return r, err
	}

	log.Info("resume processed",
		zap.Int("score", r.FinalScore),
		zap.String("candidate", r.DisplayName()),
	)
	return r, nil
}

func (o *Orchestrator) advance(ctx context.Context, r *ranking.Resume, next ranking.ResumeStatus) error {
	if err := r.Transition(next); err != nil {
		return err
	}
	return o.store.SaveResume(ctx, r)
}

func (o *Orchestrator) fail(ctx context.Context, log *zap.Logger, r *ranking.Resume, resumeID string, cause error) {
	if r == nil {
		var err error
		if r, err = o.store.GetResume(ctx, resumeID); err != nil {
			log.Error("cannot load resume to mark it failed", zap.Error(err), zap.NamedError("cause", cause))
			return
		}
	}

	// The in-memory record may be ahead of the stored one when a save failed.
	if r.Status.IsTerminal() {
		if stored, err := o.store.GetResume(ctx, resumeID); err == nil {
			r = stored
		}
	}

	if err := r.Fail(cause.Error()); err != nil {
		log.Error("cannot mark resume failed", zap.Error(err), zap.NamedError("cause", cause))
		return
	}
	if err := o.store.SaveResume(ctx, r); err != nil {
		log.Error("cannot save failed resume", zap.Error(err), zap.NamedError("cause", cause))
		return
	}

	log.Warn("resume failed", zap.Error(cause))
}

// checkJobCompletion marks the job completed once every résumé is terminal.
func (o *Orchestrator) checkJobCompletion(ctx context.Context, jobID string) {
	o.uploadMu.Lock()
	defer o.uploadMu.Unlock()

	resumes, err := o.store.ListResumes(ctx, jobID)
	if err != nil {
		o.logger.Error("cannot list resumes", zap.String(logger.FieldJobID, jobID), zap.Error(err))
		return
	}

	summary := ranking.Summarize(resumes)
	if summary.Total == 0 || !summary.Done() {
		return
	}

	if err := o.store.UpdateJobStatus(ctx, jobID, ranking.JobCompleted); err != nil {
		o.logger.Error("cannot complete job", zap.String(logger.FieldJobID, jobID), zap.Error(err))
		return
	}

	o.logger.Info("job completed",
		zap.String(logger.FieldJobID, jobID),
		zap.Int("total", summary.Total),
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
	)
}

// Status returns the job status and résumé counts.
func (o *Orchestrator) Status(ctx context.Context, jobID string) (ranking.JobStatus, ranking.Summary, error) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return "", ranking.Summary{}, err
	}
	resumes, err := o.store.ListResumes(ctx, jobID)
	if err != nil {
		return "", ranking.Summary{}, err
	}
	return job.Status, ranking.Summarize(resumes), nil
}

// Results returns completed résumés ranked by score.
func (o *Orchestrator) Results(ctx context.Context, jobID string) ([]*ranking.Resume, error) {
	resumes, err := o.store.ListResumes(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return ranking.Rank(resumes), nil
}

// Resumes returns every résumé of the job in upload order.
func (o *Orchestrator) Resumes(ctx context.Context, jobID string) ([]*ranking.Resume, error) {
	return o.store.ListResumes(ctx, jobID)
}

// Wait polls until the job is completed or ctx is done. progress, when set,
// receives the counts after every poll.
func (o *Orchestrator) Wait(ctx context.Context, jobID string, progress func(ranking.Summary)) (ranking.Summary, error) {
	for {
		status, summary, err := o.Status(ctx, jobID)
		if err != nil {
			return summary, err
		}
		if progress != nil {
			progress(summary)
		}
		if status == ranking.JobCompleted && summary.Done() {
			return summary, nil
		}

		if err := utils.WaitFor(ctx, o.poll); err != nil {
			return summary, err
		}
	}
}

// Close stops accepting uploads and waits for queued résumés to finish.
func (o *Orchestrator) Close() {
	o.uploadMu.Lock()
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.uploadMu.Unlock()

	o.wg.Wait()
}
