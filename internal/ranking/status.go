package ranking

import (
	"errors"
	"fmt"
)

// ResumeStatus is the processing state of a single résumé.
type ResumeStatus string

const (
	StatusPending   ResumeStatus = "pending"
	StatusParsing   ResumeStatus = "parsing"
	StatusScoring   ResumeStatus = "scoring"
	StatusReasoning ResumeStatus = "reasoning"
	StatusCompleted ResumeStatus = "completed"
	StatusFailed    ResumeStatus = "failed"
)

// ErrInvalidTransition is wrapped by every TransitionError.
var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError reports a rejected status change.
type TransitionError struct {
	From ResumeStatus
	To   ResumeStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// transitions lists the allowed next states. Terminal states have none.
var transitions = map[ResumeStatus][]ResumeStatus{
	StatusPending:   {StatusParsing, StatusFailed},
	StatusParsing:   {StatusScoring, StatusFailed},
	StatusScoring:   {StatusReasoning, StatusFailed},
	StatusReasoning: {StatusCompleted, StatusFailed},
	StatusCompleted: nil,
	StatusFailed:    nil,
}

// ParseResumeStatus validates a stored status value.
func ParseResumeStatus(s string) (ResumeStatus, error) {
	status := ResumeStatus(s)
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("unknown resume status %q", s)
	}
	return status, nil
}

// CanTransition reports whether moving from s to next is allowed.
func (s ResumeStatus) CanTransition(next ResumeStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s ResumeStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsProcessing reports whether the résumé is inside the pipeline.
func (s ResumeStatus) IsProcessing() bool {
	return s == StatusParsing || s == StatusScoring || s == StatusReasoning
}

// JobStatus is the aggregate state of a job.
type JobStatus string

const (
	JobCreated    JobStatus = "created"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
)

// ParseJobStatus validates a stored job status value.
func ParseJobStatus(s string) (JobStatus, error) {
	switch status := JobStatus(s); status {
	case JobCreated, JobProcessing, JobCompleted:
		return status, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}
