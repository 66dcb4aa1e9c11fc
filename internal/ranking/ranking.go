// Package ranking holds job and résumé records, the résumé status machine and
// the views built from them: processing summaries and the ranked candidate list.
package ranking

import (
	"cmp"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/spigell/resume-ranker/internal/candidate"
	"github.com/spigell/resume-ranker/internal/rationale"
	"github.com/spigell/resume-ranker/internal/scoring"
)

// MinDescriptionLength is the minimum trimmed length of a job description.
const MinDescriptionLength = 50

// ErrDescriptionTooShort is returned by NewJob.
var ErrDescriptionTooShort = errors.New("job description is too short")

// Job is a ranking request: one description and the résumés uploaded for it.
type Job struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Status      JobStatus `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewJob validates the description and creates a job in the created state.
func NewJob(description string) (*Job, error) {
	description = strings.TrimFunc(description, isTrimmable)
	if n := descriptionLength(description); n < MinDescriptionLength {
		return nil, fmt.Errorf("%w: %d characters, need at least %d", ErrDescriptionTooShort, n, MinDescriptionLength)
	}

	return &Job{
		ID:          uuid.NewString(),
		Description: description,
		Status:      JobCreated,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// isTrimmable matches whitespace and the byte order mark, which editors often
// leave at the start of pasted text.
func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// descriptionLength counts UTF-16 code units, so characters outside the
// Basic Multilingual Plane count twice.
func descriptionLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Resume is the full processing record of one uploaded file.
type Resume struct {
	ID       string       `json:"id"`
	JobID    string       `json:"jobId"`
	Seq      int          `json:"seq"`
	FileName string       `json:"fileName"`
	Status   ResumeStatus `json:"status"`
	Error    string       `json:"error,omitempty"`

	RawText     string            `json:"rawText,omitempty"`
	CleanedText string            `json:"cleanedText,omitempty"`
	Profile     candidate.Profile `json:"profile"`

	RuleScore     int                 `json:"ruleScore"`
	FinalScore    int                 `json:"finalScore"`
	Breakdown     scoring.Breakdown   `json:"breakdown"`
	MatchedSkills []string            `json:"matchedSkills"`
	MissingSkills []string            `json:"missingSkills"`
	Rationale     rationale.Rationale `json:"rationale"`

	UploadedAt  time.Time  `json:"uploadedAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

// NewResume creates a pending record. seq is the upload position within the job.
func NewResume(jobID, fileName string, seq int) *Resume {
	return &Resume{
		ID:         uuid.NewString(),
		JobID:      jobID,
		Seq:        seq,
		FileName:   fileName,
		Status:     StatusPending,
		UploadedAt: time.Now().UTC(),
	}
}

// Transition moves the résumé to next or returns a *TransitionError.
func (r *Resume) Transition(next ResumeStatus) error {
	if !r.Status.CanTransition(next) {
		return &TransitionError{From: r.Status, To: next}
	}
	r.Status = next
	return nil
}

// Fail moves the résumé to failed with the given message.
func (r *Resume) Fail(msg string) error {
	if err := r.Transition(StatusFailed); err != nil {
		return err
	}
	r.Error = msg
	return nil
}

// ApplyScore records the scoring result. Rule and final score are the same value.
func (r *Resume) ApplyScore(res scoring.Result) {
	r.RuleScore = res.FinalScore
	r.FinalScore = res.FinalScore
	r.Breakdown = res.Breakdown
	r.MatchedSkills = res.MatchedSkills
	r.MissingSkills = res.MissingSkills
}

// DisplayName is the extracted candidate name, or the file name without extension.
func (r *Resume) DisplayName() string {
	base := filepath.Base(r.FileName)
	return r.Profile.DisplayName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Summary counts résumés of one job by status group.
type Summary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// Summarize counts the given résumés.
func Summarize(resumes []*Resume) Summary {
	s := Summary{Total: len(resumes)}
	for _, r := range resumes {
		switch {
		case r.Status == StatusPending:
			s.Pending++
		case r.Status.IsProcessing():
			s.Processing++
		case r.Status == StatusCompleted:
			s.Completed++
		case r.Status == StatusFailed:
			s.Failed++
		}
	}
	return s
}

// Done reports whether every résumé reached a terminal state.
func (s Summary) Done() bool {
	return s.Completed+s.Failed == s.Total
}

// Rank returns completed résumés ordered by final score, highest first.
// Equal scores keep upload order.
func Rank(resumes []*Resume) []*Resume {
	ranked := make([]*Resume, 0, len(resumes))
	for _, r := range resumes {
		if r.Status == StatusCompleted {
			ranked = append(ranked, r)
		}
	}

	slices.SortStableFunc(ranked, func(a, b *Resume) int {
		if c := cmp.Compare(b.FinalScore, a.FinalScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	return ranked
}

// FitLabel buckets a score for display.
func FitLabel(score int) string {
	switch {
	case score >= 80:
		return "Strong"
	case score >= 60:
		return "Partial"
	default:
		return "Low relevance"
	}
}
