// Package report renders ranked résumés as a text table, JSON or an XLSX workbook.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spigell/resume-ranker/internal/ranking"
	"github.com/spigell/resume-ranker/internal/scoring"
)

// Entry is one ranked candidate as presented to the user.
type Entry struct {
	Rank          int               `json:"rank"`
	ResumeID      string            `json:"resumeId"`
	Name          string            `json:"name"`
	FileName      string            `json:"fileName"`
	Email         string            `json:"email,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	Experience    int               `json:"experience"`
	Score         int               `json:"score"`
	Fit           string            `json:"fit"`
	Breakdown     scoring.Breakdown `json:"breakdown"`
	Skills        []string          `json:"skills"`
	Education     []string          `json:"education"`
	MatchedSkills []string          `json:"matchedSkills"`
	MissingSkills []string          `json:"missingSkills"`
	Strengths     []string          `json:"strengths"`
	Gaps          []string          `json:"gaps"`
	Summary       string            `json:"summary"`
	ProcessedAt   *time.Time        `json:"processedAt,omitempty"`
}

// Report is the complete outcome of one job.
type Report struct {
	Job     *ranking.Job    `json:"job"`
	Counts  ranking.Summary `json:"counts"`
	Ranked  []Entry         `json:"ranked"`
	Failed  []Failure       `json:"failed,omitempty"`
	Created time.Time       `json:"created"`
}

// Failure describes a résumé that could not be processed.
type Failure struct {
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

// Build ranks the résumés of a job and collects failures.
func Build(job *ranking.Job, resumes []*ranking.Resume) *Report {
	ranked := ranking.Rank(resumes)

	r := &Report{
		Job:     job,
		Counts:  ranking.Summarize(resumes),
		Ranked:  make([]Entry, 0, len(ranked)),
		Created: time.Now().UTC(),
	}
	for i, res := range ranked {
		r.Ranked = append(r.Ranked, newEntry(i+1, res))
	}
	for _, res := range resumes {
		if res.Status == ranking.StatusFailed {
			r.Failed = append(r.Failed, Failure{FileName: res.FileName, Error: res.Error})
		}
	}
	return r
}

func newEntry(rank int, r *ranking.Resume) Entry {
	return Entry{
		Rank:          rank,
		ResumeID:      r.ID,
		Name:          r.DisplayName(),
		FileName:      r.FileName,
		Email:         r.Profile.Email,
		Phone:         r.Profile.Phone,
		Experience:    r.Profile.Experience,
		Score:         r.FinalScore,
		Fit:           ranking.FitLabel(r.FinalScore),
		Breakdown:     r.Breakdown,
		Skills:        r.Profile.Skills,
		Education:     r.Profile.Education,
		MatchedSkills: r.MatchedSkills,
		MissingSkills: r.MissingSkills,
		Strengths:     r.Rationale.Strengths,
		Gaps:          r.Rationale.Gaps,
		Summary:       r.Rationale.Summary,
		ProcessedAt:   r.ProcessedAt,
	}
}

// DumpToTmpFile writes the report as indented JSON into a new file in dir
// (the system temp dir when empty) and returns its path.
func (r *Report) DumpToTmpFile(dir string) (string, error) {
	file, err := os.CreateTemp(dir, "ranking_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// WriteTable prints the ranking as an aligned text table.
func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "RANK\tCANDIDATE\tSCORE\tFIT\tSKILL\tEXP\tROLE\tMISSING")
	for _, e := range r.Ranked {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\t%d\t%d\t%s\n",
			e.Rank, e.Name, e.Score, e.Fit,
			e.Breakdown.SkillScore, e.Breakdown.ExperienceScore, e.Breakdown.RoleScore,
			joinOrDash(e.MissingSkills),
		)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(tw, "-\t%s\t-\tfailed\t\t\t\t%s\n", f.FileName, f.Error)
	}

	return tw.Flush()
}

// WriteDetails prints the full evaluation of one entry.
func WriteDetails(w io.Writer, e Entry) error {
	var b strings.Builder

	fmt.Fprintf(&b, "#%d %s (%s)\n", e.Rank, e.Name, e.FileName)
	if e.Email != "" {
		fmt.Fprintf(&b, "Email:       %s\n", e.Email)
	}
	if e.Phone != "" {
		fmt.Fprintf(&b, "Phone:       %s\n", e.Phone)
	}
	fmt.Fprintf(&b, "Experience:  %d years\n", e.Experience)
	fmt.Fprintf(&b, "Score:       %d (%s)  skill %d / experience %d / role %d\n",
		e.Score, e.Fit, e.Breakdown.SkillScore, e.Breakdown.ExperienceScore, e.Breakdown.RoleScore)
	fmt.Fprintf(&b, "Matched:     %s\n", joinOrDash(e.MatchedSkills))
	fmt.Fprintf(&b, "Missing:     %s\n", joinOrDash(e.MissingSkills))
	fmt.Fprintf(&b, "Education:   %s\n", joinOrDash(e.Education))

	b.WriteString("Strengths:\n")
	for _, s := range e.Strengths {
		fmt.Fprintf(&b, "  + %s\n", s)
	}
	b.WriteString("Gaps:\n")
	for _, g := range e.Gaps {
		fmt.Fprintf(&b, "  - %s\n", g)
	}
	fmt.Fprintf(&b, "Summary:     %s\n", e.Summary)

	_, err := io.WriteString(w, b.String())
	return err
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
