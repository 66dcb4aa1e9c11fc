// Package rationale turns a scoring result into strengths, gaps and a summary sentence.
package rationale

import (
	"fmt"
	"strings"

	"github.com/spigell/resume-ranker/internal/candidate"
	"github.com/spigell/resume-ranker/internal/scoring"
)

const (
	maxListedSkills    = 5
	maxListedEducation = 2

	highRoleScore      = 70
	lowRoleScore       = 40
	lowExperienceScore = 50

	defaultName = "Candidate"

	noStrengths = "Basic qualifications present"
	noGaps      = "No significant gaps identified"
)

// Rationale explains a score in plain text.
type Rationale struct {
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
	Summary   string   `json:"summary"`
}

// Generate is a pure function of its inputs. Both lists are never empty.
func Generate(result scoring.Result, profile *candidate.Profile) Rationale {
	if profile == nil {
		profile = &candidate.Profile{}
	}

	return Rationale{
		Strengths: strengths(result, profile),
		Gaps:      gaps(result),
		Summary:   summary(result.FinalScore, profile.Name),
	}
}

func strengths(result scoring.Result, profile *candidate.Profile) []string {
	var out []string

	if len(result.MatchedSkills) > 0 {
		out = append(out, "Strong skill match: "+joinFirst(result.MatchedSkills, maxListedSkills))
	}
	if profile.Experience > 0 {
		out = append(out, fmt.Sprintf("%d+ years of relevant experience", profile.Experience))
	}
	if result.Breakdown.RoleScore >= highRoleScore {
		out = append(out, "High role relevance based on background")
	}
	if len(profile.Education) > 0 {
		out = append(out, "Education: "+joinFirst(profile.Education, maxListedEducation))
	}

	if len(out) == 0 {
		out = append(out, noStrengths)
	}
	return out
}

func gaps(result scoring.Result) []string {
	var out []string

	if len(result.MissingSkills) > 0 {
		out = append(out, "Missing key skills: "+joinFirst(result.MissingSkills, maxListedSkills))
	}
	if result.Breakdown.ExperienceScore < lowExperienceScore {
		out = append(out, "Limited relevant experience")
	}
	if result.Breakdown.RoleScore < lowRoleScore {
		out = append(out, "Lower role relevance match")
	}

	if len(out) == 0 {
		out = append(out, noGaps)
	}
	return out
}

func summary(score int, name string) string {
	if strings.TrimSpace(name) == "" {
		name = defaultName
	}

	switch {
	case score >= 75:
		return name + " is a strong match for this position with excellent skill alignment and relevant experience."
	case score >= 50:
		return name + " shows moderate fit for this role with some matching skills and experience."
	case score >= 25:
		return name + " has limited match with the job requirements and may need additional training."
	default:
		return name + " has minimal alignment with the required skills and experience for this position."
	}
}

func joinFirst(items []string, n int) string {
	return strings.Join(items[:min(n, len(items))], ", ")
}
