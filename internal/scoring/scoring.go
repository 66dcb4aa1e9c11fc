// Package scoring computes the rule-based relevance of a résumé against a job
// description: skill overlap, experience fit and role relevance combined into a
// 0-100 score with matched and missing skill evidence.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/candidate"
	"github.com/spigell/resume-ranker/internal/textnorm"
	"github.com/spigell/resume-ranker/internal/vocab"
)

const (
	skillWeight      = 0.5
	experienceWeight = 0.3
	roleWeight       = 0.2

	// Neutral scores used when the job text carries no signal for a factor.
	neutralSkillScore      = 50
	neutralExperienceScore = 70
	neutralRoleScore       = 60

	noExperienceScore = 30

	// workContextMinLength is the length above which claimed skills must also
	// appear in the experience or projects sections.
	workContextMinLength = 10
)

// requiredExperienceRules extend the candidate rules with phrasing typical for job ads.
var requiredExperienceRules = textnorm.Rules{
	textnorm.ExperienceRules[0],
	textnorm.ExperienceRules[1],
	textnorm.NewRule("minimum_years", `(?i)minimum\s*(?:of\s*)?(\d+)\+?\s*years?`),
	textnorm.NewRule("at_least_years", `(?i)at least\s*(\d+)\+?\s*years?`),
}

// Breakdown holds the rounded sub-scores.
type Breakdown struct {
	SkillScore      int `json:"skillScore"`
	ExperienceScore int `json:"experienceScore"`
	RoleScore       int `json:"roleScore"`
}

// Result is the outcome of scoring one résumé against one job.
type Result struct {
	FinalScore    int       `json:"finalScore"`
	Breakdown     Breakdown `json:"breakdown"`
	MatchedSkills []string  `json:"matchedSkills"`
	MissingSkills []string  `json:"missingSkills"`
}

// Requirements are the signals derived from a job description.
type Requirements struct {
	Skills        []string `json:"skills"`
	RequiredYears int      `json:"requiredYears"`
	RoleKeywords  []string `json:"roleKeywords"`
}

// Engine scores résumés with a fixed vocabulary.
type Engine struct {
	vocab  *vocab.Matchers
	logger *zap.Logger
	clean  func(string) string
}

// New creates an engine. Nil matchers select the built-in vocabulary.
func New(matchers *vocab.Matchers, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if matchers == nil {
		matchers = vocab.Default().MustCompile()
	}
	return &Engine{vocab: matchers, logger: logger, clean: textnorm.Clean}
}

// AnalyzeJob derives skills, required years and role keywords from job text.
func (e *Engine) AnalyzeJob(jobText string) Requirements {
	cleaned := e.clean(jobText)
	years, _ := requiredExperienceRules.FirstInt(cleaned)
	return Requirements{
		Skills:        e.vocab.Skills.Find(cleaned),
		RequiredYears: years,
		RoleKeywords:  e.vocab.Roles.Find(cleaned),
	}
}

// Score never fails. An internal fault is logged and yields a zero Result.
func (e *Engine) Score(jobText, resumeText string, profile *candidate.Profile) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("scoring fault recovered, returning zero score",
				zap.String("fault", fmt.Sprint(r)),
			)
			result = zeroResult()
		}
	}()

	if profile == nil {
		profile = &candidate.Profile{}
	}

	req := e.AnalyzeJob(jobText)
	cleanedResume := e.clean(resumeText)

	resumeSkills := profile.Skills
	if resumeSkills == nil {
		resumeSkills = e.vocab.Skills.Find(cleanedResume)
	}

	m := newMatcher(resumeSkills, profile.WorkContext())
	matched, missing := m.partition(req.Skills)

	skill := skillScore(len(matched), len(req.Skills))
	experience := experienceScore(profile.Experience, req.RequiredYears)
	role := roleScore(req.RoleKeywords, cleanedResume)

	final := round(skill*skillWeight + experience*experienceWeight + role*roleWeight)

	return Result{
		FinalScore: clamp(final),
		Breakdown: Breakdown{
			SkillScore:      round(skill),
			ExperienceScore: round(experience),
			RoleScore:       round(role),
		},
		MatchedSkills: matched,
		MissingSkills: missing,
	}
}

func zeroResult() Result {
	return Result{MatchedSkills: []string{}, MissingSkills: []string{}}
}

// skillMatcher holds the single predicate deciding whether a job skill is matched.
type skillMatcher struct {
	resumeSkills map[string]struct{}
	workContext  string
	checkContext bool
}

func newMatcher(resumeSkills []string, workContext string) skillMatcher {
	set := make(map[string]struct{}, len(resumeSkills))
	for _, s := range resumeSkills {
		set[strings.ToLower(s)] = struct{}{}
	}
	return skillMatcher{
		resumeSkills: set,
		workContext:  workContext,
		checkContext: utf8.RuneCountInString(workContext) > workContextMinLength,
	}
}

func (m skillMatcher) matches(skill string) bool {
	lower := strings.ToLower(skill)
	if _, ok := m.resumeSkills[lower]; !ok {
		return false
	}
	if m.checkContext && !strings.Contains(m.workContext, lower) {
		return false
	}
	return true
}

// partition splits job skills into matched and missing, keeping job order.
func (m skillMatcher) partition(jobSkills []string) (matched, missing []string) {
	matched = make([]string, 0, len(jobSkills))
	missing = make([]string, 0, len(jobSkills))
	for _, s := range jobSkills {
		if m.matches(s) {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}
	return matched, missing
}

func skillScore(matched, total int) float64 {
	if total == 0 {
		return neutralSkillScore
	}
	return float64(matched) / float64(total) * 100
}

func experienceScore(candidateYears, requiredYears int) float64 {
	switch {
	case requiredYears == 0:
		return neutralExperienceScore
	case candidateYears == 0:
		return noExperienceScore
	case candidateYears >= requiredYears:
		return math.Min(100, 80+(float64(candidateYears)-float64(requiredYears))*2)
	default:
		return math.Round(float64(candidateYears) / float64(requiredYears) * 70)
	}
}

func roleScore(roleKeywords []string, cleanedResume string) float64 {
	if len(roleKeywords) == 0 {
		return neutralRoleScore
	}
	found := 0
	for _, kw := range roleKeywords {
		if strings.Contains(cleanedResume, strings.ToLower(kw)) {
			found++
		}
	}
	return float64(found) / float64(len(roleKeywords)) * 100
}

func round(v float64) int {
	return int(math.Round(v))
}

func clamp(v int) int {
	return max(0, min(100, v))
}
