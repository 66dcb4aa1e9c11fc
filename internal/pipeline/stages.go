package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/candidate"
	"github.com/spigell/resume-ranker/internal/ranking"
	"github.com/spigell/resume-ranker/internal/rationale"
	"github.com/spigell/resume-ranker/internal/scoring"
)

// Extractor turns document bytes into a candidate document.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (*candidate.Document, error)
}

// Scorer scores a résumé against job text. It must not fail.
type Scorer interface {
	Score(jobText, resumeText string, profile *candidate.Profile) scoring.Result
}

// Deps aggregates dependencies shared across all stages.
type Deps struct {
	Extractor Extractor
	Scorer    Scorer
	Logger    *zap.Logger
}

// Stage is one step of résumé processing. The résumé enters Status before Apply runs.
type Stage interface {
	Name() string
	Status() ranking.ResumeStatus
	Apply(ctx context.Context, deps Deps, w *Work) error
}

// Work carries one résumé through the stages.
type Work struct {
	Job    *ranking.Job
	Resume *ranking.Resume
	// Data is the uploaded document, released after parsing.
	Data []byte
}

// DefaultStages returns parse, score and reason in order.
func DefaultStages() []Stage {
	return []Stage{parseStage{}, scoreStage{}, reasonStage{}}
}

type parseStage struct{}

func (parseStage) Name() string { return "parse" }

func (parseStage) Status() ranking.ResumeStatus { return ranking.StatusParsing }

func (parseStage) Apply(ctx context.Context, deps Deps, w *Work) error {
	doc, err := deps.Extractor.Extract(ctx, w.Data)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("extractor returned no document")
	}

	w.Resume.RawText = doc.RawText
	w.Resume.CleanedText = doc.CleanedText
	w.Resume.Profile = doc.Profile
	w.Data = nil

	if deps.Logger != nil {
		deps.Logger.Debug("resume parsed",
			zap.Int("text_length", len(doc.RawText)),
			zap.Int("skills", len(doc.Profile.Skills)),
			zap.Int("experience_years", doc.Profile.Experience),
		)
	}
	return nil
}

type scoreStage struct{}

func (scoreStage) Name() string { return "score" }

func (scoreStage) Status() ranking.ResumeStatus { return ranking.StatusScoring }

func (scoreStage) Apply(_ context.Context, deps Deps, w *Work) error {
	res := deps.Scorer.Score(w.Job.Description, w.Resume.CleanedText, &w.Resume.Profile)
	w.Resume.ApplyScore(res)

	if deps.Logger != nil {
		deps.Logger.Debug("resume scored",
			zap.Int("score", res.FinalScore),
			zap.Int("skill_score", res.Breakdown.SkillScore),
			zap.Int("experience_score", res.Breakdown.ExperienceScore),
			zap.Int("role_score", res.Breakdown.RoleScore),
		)
	}
	return nil
}

type reasonStage struct{}

func (reasonStage) Name() string { return "reason" }

func (reasonStage) Status() ranking.ResumeStatus { return ranking.StatusReasoning }

func (reasonStage) Apply(_ context.Context, _ Deps, w *Work) error {
	res := scoring.Result{
		FinalScore:    w.Resume.FinalScore,
		Breakdown:     w.Resume.Breakdown,
		MatchedSkills: w.Resume.MatchedSkills,
		MissingSkills: w.Resume.MissingSkills,
	}
	w.Resume.Rationale = rationale.Generate(res, &w.Resume.Profile)
	return nil
}
