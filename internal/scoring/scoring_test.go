package scoring

import (
	"math"
	"reflect"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-ranker/internal/candidate"
)

const backendJob = "Senior Backend Engineer, 5+ years experience with Node.js, MongoDB, REST APIs"

func backendProfile() *candidate.Profile {
	return &candidate.Profile{
		Name:           "John Michael Smith",
		Experience:     6,
		Skills:         []string{"node.js", "mongodb", "rest", "api"},
		ExperienceText: "built rest apis using node.js and mongodb for 6 years",
	}
}

func TestScoreBackendScenario(t *testing.T) {
	t.Parallel()

	engine := New(nil, nil)
	resume := "Senior Backend Engineer. Built REST APIs using Node.js and MongoDB for 6 years"

	res := engine.Score(backendJob, resume, backendProfile())

	if res.Breakdown.SkillScore != 100 {
		t.Fatalf("expected skill score 100, got %d", res.Breakdown.SkillScore)
	}
	if res.Breakdown.ExperienceScore != 82 {
		t.Fatalf("expected experience score 82, got %d", res.Breakdown.ExperienceScore)
	}
	if res.Breakdown.RoleScore != 100 {
		t.Fatalf("expected role score 100, got %d", res.Breakdown.RoleScore)
	}
	if res.FinalScore != 95 {
		t.Fatalf("expected final score 95, got %d", res.FinalScore)
	}
	if len(res.MissingSkills) != 0 {
		t.Fatalf("expected no missing skills, got %v", res.MissingSkills)
	}
}

func TestAnalyzeJob(t *testing.T) {
	t.Parallel()

	req := New(nil, nil).AnalyzeJob(backendJob)

	if req.RequiredYears != 5 {
		t.Fatalf("expected 5 required years, got %d", req.RequiredYears)
	}
	for _, s := range []string{"node.js", "mongodb", "rest"} {
		if !slices.Contains(req.Skills, s) {
			t.Fatalf("expected skill %q in %v", s, req.Skills)
		}
	}
	wantRoles := []string{"engineer", "senior", "backend"}
	if !reflect.DeepEqual(req.RoleKeywords, wantRoles) {
		t.Fatalf("expected roles %v, got %v", wantRoles, req.RoleKeywords)
	}
}

func TestRequiredExperiencePatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		job  string
		want int
	}{
		{job: "We want 3 years of experience in Go", want: 3},
		{job: "Experience: 4 years minimum", want: 4},
		{job: "Minimum of 7 years in backend", want: 7},
		{job: "At least 2 years with Python", want: 2},
		{job: "Looking for a motivated engineer", want: 0},
	}

	engine := New(nil, nil)
	for _, tt := range tests {
		if got := engine.AnalyzeJob(tt.job).RequiredYears; got != tt.want {
			t.Fatalf("AnalyzeJob(%q).RequiredYears = %d, want %d", tt.job, got, tt.want)
		}
	}
}

func TestScoreEmptyJobSkillsIsNeutral(t *testing.T) {
	t.Parallel()

	job := "We need a friendly person to manage our front desk and greet visitors daily."
	engine := New(nil, nil)

	for _, profile := range []*candidate.Profile{
		nil,
		{Skills: []string{"python", "docker"}, Experience: 10},
		{Skills: []string{}},
	} {
		res := engine.Score(job, "python docker kubernetes", profile)
		if res.Breakdown.SkillScore != 50 {
			t.Fatalf("expected neutral skill score 50, got %d", res.Breakdown.SkillScore)
		}
		if res.Breakdown.ExperienceScore != 70 {
			t.Fatalf("expected neutral experience score 70, got %d", res.Breakdown.ExperienceScore)
		}
		if res.Breakdown.RoleScore != 60 {
			t.Fatalf("expected neutral role score 60, got %d", res.Breakdown.RoleScore)
		}
		if res.FinalScore != 58 {
			t.Fatalf("expected final score 58, got %d", res.FinalScore)
		}
	}
}

func TestScoreRequiresSkillInWorkContext(t *testing.T) {
	t.Parallel()

	job := "Looking for a developer with Python and Docker skills"
	profile := &candidate.Profile{
		Skills:         []string{"python", "docker"},
		ExperienceText: "built python services for a payments company",
	}

	res := New(nil, nil).Score(job, "python docker", profile)

	if !reflect.DeepEqual(res.MatchedSkills, []string{"python"}) {
		t.Fatalf("expected only python matched, got %v", res.MatchedSkills)
	}
	if !reflect.DeepEqual(res.MissingSkills, []string{"docker"}) {
		t.Fatalf("expected docker missing, got %v", res.MissingSkills)
	}
	if res.Breakdown.SkillScore != 50 {
		t.Fatalf("expected skill score 50, got %d", res.Breakdown.SkillScore)
	}
}

func TestScoreShortWorkContextSkipsContextCheck(t *testing.T) {
	t.Parallel()

	job := "Looking for a developer with Python and Docker skills"
	profile := &candidate.Profile{
		Skills:         []string{"Python", "Docker"},
		ExperienceText: "intern",
	}

	res := New(nil, nil).Score(job, "", profile)
	if len(res.MatchedSkills) != 2 {
		t.Fatalf("expected both skills matched, got %v", res.MatchedSkills)
	}
}

func TestScoreFallsBackToTextSkills(t *testing.T) {
	t.Parallel()

	job := "Looking for a developer with Python and Docker skills"
	res := New(nil, nil).Score(job, "I write python every day", &candidate.Profile{})

	if !reflect.DeepEqual(res.MatchedSkills, []string{"python"}) {
		t.Fatalf("expected python matched from resume text, got %v", res.MatchedSkills)
	}

	// A present but empty skill list is authoritative.
	res = New(nil, nil).Score(job, "I write python every day", &candidate.Profile{Skills: []string{}})
	if len(res.MatchedSkills) != 0 {
		t.Fatalf("expected no matches for empty skill list, got %v", res.MatchedSkills)
	}
}

func TestExperienceScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate int
		required  int
		want      float64
	}{
		{name: "no requirement", candidate: 0, required: 0, want: 70},
		{name: "no requirement ignores candidate", candidate: 12, required: 0, want: 70},
		{name: "no candidate experience", candidate: 0, required: 5, want: 30},
		{name: "exact", candidate: 5, required: 5, want: 80},
		{name: "above", candidate: 8, required: 5, want: 86},
		{name: "capped", candidate: 30, required: 2, want: 100},
		{name: "below", candidate: 2, required: 5, want: 28},
		{name: "below rounds", candidate: 1, required: 3, want: 23},
		{name: "huge candidate value", candidate: math.MaxInt/2 + 11, required: 5, want: 100},
		{name: "max int candidate", candidate: math.MaxInt, required: 5, want: 100},
		{name: "huge requirement", candidate: 5, required: math.MaxInt, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := experienceScore(tt.candidate, tt.required); got != tt.want {
				t.Fatalf("experienceScore(%d, %d) = %v, want %v", tt.candidate, tt.required, got, tt.want)
			}
		})
	}
}

func TestScoreHugeExperienceStaysBounded(t *testing.T) {
	t.Parallel()

	engine := New(nil, zap.NewNop())
	for _, years := range []int{math.MaxInt/2 + 11, math.MaxInt} {
		profile := &candidate.Profile{Experience: years, Skills: []string{"go"}}
		res := engine.Score("Senior Go developer, 5+ years experience with Go", "senior go developer", profile)

		if res.Breakdown.ExperienceScore != 100 {
			t.Fatalf("years=%d: expected experience score 100, got %d", years, res.Breakdown.ExperienceScore)
		}
		if res.FinalScore < 80 || res.FinalScore > 100 {
			t.Fatalf("years=%d: final score %d out of range", years, res.FinalScore)
		}
	}
}

func TestScorePartitionsJobSkills(t *testing.T) {
	t.Parallel()

	jobs := []string{
		backendJob,
		"Python, Django, PostgreSQL, Redis, AWS and Kubernetes; at least 3 years",
		"Frontend developer: React, TypeScript, CSS, HTML, GraphQL",
		"",
	}
	profiles := []*candidate.Profile{
		nil,
		backendProfile(),
		{Skills: []string{"python", "react", "css"}, ExperienceText: "react and css dashboards"},
		{Experience: 1, ProjectsText: "kubernetes operator in python"},
	}

	engine := New(nil, nil)
	for _, job := range jobs {
		jobSkills := engine.AnalyzeJob(job).Skills
		for _, p := range profiles {
			res := engine.Score(job, "python react typescript kubernetes", p)

			if res.FinalScore < 0 || res.FinalScore > 100 {
				t.Fatalf("final score %d out of range", res.FinalScore)
			}
			if len(res.MatchedSkills)+len(res.MissingSkills) != len(jobSkills) {
				t.Fatalf("matched %v and missing %v do not cover %v", res.MatchedSkills, res.MissingSkills, jobSkills)
			}
			for _, s := range res.MatchedSkills {
				if slices.Contains(res.MissingSkills, s) {
					t.Fatalf("skill %q both matched and missing", s)
				}
			}
			for _, s := range jobSkills {
				if !slices.Contains(res.MatchedSkills, s) && !slices.Contains(res.MissingSkills, s) {
					t.Fatalf("job skill %q not accounted for", s)
				}
			}
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	t.Parallel()

	engine := New(nil, nil)
	first := engine.Score(backendJob, "senior engineer node.js", backendProfile())
	for range 10 {
		if got := engine.Score(backendJob, "senior engineer node.js", backendProfile()); !reflect.DeepEqual(got, first) {
			t.Fatalf("expected identical results, got %+v and %+v", first, got)
		}
	}
}

func TestScoreRecoversFault(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	engine := New(nil, zap.New(core))
	engine.clean = func(string) string { panic("boom") }

	res := engine.Score(backendJob, "anything", backendProfile())

	if res.FinalScore != 0 || res.Breakdown != (Breakdown{}) {
		t.Fatalf("expected zero result, got %+v", res)
	}
	if res.MatchedSkills == nil || res.MissingSkills == nil || len(res.MatchedSkills)+len(res.MissingSkills) != 0 {
		t.Fatalf("expected empty skill lists, got %+v", res)
	}

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["fault"] != "boom" {
		t.Fatalf("expected fault field, got %v", entries[0].ContextMap())
	}
}
