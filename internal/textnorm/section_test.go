package textnorm

import "testing"

const sampleResume = `John Smith
john@smith.dev

Summary
Backend developer.

Work Experience
Acme Corp - Senior Engineer
Built REST APIs using Node.js and MongoDB

Projects
Resume ranker in Go

Education
BSc Computer Science
`

func TestExtractSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		section string
		expect  string
	}{
		{
			name:    "experience stops at projects header",
			section: SectionExperience,
			expect:  "Acme Corp - Senior Engineer Built REST APIs using Node.js and MongoDB",
		},
		{
			name:    "projects stops at education header",
			section: SectionProjects,
			expect:  "Resume ranker in Go",
		},
		{
			name:    "education runs to the end",
			section: SectionEducation,
			expect:  "BSc Computer Science",
		},
		{
			name:    "missing section",
			section: SectionSkills,
			expect:  "",
		},
		{
			name:    "unknown section",
			section: "hobbies",
			expect:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractSection(sampleResume, tt.section); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestExtractSectionRepeatedHeaderKeepsCollecting(t *testing.T) {
	t.Parallel()

	text := "Experience\nfirst job\nexperience\nsecond job\nSkills\nGo"
	if got := ExtractSection(text, SectionExperience); got != "first job second job" {
		t.Fatalf("unexpected section text %q", got)
	}
}
