package textnorm

import (
	"regexp"
	"strings"
)

// Section names recognized by ExtractSection.
const (
	SectionExperience = "experience"
	SectionProjects   = "projects"
	SectionSkills     = "skills"
	SectionEducation  = "education"
)

type sectionHeader struct {
	name    string
	pattern *regexp.Regexp
}

// Header patterns are unanchored: any line containing a header phrase opens or closes a section.
var sectionHeaders = []sectionHeader{
	{SectionExperience, regexp.MustCompile(`(?i)(?:work\s+)?experience|employment\s+history|professional\s+experience`)},
	{SectionProjects, regexp.MustCompile(`(?i)projects?|portfolio|personal\s+projects|key\s+projects`)},
	{SectionSkills, regexp.MustCompile(`(?i)(?:technical\s+)?skills?|competencies|expertise`)},
	{SectionEducation, regexp.MustCompile(`(?i)education|academic|qualifications`)},
}

// ExtractSection returns the non-empty lines between the first header of the named
// section and the next header of any other section, joined by single spaces.
// Unknown sections and missing headers yield an empty string.
func ExtractSection(text, section string) string {
	var target *regexp.Regexp
	others := make([]*regexp.Regexp, 0, len(sectionHeaders))
	for _, h := range sectionHeaders {
		if h.name == section {
			target = h.pattern
			continue
		}
		others = append(others, h.pattern)
	}
	if target == nil {
		return ""
	}

	var collected []string
	started := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if target.MatchString(line) {
			started = true
			continue
		}

		if started && matchesAny(others, line) {
			break
		}

		if started && line != "" {
			collected = append(collected, line)
		}
	}

	return strings.Join(collected, " ")
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
