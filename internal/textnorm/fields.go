package textnorm

import (
	"regexp"
	"strings"
)

const nameScanLines = 15

var (
	emailRule = NewRule("email", `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRule = NewRule("phone", `(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	// ExperienceRules capture the candidate's own years of experience.
	ExperienceRules = Rules{
		NewRule("years_experience", `(?i)(\d+)\+?\s*years?\s*(?:of\s*)?experience`),
		NewRule("experience_years", `(?i)experience\s*:?\s*(\d+)\+?\s*years?`),
		NewRule("yrs_experience", `(?i)(\d+)\+?\s*yrs?\s*(?:of\s*)?experience`),
	}

	nameLabelRule = NewRule("name_label", `(?i)(?:name|full name):\s*([A-Z][a-zA-Z\s]{2,40})`)

	phoneShape    = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`)
	nameWordShape = regexp.MustCompile(`^[A-Z][a-zA-Z]{1,}`)
	digits        = regexp.MustCompile(`\d`)

	nameStopWords = []string{"resume", "curriculum", "vitae", "cv", "profile", "professional"}
)

// ExtractEmail returns the first e-mail shaped substring.
func ExtractEmail(text string) (string, bool) {
	v, _, ok := Rules{emailRule}.Find(text)
	return v, ok
}

// ExtractPhone returns the first phone shaped substring.
func ExtractPhone(text string) (string, bool) {
	m := phoneRule.Pattern.FindString(text)
	return m, m != ""
}

// ExtractYearsOfExperience returns the first number of years found by ExperienceRules, or 0.
func ExtractYearsOfExperience(text string) int {
	n, _ := ExperienceRules.FirstInt(text)
	return n
}

// ExtractName guesses the candidate name from the first lines of the résumé.
// A line of 2-4 capitalized words wins; otherwise a "Name:" label is used.
func ExtractName(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	lines := strings.Split(text, "\n")
	if len(lines) > nameScanLines {
		lines = lines[:nameScanLines]
	}

	for _, line := range lines {
		if name, ok := nameFromLine(strings.TrimSpace(line)); ok {
			return name, true
		}
	}

	for _, line := range lines {
		if v, _, ok := (Rules{nameLabelRule}).Find(line); ok {
			return strings.TrimSpace(v), true
		}
	}

	return "", false
}

func nameFromLine(line string) (string, bool) {
	if line == "" ||
		strings.Contains(line, "@") ||
		phoneShape.MatchString(line) ||
		strings.Contains(strings.ToLower(line), "http") {
		return "", false
	}

	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return "", false
	}

	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		w = trimTrailingPunct(w)
		if !nameWordShape.MatchString(w) || digits.MatchString(w) || len(w) <= 1 {
			return "", false
		}
		cleaned = append(cleaned, w)
	}

	name := strings.Join(cleaned, " ")
	lower := strings.ToLower(name)
	for _, stop := range nameStopWords {
		if strings.Contains(lower, stop) {
			return "", false
		}
	}

	return name, true
}

// trimTrailingPunct drops a single trailing punctuation mark.
func trimTrailingPunct(w string) string {
	if w == "" {
		return w
	}
	switch w[len(w)-1] {
	case '.', ',', ';', ':', '!', '?':
		return w[:len(w)-1]
	}
	return w
}
