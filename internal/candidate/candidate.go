// Package candidate describes the structured data extracted from a résumé.
package candidate

import "strings"

// Profile is the set of fields heuristically extracted from a résumé.
type Profile struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	// Years of experience claimed in the résumé, 0 when not stated.
	Experience int `json:"experience"`
	// Skills are vocabulary keywords in vocabulary order. A nil slice means
	// skills were never extracted; an empty slice means none were found.
	Skills []string `json:"skills"`
	// Education holds uppercased, deduplicated credential keywords.
	Education      []string `json:"education"`
	ExperienceText string   `json:"experienceText,omitempty"`
	ProjectsText   string   `json:"projectsText,omitempty"`
}

// WorkContext is the lowercased experience and projects text used to confirm that
// a listed skill was actually applied.
func (p *Profile) WorkContext() string {
	if p == nil {
		return " "
	}
	return strings.ToLower(p.ExperienceText + " " + p.ProjectsText)
}

// DisplayName returns the extracted name or fallback when absent.
func (p *Profile) DisplayName(fallback string) string {
	if p == nil || p.Name == "" || p.Name == "Unknown" {
		return fallback
	}
	return p.Name
}

// Document is one résumé after extraction. RawText is never modified after extraction
// and CleanedText is always textnorm.Clean(RawText).
type Document struct {
	RawText     string  `json:"rawText"`
	CleanedText string  `json:"cleanedText"`
	Profile     Profile `json:"profile"`
}
