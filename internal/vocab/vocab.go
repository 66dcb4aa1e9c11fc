// Package vocab holds the keyword vocabularies used to recognize skills,
// education credentials and role terms, and compiles them into matchers.
package vocab

import (
	"fmt"
	"regexp"
	"strings"
)

// Set is the full vocabulary configuration. Order inside each list is significant:
// matches are reported in list order, not in text order.
type Set struct {
	Skills    []string `mapstructure:"skills"`
	Education []string `mapstructure:"education"`
	Roles     []string `mapstructure:"roles"`
}

// Default returns the built-in vocabulary.
func Default() Set {
	return Set{
		Skills:    append([]string(nil), defaultSkills...),
		Education: append([]string(nil), defaultEducation...),
		Roles:     append([]string(nil), defaultRoles...),
	}
}

var defaultSkills = []string{
	"javascript", "typescript", "python", "java", "c++", "c#", "ruby", "php", "go", "rust",
	"node.js", "nodejs", "react", "angular", "vue", "express", "django", "flask", "spring",
	"mongodb", "postgresql", "mysql", "redis", "elasticsearch",
	"aws", "azure", "gcp", "docker", "kubernetes", "jenkins",
	"html", "css", "sql", "nosql", "graphql", "rest", "api",
	"git", "agile", "scrum", "ci/cd", "devops",
	"machine learning", "deep learning", "ai", "nlp",
	"microservices", "system design", "architecture",
}

// Education keywords are regex fragments, so "ph.d" also accepts "ph d" or "phd".
var defaultEducation = []string{
	"phd", "ph.d", "doctorate",
	"master", "msc", "m.sc", "mba", "m.b.a", "ms",
	"bachelor", "bsc", "b.sc", "btech", "b.tech", "be", "b.e", "ba", "b.a", "bs",
	"diploma", "associate",
}

var defaultRoles = []string{
	"engineer", "developer", "architect", "lead", "senior", "junior",
	"manager", "director", "analyst", "designer", "consultant",
	"backend", "frontend", "fullstack", "full stack", "devops",
	"data", "ml", "ai", "mobile", "web", "cloud", "security",
}

// Term is a vocabulary entry compiled into a case-insensitive whole-word matcher.
type Term struct {
	Keyword string
	re      *regexp.Regexp
}

// Matcher finds vocabulary terms in text.
type Matcher struct {
	terms []Term
}

// NewLiteralMatcher compiles keywords as literal text, escaping regex metacharacters.
func NewLiteralMatcher(keywords []string) (*Matcher, error) {
	return newMatcher(keywords, regexp.QuoteMeta)
}

// NewPatternMatcher compiles keywords as regex fragments.
func NewPatternMatcher(keywords []string) (*Matcher, error) {
	return newMatcher(keywords, func(s string) string { return s })
}

func newMatcher(keywords []string, quote func(string) string) (*Matcher, error) {
	m := &Matcher{terms: make([]Term, 0, len(keywords))}
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + quote(kw) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compile keyword %q: %w", kw, err)
		}
		m.terms = append(m.terms, Term{Keyword: kw, re: re})
	}
	return m, nil
}

// Find returns every keyword with a whole-word match in text, in vocabulary order.
// The result is never nil.
func (m *Matcher) Find(text string) []string {
	found := make([]string, 0)
	if m == nil {
		return found
	}
	for _, t := range m.terms {
		if t.re.MatchString(text) {
			found = append(found, t.Keyword)
		}
	}
	return found
}

// Keywords returns the compiled keywords in order.
func (m *Matcher) Keywords() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.terms))
	for _, t := range m.terms {
		out = append(out, t.Keyword)
	}
	return out
}

// Matchers bundles the compiled matchers of a Set.
type Matchers struct {
	Skills    *Matcher
	Education *Matcher
	Roles     *Matcher
}

// Compile builds matchers for every list in the set. Skills and roles are
// literal keywords; education entries are regex fragments.
func (s Set) Compile() (*Matchers, error) {
	skills, err := NewLiteralMatcher(s.Skills)
	if err != nil {
		return nil, fmt.Errorf("skills: %w", err)
	}
	education, err := NewPatternMatcher(s.Education)
	if err != nil {
		return nil, fmt.Errorf("education: %w", err)
	}
	roles, err := NewLiteralMatcher(s.Roles)
	if err != nil {
		return nil, fmt.Errorf("roles: %w", err)
	}
	return &Matchers{Skills: skills, Education: education, Roles: roles}, nil
}

// MustCompile is like Compile but panics on error.
func (s Set) MustCompile() *Matchers {
	m, err := s.Compile()
	if err != nil {
		panic(err)
	}
	return m
}
