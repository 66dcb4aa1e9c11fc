package textnorm

import (
	"errors"
	"math"
	"regexp"
	"strconv"
)

// Rule is a named extraction pattern. When the pattern has a capture group,
// the first group carries the extracted value; otherwise the whole match does.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Rules are tried in order, first match wins.
type Rules []Rule

// NewRule compiles pattern and panics on error. Intended for package-level rule tables.
func NewRule(name, pattern string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern)}
}

// Find returns the value captured by the first matching rule and the rule name.
func (r Rules) Find(text string) (value string, rule string, ok bool) {
	for _, rl := range r {
		m := rl.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			return m[1], rl.Name, true
		}
		return m[0], rl.Name, true
	}
	return "", "", false
}

// FirstInt returns the first captured value parsed as a non-negative integer.
// Values that do not fit into int saturate at math.MaxInt.
func (r Rules) FirstInt(text string) (int, bool) {
	for _, rl := range r {
		m := rl.Pattern.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if errors.Is(err, strconv.ErrRange) {
			return math.MaxInt, true
		}
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}
