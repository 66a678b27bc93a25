package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// Candidate is one entry of an ordered pattern list.
type Candidate struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`

	compiled *regexp.Regexp
}

// Candidates is an ordered list of patterns for one field. Evaluation is
// first-match-wins in list order.
type Candidates []Candidate

// Match is the result of evaluating a candidate list.
type Match struct {
	// Candidate is the name of the winning candidate
	Candidate string

	// Groups holds the full match at index 0 followed by the submatches,
	// each trimmed
	Groups []string

	// Start and End are byte offsets of the full match in the input
	Start, End int
}

// Group returns submatch i or "" when it does not exist.
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m.Groups) {
		return ""
	}
	return m.Groups[i]
}

// NewCandidates compiles patterns into an anonymous candidate list. It panics
// on an invalid pattern and is meant for package-level tables.
func NewCandidates(patterns ...string) Candidates {
	c := make(Candidates, len(patterns))
	for i, p := range patterns {
		c[i] = Candidate{Name: fmt.Sprintf("c%d", i), Pattern: p}
	}
	if err := c.Compile(); err != nil {
		panic(err)
	}
	return c
}

// Compile compiles every candidate that has not been compiled yet.
func (c Candidates) Compile() error {
	for i := range c {
		if c[i].compiled != nil {
			continue
		}
		compiled, err := regexp.Compile(c[i].Pattern)
		if err != nil {
			return fmt.Errorf("candidate %d (%s): %w", i, c[i].Name, err)
		}
		c[i].compiled = compiled
	}
	return nil
}

// First returns the match of the first candidate that matches text.
func (c Candidates) First(text string) (Match, bool) {
	if text == "" {
		return Match{}, false
	}
	for _, cand := range c {
		if cand.compiled == nil {
			continue
		}
		loc := cand.compiled.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		return newMatch(cand.Name, text, loc), true
	}
	return Match{}, false
}

// FirstAll returns every match of the first candidate that matches text at
// least once.
func (c Candidates) FirstAll(text string) []Match {
	if text == "" {
		return nil
	}
	for _, cand := range c {
		if cand.compiled == nil {
			continue
		}
		locs := cand.compiled.FindAllStringSubmatchIndex(text, -1)
		if len(locs) == 0 {
			continue
		}
		matches := make([]Match, 0, len(locs))
		for _, loc := range locs {
			matches = append(matches, newMatch(cand.Name, text, loc))
		}
		return matches
	}
	return nil
}

// Each evaluates every candidate independently and returns the first match of
// each one that matched, in list order.
func (c Candidates) Each(text string) []Match {
	if text == "" {
		return nil
	}
	var matches []Match
	for _, cand := range c {
		if cand.compiled == nil {
			continue
		}
		if loc := cand.compiled.FindStringSubmatchIndex(text); loc != nil {
			matches = append(matches, newMatch(cand.Name, text, loc))
		}
	}
	return matches
}

func newMatch(name, text string, loc []int) Match {
	groups := make([]string, len(loc)/2)
	for g := range groups {
		start, end := loc[2*g], loc[2*g+1]
		if start >= 0 && end >= 0 {
			groups[g] = strings.TrimSpace(text[start:end])
		}
	}
	return Match{Candidate: name, Groups: groups, Start: loc[0], End: loc[1]}
}
