// Package directory provides a normalized lookup of known people by name.
//
// The index supports two match modes: exact full-name match and first-name
// match. First-name matches are ambiguous by construction (two people can
// share a first name), so tie-break behavior is an explicit policy rather
// than an accident of load order.
package directory

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Person is a team member from the people directory. Immutable once loaded.
type Person struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Role  string `json:"role" yaml:"role"`
}

// AmbiguityPolicy controls how first-name ties are resolved.
type AmbiguityPolicy string

const (
	// AmbiguityFirstMatch resolves a tied first name to the entry that
	// appears first in directory load order. Fragile, kept for parity with
	// systems that relied on insertion order.
	AmbiguityFirstMatch AmbiguityPolicy = "first-match"

	// AmbiguityReject refuses to resolve a tied first name, deferring the
	// item to oracle resolution. This is the default.
	AmbiguityReject AmbiguityPolicy = "reject"
)

// pronounPatterns strips pronoun suffixes like "(she/her)" that meeting
// platforms append to display names.
var pronounPatterns = regexp.MustCompile(`\s*\((?:she|he|they)(?:/(?:her|him|them|they|she|he))*\)\s*$`)

// Normalize cleans a name for matching: pronoun suffix stripped, surrounding
// whitespace trimmed, Unicode case folded.
func Normalize(name string) string {
	name = pronounPatterns.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	return cases.Fold().String(name)
}

// firstToken returns the first whitespace-delimited token of name.
func firstToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Index is a normalized lookup over a fixed set of people.
// Build once with NewIndex; safe for concurrent reads.
type Index struct {
	people  []Person
	byFull  map[string]int
	byFirst map[string][]int
	policy  AmbiguityPolicy
}

// NewIndex builds an index over people. Order is preserved and meaningful
// only under AmbiguityFirstMatch.
func NewIndex(people []Person, policy AmbiguityPolicy) *Index {
	if policy == "" {
		policy = AmbiguityReject
	}
	ix := &Index{
		people:  make([]Person, len(people)),
		byFull:  make(map[string]int, len(people)),
		byFirst: make(map[string][]int, len(people)),
		policy:  policy,
	}
	copy(ix.people, people)

	for i, p := range ix.people {
		full := Normalize(p.Name)
		if _, exists := ix.byFull[full]; !exists {
			ix.byFull[full] = i
		}
		first := firstToken(full)
		if first != "" {
			ix.byFirst[first] = append(ix.byFirst[first], i)
		}
	}
	return ix
}

// Policy returns the configured ambiguity policy.
func (ix *Index) Policy() AmbiguityPolicy {
	return ix.policy
}

// Len returns the number of people in the directory.
func (ix *Index) Len() int {
	return len(ix.people)
}

// People returns the directory entries in load order.
func (ix *Index) People() []Person {
	out := make([]Person, len(ix.people))
	copy(out, ix.people)
	return out
}

// LookupExact resolves a free-text name to a directory person. It tries the
// full normalized name first, then falls back to a first-name match. A tied
// first name is resolved according to the ambiguity policy. No substring
// matching beyond this; unresolvable names are the oracle's problem.
func (ix *Index) LookupExact(name string) (Person, bool) {
	norm := Normalize(name)
	if norm == "" {
		return Person{}, false
	}

	if i, ok := ix.byFull[norm]; ok {
		return ix.people[i], true
	}

	candidates := ix.byFirst[norm]
	switch {
	case len(candidates) == 1:
		return ix.people[candidates[0]], true
	case len(candidates) > 1 && ix.policy == AmbiguityFirstMatch:
		return ix.people[candidates[0]], true
	}
	return Person{}, false
}

// Get resolves a full directory name only, with no first-name fallback.
// Used to validate names returned by the oracle against the directory.
func (ix *Index) Get(fullName string) (Person, bool) {
	if i, ok := ix.byFull[Normalize(fullName)]; ok {
		return ix.people[i], true
	}
	return Person{}, false
}
