// Package vocab provides the run-scoped controlled vocabulary used to
// constrain categorical extraction fields.
//
// A Vocabulary is fetched once at run start and treated as immutable for
// the duration of the run. Every extraction in a run shares the same
// snapshot; re-fetching mid-run is not supported.
package vocab

import "sort"

// Vocabulary is an ordered, immutable set of allowed terms.
type Vocabulary struct {
	terms []string
	set   map[string]struct{}
}

// New creates a Vocabulary from the given terms. Duplicates are removed
// and the original order is preserved.
func New(terms []string) *Vocabulary {
	v := &Vocabulary{
		terms: make([]string, 0, len(terms)),
		set:   make(map[string]struct{}, len(terms)),
	}
	for _, t := range terms {
		if _, ok := v.set[t]; ok {
			continue
		}
		v.set[t] = struct{}{}
		v.terms = append(v.terms, t)
	}
	return v
}

// Contains reports whether term is in the vocabulary. Matching is
// case-sensitive: terms are compared exactly as fetched from the store.
func (v *Vocabulary) Contains(term string) bool {
	_, ok := v.set[term]
	return ok
}

// Terms returns a copy of the terms in their original order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Default returns the built-in environmental issue vocabulary used when
// the taxonomy store is not configured or returns nothing.
func Default() *Vocabulary {
	terms := []string{
		"Automobiles and Trucks",
		"Boats",
		"Chemicals",
		"Construction Equipment",
		"Drinking Water",
		"Hazardous Waste",
		"Oil and Gas",
		"Sewage",
	}
	sort.Strings(terms)
	return New(terms)
}
