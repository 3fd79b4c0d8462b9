// Package normalize provides the pure field normalizers run during
// extraction validation. Each normalizer either rejects a raw value or
// coerces it to canonical form; re-running a normalizer on an
// already-normalized value returns it unchanged.
package normalize

import (
	"fmt"

	"github.com/fedwatch/fedwatch/internal/vocab"
)

// Func is a schema-declared normalizer. It receives the raw field value
// parsed from model output and returns the coerced value or a rejection.
type Func func(value any) (any, error)

// Normalizer names referenced by schema field declarations.
const (
	NameCitation     = "citation"
	NameCitationList = "citation_list"
	NamePenalty      = "penalty"
	NameVocabulary   = "vocabulary"
)

// Registry builds the named normalizer set for a run, binding the
// vocabulary normalizer to the run's immutable vocabulary snapshot.
func Registry(v *vocab.Vocabulary) map[string]Func {
	return map[string]Func{
		NameCitation:     CitationFunc(),
		NameCitationList: CitationListFunc(),
		NamePenalty:      PenaltyFunc(),
		NameVocabulary:   MembershipFunc(v),
	}
}

// CitationFunc adapts Citation to the Func signature.
func CitationFunc() Func {
	return func(value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("citation must be a string, got %T", value)
		}
		return Citation(s)
	}
}

// CitationListFunc normalizes a list of {type, citation} objects,
// canonicalizing each citation in place.
func CitationListFunc() Func {
	return func(value any) (any, error) {
		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("federal law list must be an array, got %T", value)
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			law, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("federal law entry %d must be an object, got %T", i, item)
			}
			raw, ok := law["citation"].(string)
			if !ok {
				return nil, fmt.Errorf("federal law entry %d has no citation string", i)
			}
			canonical, err := Citation(raw)
			if err != nil {
				return nil, fmt.Errorf("federal law entry %d: %w", i, err)
			}
			normalized := make(map[string]any, len(law))
			for k, v := range law {
				normalized[k] = v
			}
			normalized["citation"] = canonical
			out = append(out, normalized)
		}
		return out, nil
	}
}

// PenaltyFunc adapts Penalty to the Func signature.
func PenaltyFunc() Func {
	return func(value any) (any, error) {
		return Penalty(value)
	}
}

// MembershipFunc binds Membership to a vocabulary snapshot.
func MembershipFunc(v *vocab.Vocabulary) Func {
	return func(value any) (any, error) {
		var terms []string
		switch list := value.(type) {
		case []string:
			terms = list
		case []any:
			terms = make([]string, 0, len(list))
			for i, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("vocabulary term %d must be a string, got %T", i, item)
				}
				terms = append(terms, s)
			}
		default:
			return nil, fmt.Errorf("vocabulary field must be a list, got %T", value)
		}
		return Membership(v, terms)
	}
}
