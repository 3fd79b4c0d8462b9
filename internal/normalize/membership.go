package normalize

import (
	"fmt"

	"github.com/fedwatch/fedwatch/internal/vocab"
)

// Membership validates that every element of values is a member of the
// run vocabulary. Matching is exact and case-sensitive so that accepted
// terms always round-trip to the taxonomy store unchanged. Any element
// outside the vocabulary rejects the whole list; silently dropping terms
// would misrepresent the model's output to the caller.
func Membership(v *vocab.Vocabulary, values []string) ([]string, error) {
	for _, term := range values {
		if !v.Contains(term) {
			return nil, fmt.Errorf("term %q is not in the permitted vocabulary", term)
		}
	}
	return values, nil
}
