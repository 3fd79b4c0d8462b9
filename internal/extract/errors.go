package extract

import (
	"fmt"
	"strings"
)

// FieldIssue records one rejection during validation, retained for
// operator visibility after a document is skipped.
type FieldIssue struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

func (i FieldIssue) String() string {
	if i.Field == "" {
		return i.Reason
	}
	return fmt.Sprintf("%s: %s", i.Field, i.Reason)
}

// ExtractionFailure is the terminal error after the retry bound is
// exhausted. Callers skip the document and must not emit a partial
// record.
type ExtractionFailure struct {
	Schema   string
	Attempts int
	Issues   []FieldIssue
}

func (e *ExtractionFailure) Error() string {
	reasons := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		reasons[i] = issue.String()
	}
	return fmt.Sprintf("extraction failed for schema %q after %d attempts: %s",
		e.Schema, e.Attempts, strings.Join(reasons, "; "))
}
