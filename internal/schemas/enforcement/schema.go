// Package enforcement declares the extraction schema for EPA
// civil-enforcement cases: an expert summary, an optional penalty,
// specific federal-law citations, and environmental-issue tags drawn
// from the run's taxonomy vocabulary.
package enforcement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fedwatch/fedwatch/internal/extract"
	"github.com/fedwatch/fedwatch/internal/normalize"
)

// SchemaName identifies this schema in logs and failures.
const SchemaName = "legal_analysis"

// Schema builds the enforcement extraction schema bound to the run's
// environmental-issues vocabulary.
func Schema(issues []string) *extract.Schema {
	return &extract.Schema{
		Name: SchemaName,
		Fields: []extract.Field{
			{
				Name:        "summary",
				Type:        extract.TypeString,
				Required:    true,
				Description: "Detailed legal expert summary of the case as one-line HTML",
			},
			{
				Name:        "penalty",
				Type:        extract.TypeNumber,
				Description: "Total monetary penalty in USD, 0 if none is explicitly stated",
				Normalizers: []string{normalize.NamePenalty},
			},
			{
				Name:        "federal_law",
				Type:        extract.TypeObjectArray,
				Description: "Specific federal statutes (U.S.C.) and rules (C.F.R.) cited in the document, null if none",
				Normalizers: []string{normalize.NameCitationList},
				ItemFields: []extract.Field{
					{Name: "type", Type: extract.TypeString, Required: true, Enum: []string{"Statute", "Rule"}},
					{Name: "citation", Type: extract.TypeString, Required: true},
				},
			},
			{
				Name:        "environmental_issues",
				Type:        extract.TypeStringArray,
				Description: "Environmental issues the document touches upon, empty if none apply",
				Vocabulary:  issues,
				Normalizers: []string{normalize.NameVocabulary},
			},
		},
	}
}

// Law is one extracted federal-law citation.
type Law struct {
	Type     string `json:"type"`
	Citation string `json:"citation"`
}

// Result is the typed shape of a validated enforcement extraction.
type Result struct {
	Summary             string   `json:"summary"`
	Penalty             *float64 `json:"penalty,omitempty"`
	FederalLaw          []Law    `json:"federal_law,omitempty"`
	EnvironmentalIssues []string `json:"environmental_issues,omitempty"`
}

// DedupLaws removes duplicate citations, keeping first-seen order.
func DedupLaws(laws []Law) []Law {
	if len(laws) == 0 {
		return nil
	}
	seen := make(map[Law]struct{}, len(laws))
	out := make([]Law, 0, len(laws))
	for _, law := range laws {
		if _, ok := seen[law]; ok {
			continue
		}
		seen[law] = struct{}{}
		out = append(out, law)
	}
	return out
}

// FlattenLaws renders laws as an alphabetically sorted comma-separated
// string, "Type - Citation" per entry. Empty input flattens to "";
// the importer expects the field present either way.
func FlattenLaws(laws []Law) string {
	if len(laws) == 0 {
		return ""
	}
	flat := make([]string, len(laws))
	for i, law := range laws {
		flat[i] = fmt.Sprintf("%s - %s", law.Type, law.Citation)
	}
	sort.Strings(flat)
	return strings.Join(flat, ",")
}
