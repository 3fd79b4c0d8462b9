// Package emit writes accepted documents as JSON for the downstream
// content importer. Field names are a contract with the importer and
// must stay stable document-to-document within a run.
package emit

import (
	"time"

	"github.com/fedwatch/fedwatch/internal/schemas/enforcement"
)

// TimeFormat is the run-timestamp layout the importer expects.
const TimeFormat = "Mon, 02 Jan 2006 15:04:05"

// TagGenerated labels machine-generated prose.
const TagGenerated = "AI-Generated Text"

// TagEntityExtraction labels machine-extracted entities (penalties,
// citations).
const TagEntityExtraction = "AI-Generated Entity Extraction"

// Laws nests the structured citation list under the importer's "laws"
// key.
type Laws struct {
	FederalLaw []enforcement.Law `json:"federal_law"`
}

// Record is one accepted document, the union of source fields and
// extraction fields. Unused fields are omitted so enforcement and
// Federal Register runs each emit their own stable shape.
type Record struct {
	Title     string `json:"title"`
	Date      string `json:"date,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	PDFLinks  string `json:"pdf_links,omitempty"`
	RawText   string `json:"raw_text,omitempty"`

	// Federal Register metadata.
	Abstract        string `json:"abstract,omitempty"`
	Citation        string `json:"citation,omitempty"`
	EffectiveOn     string `json:"effective_on,omitempty"`
	DocumentNumber  string `json:"document_number,omitempty"`
	PDFURL          string `json:"pdf_url,omitempty"`
	BodyHTMLURL     string `json:"body_html_url,omitempty"`
	Type            string `json:"type,omitempty"`
	AgencyNames     string `json:"agency_names,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`
	ArticleText     string `json:"article_text,omitempty"`

	// Model-generated fields.
	Summary             string   `json:"summary,omitempty"`
	HighSchoolSummary   string   `json:"high_school_summary,omitempty"`
	LobbyistSummary     string   `json:"lobbyist_summary,omitempty"`
	ActivistSummary     string   `json:"activist_summary,omitempty"`
	Penalty             *float64 `json:"penalty,omitempty"`
	EnvironmentalIssues []string `json:"environmental_issues,omitempty"`
	Laws                *Laws    `json:"laws,omitempty"`

	// FlattenedFederalLaws is a pointer so enforcement runs emit ""
	// when no laws were found while Federal Register runs omit the
	// field entirely.
	FlattenedFederalLaws *string `json:"flattened_federal_laws,omitempty"`

	// Run metadata.
	LLM    string   `json:"llm,omitempty"`
	AITags []string `json:"ai_tags,omitempty"`
	Time   string   `json:"time,omitempty"`
}

// Now renders the current time in the importer's layout.
func Now() string {
	return time.Now().Format(TimeFormat)
}
