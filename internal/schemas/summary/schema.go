// Package summary declares the multi-audience summary schema used for
// Federal Register rule documents.
package summary

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/fedwatch/fedwatch/internal/extract"
)

// SchemaName identifies this schema in logs and failures.
const SchemaName = "audience_summaries"

//go:embed system.tmpl
var systemPromptTmpl string

var systemTemplate = template.Must(template.New("system").Parse(systemPromptTmpl))

// Schema builds the three-audience summary schema.
func Schema() *extract.Schema {
	return &extract.Schema{
		Name: SchemaName,
		Fields: []extract.Field{
			{
				Name:        "high_school_summary",
				Type:        extract.TypeString,
				Required:    true,
				Description: "Concise summary for high school students",
			},
			{
				Name:        "lobbyist_summary",
				Type:        extract.TypeString,
				Required:    true,
				Description: "Detailed summary for lobbyists",
			},
			{
				Name:        "activist_summary",
				Type:        extract.TypeString,
				Required:    true,
				Description: "Detailed summary for activists",
			},
		},
	}
}

// Result is the typed shape of a validated summary extraction.
type Result struct {
	HighSchoolSummary string `json:"high_school_summary"`
	LobbyistSummary   string `json:"lobbyist_summary"`
	ActivistSummary   string `json:"activist_summary"`
}

// SystemPrompt builds the summary system prompt for one agency.
func SystemPrompt(agencyName string) string {
	var buf bytes.Buffer
	data := struct{ AgencyName string }{AgencyName: agencyName}
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return systemPromptTmpl
	}
	return buf.String()
}
