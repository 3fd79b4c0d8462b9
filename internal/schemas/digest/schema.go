// Package digest declares the single-field meta-summary schema used to
// roll a run's summaries into one news-style overview.
package digest

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/fedwatch/fedwatch/internal/extract"
)

// SchemaName identifies this schema in logs and failures.
const SchemaName = "news_digest"

//go:embed system.tmpl
var systemPromptTmpl string

var systemTemplate = template.Must(template.New("system").Parse(systemPromptTmpl))

// Schema builds the aggregate-summary schema. No vocabulary fields;
// the digest reuses the extraction machinery with an empty vocabulary.
func Schema() *extract.Schema {
	return &extract.Schema{
		Name: SchemaName,
		Fields: []extract.Field{
			{
				Name:        "aggregate_summary",
				Type:        extract.TypeString,
				Required:    true,
				Description: "News-style overview of the run's articles as HTML paragraphs",
			},
		},
	}
}

// Result is the typed shape of a validated digest extraction.
type Result struct {
	AggregateSummary string `json:"aggregate_summary"`
}

// SystemPrompt builds the digest system prompt for a run covering
// count articles.
func SystemPrompt(count int) string {
	var buf bytes.Buffer
	data := struct{ Count int }{Count: count}
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return systemPromptTmpl
	}
	return buf.String()
}
