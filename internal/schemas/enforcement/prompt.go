package enforcement

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed system.tmpl
var systemPromptTmpl string

var systemTemplate = template.Must(template.New("system").Parse(systemPromptTmpl))

// Summary length scales with how much text there is to analyze.
var (
	textLengthThresholds = []int{6000, 12000, 20000}
	paragraphCounts      = []int{2, 3, 4, 5}
)

// NumParagraphs picks the summary paragraph count for a text length.
func NumParagraphs(textLength int) int {
	for i, threshold := range textLengthThresholds {
		if textLength <= threshold {
			return paragraphCounts[i]
		}
	}
	return paragraphCounts[len(paragraphCounts)-1]
}

// SystemPrompt builds the enforcement-analysis system prompt.
func SystemPrompt(numParagraphs int, issues []string) string {
	var buf bytes.Buffer
	data := struct {
		NumParagraphs int
		Issues        []string
	}{NumParagraphs: numParagraphs, Issues: issues}
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return systemPromptTmpl
	}
	return buf.String()
}
