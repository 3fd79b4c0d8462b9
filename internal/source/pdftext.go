package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var (
	tjOperator  = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*Tj`)
	tjArray     = regexp.MustCompile(`\[((?:[^\[\]])*)\]\s*TJ`)
	tjArrayText = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)

	dotRuns        = regexp.MustCompile(`\.{4,}`)
	underscoreRuns = regexp.MustCompile(`_{3,}`)
)

// ExtractPDFText pulls the text shown by a PDF's content streams.
// Enforcement PDFs are machine-generated consent decrees and press
// releases, so plain text operators cover them; scanned image PDFs
// yield an empty string rather than an error.
func ExtractPDFText(data []byte) (string, error) {
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}
	if pages == 0 {
		return "", nil
	}

	tmpDir, err := os.MkdirTemp("", "fedwatch-pdf-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	inFile := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(inFile, data, 0o600); err != nil {
		return "", err
	}

	outDir := filepath.Join(tmpDir, "content")
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return "", err
	}
	if err := api.ExtractContentFile(inFile, outDir, nil, nil); err != nil {
		return "", fmt.Errorf("failed to extract PDF content: %w", err)
	}

	streams, err := filepath.Glob(filepath.Join(outDir, "*"))
	if err != nil {
		return "", err
	}

	var parts []string
	for _, stream := range streams {
		content, err := os.ReadFile(stream)
		if err != nil {
			continue
		}
		if text := textFromContentStream(string(content)); text != "" {
			parts = append(parts, text)
		}
	}

	text := strings.Join(parts, " ")
	text = multiWhitespace.ReplaceAllString(text, " ")
	text = dotRuns.ReplaceAllString(text, "...")
	text = underscoreRuns.ReplaceAllString(text, "")
	return strings.TrimSpace(text), nil
}

// textFromContentStream collects string arguments of Tj and TJ text
// operators.
func textFromContentStream(content string) string {
	var sb strings.Builder

	for _, m := range tjOperator.FindAllStringSubmatch(content, -1) {
		sb.WriteString(unescapePDFString(m[1]))
		sb.WriteString(" ")
	}
	for _, arr := range tjArray.FindAllStringSubmatch(content, -1) {
		for _, m := range tjArrayText.FindAllStringSubmatch(arr[1], -1) {
			sb.WriteString(unescapePDFString(m[1]))
		}
		sb.WriteString(" ")
	}

	return strings.TrimSpace(sb.String())
}

func unescapePDFString(s string) string {
	replacer := strings.NewReplacer(
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
		`\n`, "\n",
		`\r`, "",
		`\t`, " ",
	)
	return replacer.Replace(s)
}
