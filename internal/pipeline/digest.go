package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/fedwatch/fedwatch/internal/emit"
	"github.com/fedwatch/fedwatch/internal/extract"
	"github.com/fedwatch/fedwatch/internal/schemas/digest"
	"github.com/fedwatch/fedwatch/internal/source"
)

// maxDigestChars bounds the concatenated summaries fed to the digest
// call.
const maxDigestChars = 48000

var htmlTags = regexp.MustCompile(`<.*?>`)

// Digest rolls a run's summary records into one news-style overview
// record via a single extraction call. The returned truncated flag
// reports that the concatenated input exceeded the context budget and
// was cut; callers surface it, the digest still covers the kept
// prefix.
//
// The digest is advisory, draft-quality prose; its record always
// carries the machine-generated tag.
func Digest(ctx context.Context, ex *extract.Extractor, agency source.Agency, records []emit.Record, logger *slog.Logger) (emit.Record, bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(records) == 0 {
		return emit.Record{}, false, fmt.Errorf("no records to digest")
	}

	var sb strings.Builder
	for _, r := range records {
		fmt.Fprintf(&sb, "Title: %s\nDate: %s\nFederal Register Abstract: %s\nActivist Summary: %s\n\n",
			r.Title, r.PublicationDate, r.Abstract, r.ActivistSummary)
	}
	text := htmlTags.ReplaceAllString(sb.String(), "")

	text, truncated := extract.Truncate(text, maxDigestChars)
	if truncated {
		logger.Warn("digest input truncated", "kept_chars", maxDigestChars)
	}

	res, err := ex.Extract(ctx, text, digest.Schema(), digest.SystemPrompt(len(records)))
	if err != nil {
		return emit.Record{}, truncated, err
	}

	var out digest.Result
	if err := res.Decode(&out); err != nil {
		return emit.Record{}, truncated, err
	}

	return emit.Record{
		Title:   digestTitle(agency, records),
		Summary: addParagraphTags(out.AggregateSummary),
		LLM:     res.ModelUsed,
		AITags:  []string{emit.TagGenerated},
		Time:    emit.Now(),
	}, truncated, nil
}

// digestTitle names the overview after the run's publication-date
// range.
func digestTitle(agency source.Agency, records []emit.Record) string {
	oldest, newest := dateRange(records)
	if oldest == "" {
		return fmt.Sprintf("%s Regulatory Review", agency.Name)
	}
	if oldest == newest {
		return fmt.Sprintf("%s Regulatory Review from %s", agency.Name, formatDate(oldest))
	}
	return fmt.Sprintf("%s Regulatory Review from %s to %s", agency.Name, formatDate(oldest), formatDate(newest))
}

func dateRange(records []emit.Record) (oldest, newest string) {
	for _, r := range records {
		d := r.PublicationDate
		if d == "" {
			continue
		}
		if oldest == "" || d < oldest {
			oldest = d
		}
		if newest == "" || d > newest {
			newest = d
		}
	}
	return oldest, newest
}

func formatDate(d string) string {
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		return d
	}
	return t.Format("January 2, 2006")
}

// addParagraphTags wraps plain text in <p> tags when the model ignored
// the HTML instruction, splitting on blank lines.
func addParagraphTags(text string) string {
	if strings.Contains(text, "<p>") || strings.Contains(text, "</p>") {
		return text
	}
	return "<p>" + strings.ReplaceAll(text, "\n\n", "</p><p>") + "</p>"
}
