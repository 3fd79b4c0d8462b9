package pipeline

import (
	"context"
	"strings"

	"github.com/fedwatch/fedwatch/internal/emit"
	"github.com/fedwatch/fedwatch/internal/extract"
	"github.com/fedwatch/fedwatch/internal/llmcall"
	"github.com/fedwatch/fedwatch/internal/schemas/enforcement"
	"github.com/fedwatch/fedwatch/internal/source"
	"github.com/fedwatch/fedwatch/internal/vocab"
)

// summaryPreamble is prepended to generated summaries so readers see
// the provenance disclosure before the prose.
const summaryPreamble = `<p class="infobox">This article contains AI-generated summaries.</p>`

// EnforcementProcessor builds the ProcessFunc for EPA enforcement
// documents. The vocabulary is the run's immutable taxonomy snapshot;
// it is never re-fetched mid-run.
func EnforcementProcessor(ex *extract.Extractor, v *vocab.Vocabulary, rec *llmcall.Recorder) ProcessFunc {
	terms := v.Terms()
	schema := enforcement.Schema(terms)

	return func(ctx context.Context, doc *source.RawDocument) (emit.Record, error) {
		rec.SetDocument(doc.Title)

		prompt := enforcement.SystemPrompt(enforcement.NumParagraphs(len(doc.Text)), terms)
		res, err := ex.Extract(ctx, doc.Text, schema, prompt)
		if err != nil {
			return emit.Record{}, err
		}

		var out enforcement.Result
		if err := res.Decode(&out); err != nil {
			return emit.Record{}, err
		}

		laws := enforcement.DedupLaws(out.FederalLaw)
		flattened := enforcement.FlattenLaws(laws)

		record := emit.Record{
			Title:                doc.Title,
			Date:                 doc.Date,
			SourceURL:            doc.URL,
			PDFLinks:             strings.Join(doc.PDFLinks, ","),
			RawText:              doc.Text,
			Summary:              summaryPreamble + "<div>" + out.Summary + "</div>",
			Penalty:              out.Penalty,
			EnvironmentalIssues:  out.EnvironmentalIssues,
			FlattenedFederalLaws: &flattened,
			LLM:                  res.ModelUsed,
			AITags:               []string{emit.TagGenerated},
			Time:                 emit.Now(),
		}
		if len(laws) > 0 {
			record.Laws = &emit.Laws{FederalLaw: laws}
		}
		if out.Penalty != nil || len(laws) > 0 {
			record.AITags = append(record.AITags, emit.TagEntityExtraction)
		}
		return record, nil
	}
}
