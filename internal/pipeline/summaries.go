package pipeline

import (
	"context"
	"strings"

	"github.com/fedwatch/fedwatch/internal/emit"
	"github.com/fedwatch/fedwatch/internal/extract"
	"github.com/fedwatch/fedwatch/internal/llmcall"
	"github.com/fedwatch/fedwatch/internal/schemas/summary"
	"github.com/fedwatch/fedwatch/internal/source"
)

// SummaryProcessor builds the ProcessFunc for Federal Register rule
// documents: one extraction producing the three audience summaries.
func SummaryProcessor(ex *extract.Extractor, agency source.Agency, rec *llmcall.Recorder) ProcessFunc {
	schema := summary.Schema()
	prompt := summary.SystemPrompt(agency.Name)

	return func(ctx context.Context, doc *source.RawDocument) (emit.Record, error) {
		rec.SetDocument(doc.Title)

		res, err := ex.Extract(ctx, doc.Text, schema, prompt)
		if err != nil {
			return emit.Record{}, err
		}

		var out summary.Result
		if err := res.Decode(&out); err != nil {
			return emit.Record{}, err
		}

		abstract := ""
		if doc.Abstract != "" {
			abstract = "<p>" + doc.Abstract + "</p>" + summaryPreamble
		}

		return emit.Record{
			Title:             doc.Title,
			Abstract:          abstract,
			Citation:          doc.Citation,
			EffectiveOn:       doc.EffectiveOn,
			DocumentNumber:    doc.DocumentNumber,
			PDFURL:            doc.PDFURL,
			BodyHTMLURL:       doc.URL,
			Type:              doc.Type,
			AgencyNames:       strings.Join(doc.Agencies, ","),
			PublicationDate:   doc.Date,
			ArticleText:       doc.Text,
			HighSchoolSummary: out.HighSchoolSummary,
			LobbyistSummary:   out.LobbyistSummary,
			ActivistSummary:   out.ActivistSummary,
			LLM:               res.ModelUsed,
			AITags:            []string{emit.TagGenerated},
			Time:              emit.Now(),
		}, nil
	}
}
