package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/fedwatch/fedwatch/internal/emit"
	"github.com/fedwatch/fedwatch/internal/extract"
	"github.com/fedwatch/fedwatch/internal/providers"
	"github.com/fedwatch/fedwatch/internal/source"
)

func digestExtractor(backend *providers.MockBackend) *extract.Extractor {
	return extract.New(extract.Config{Backend: backend})
}

func TestDigestSingleCall(t *testing.T) {
	backend := providers.NewMockBackend()
	backend.Response = `{"aggregate_summary": "<p>One.</p><p>Two.</p><p>Three.</p><p>Four.</p>"}`

	agency := source.Agency{Name: "Environmental Protection Agency"}
	records := []emit.Record{
		{Title: "Rule A", PublicationDate: "2025-08-04", Abstract: "<p>abstract a</p>", ActivistSummary: "summary a"},
		{Title: "Rule B", PublicationDate: "2025-08-18", Abstract: "<p>abstract b</p>", ActivistSummary: "summary b"},
	}

	rec, truncated, err := Digest(context.Background(), digestExtractor(backend), agency, records, nil)
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	if truncated {
		t.Error("truncated = true for small input")
	}
	if got := backend.RequestCount(); got != 1 {
		t.Errorf("backend called %d times, want exactly 1", got)
	}
	want := "Environmental Protection Agency Regulatory Review from August 4, 2025 to August 18, 2025"
	if rec.Title != want {
		t.Errorf("Title = %q, want %q", rec.Title, want)
	}
	if !strings.Contains(rec.Summary, "<p>One.</p>") {
		t.Errorf("Summary = %q", rec.Summary)
	}
	if len(rec.AITags) != 1 || rec.AITags[0] != emit.TagGenerated {
		t.Errorf("AITags = %v, want the machine-generated tag", rec.AITags)
	}

	// All input summaries appear in the single request, HTML stripped.
	reqs := backend.Requests()
	body := reqs[0].Messages[len(reqs[0].Messages)-1].Content
	for _, frag := range []string{"Rule A", "Rule B", "summary a", "summary b", "abstract a"} {
		if !strings.Contains(body, frag) {
			t.Errorf("digest input missing %q", frag)
		}
	}
	if strings.Contains(body, "<p>") {
		t.Error("digest input should have HTML stripped")
	}
}

func TestDigestSingleDateTitle(t *testing.T) {
	backend := providers.NewMockBackend()
	backend.Response = `{"aggregate_summary": "<p>x</p>"}`

	records := []emit.Record{
		{Title: "Rule A", PublicationDate: "2025-08-04", ActivistSummary: "a"},
		{Title: "Rule B", PublicationDate: "2025-08-04", ActivistSummary: "b"},
	}
	rec, _, err := Digest(context.Background(), digestExtractor(backend), source.Agency{Name: "NOAA"}, records, nil)
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	if want := "NOAA Regulatory Review from August 4, 2025"; rec.Title != want {
		t.Errorf("Title = %q, want %q", rec.Title, want)
	}
}

func TestDigestSignalsTruncation(t *testing.T) {
	backend := providers.NewMockBackend()
	backend.Response = `{"aggregate_summary": "<p>x</p>"}`

	records := []emit.Record{{
		Title:           "Rule A",
		PublicationDate: "2025-08-04",
		ActivistSummary: strings.Repeat("word ", maxDigestChars/4),
	}}
	rec, truncated, err := Digest(context.Background(), digestExtractor(backend), source.Agency{Name: "NOAA"}, records, nil)
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	if !truncated {
		t.Error("truncated = false for oversized input")
	}
	if rec.Summary == "" {
		t.Error("truncation must not suppress the digest itself")
	}
}

func TestDigestEmptyRun(t *testing.T) {
	backend := providers.NewMockBackend()
	_, _, err := Digest(context.Background(), digestExtractor(backend), source.Agency{Name: "NOAA"}, nil, nil)
	if err == nil {
		t.Fatal("Digest() expected error for empty run")
	}
	if backend.RequestCount() != 0 {
		t.Error("no backend call expected for empty run")
	}
}

func TestAddParagraphTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already tagged", "<p>a</p>", "<p>a</p>"},
		{"plain text", "a\n\nb", "<p>a</p><p>b</p>"},
		{"single paragraph", "a", "<p>a</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := addParagraphTags(tt.in); got != tt.want {
				t.Errorf("addParagraphTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
