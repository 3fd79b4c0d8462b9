package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fedwatch/fedwatch/internal/normalize"
	"github.com/fedwatch/fedwatch/internal/providers"
	"github.com/fedwatch/fedwatch/internal/vocab"
)

func testSchema() *Schema {
	return &Schema{
		Name: "test",
		Fields: []Field{
			{Name: "title", Type: TypeString, Required: true},
			{Name: "penalty", Type: TypeNumber, Required: true, Normalizers: []string{normalize.NamePenalty}},
			{Name: "notes", Type: TypeString},
		},
	}
}

func testExtractor(m *providers.MockBackend) *Extractor {
	return New(Config{
		Backend:     m,
		Normalizers: normalize.Registry(vocab.Default()),
	})
}

func TestExtract_Success(t *testing.T) {
	m := providers.NewMockBackend()
	m.Response = `{"title":"Consent Decree","penalty":"$1,234.5"}`

	res, err := testExtractor(m).Extract(context.Background(), "document text", testSchema(), "Extract fields.")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Attempts != 1 {
		t.Fatalf("Attempts = %d, want 1", res.Attempts)
	}
	if res.Backend != providers.MockName {
		t.Fatalf("Backend = %q, want %q", res.Backend, providers.MockName)
	}
	if got := res.Fields["penalty"]; got != 1234.50 {
		t.Fatalf("penalty = %v, want 1234.5 (normalizer should coerce)", got)
	}
}

func TestExtract_RetryBound(t *testing.T) {
	m := providers.NewMockBackend()
	m.Response = `{"wrong":"shape"}`

	_, err := testExtractor(m).Extract(context.Background(), "text", testSchema(), "Extract fields.")
	if err == nil {
		t.Fatal("Extract() expected failure for persistently invalid output")
	}

	var ef *ExtractionFailure
	if !errors.As(err, &ef) {
		t.Fatalf("Extract() error = %T, want *ExtractionFailure", err)
	}
	if ef.Attempts != DefaultMaxAttempts {
		t.Fatalf("ExtractionFailure.Attempts = %d, want %d", ef.Attempts, DefaultMaxAttempts)
	}
	if got := m.RequestCount(); got != DefaultMaxAttempts {
		t.Fatalf("backend called %d times, want exactly %d", got, DefaultMaxAttempts)
	}
	if len(ef.Issues) == 0 {
		t.Fatal("ExtractionFailure.Issues empty, want rejection reasons retained")
	}
}

func TestExtract_FeedbackOnRetry(t *testing.T) {
	m := providers.NewMockBackend()
	m.Responses = []string{
		`{"title":"Consent Decree","penalty":"-50"}`,
		`{"title":"Consent Decree","penalty":50}`,
	}

	res, err := testExtractor(m).Extract(context.Background(), "text", testSchema(), "Extract fields.")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Attempts != 2 {
		t.Fatalf("Attempts = %d, want 2", res.Attempts)
	}

	reqs := m.Requests()
	if len(reqs) != 2 {
		t.Fatalf("backend called %d times, want 2", len(reqs))
	}
	second := reqs[1].Messages[len(reqs[1].Messages)-1].Content
	if !strings.Contains(second, "rejected") || !strings.Contains(second, "penalty") {
		t.Fatalf("retry request missing rejection feedback, got: %s", second)
	}
}

func TestExtract_UnknownFieldRejected(t *testing.T) {
	m := providers.NewMockBackend()
	m.Response = `{"title":"x","penalty":1,"invented":"y"}`

	_, err := testExtractor(m).Extract(context.Background(), "text", testSchema(), "Extract fields.")
	var ef *ExtractionFailure
	if !errors.As(err, &ef) {
		t.Fatalf("Extract() error = %v, want *ExtractionFailure for unknown field", err)
	}
}

func TestExtract_MissingRequiredRejected(t *testing.T) {
	m := providers.NewMockBackend()
	m.Response = `{"title":"x"}`

	_, err := testExtractor(m).Extract(context.Background(), "text", testSchema(), "Extract fields.")
	var ef *ExtractionFailure
	if !errors.As(err, &ef) {
		t.Fatalf("Extract() error = %v, want *ExtractionFailure for missing required field", err)
	}
}

func TestExtract_BackendUnavailableAborts(t *testing.T) {
	m := providers.NewMockBackend()
	m.ShouldFail = true

	_, err := testExtractor(m).Extract(context.Background(), "text", testSchema(), "Extract fields.")
	if !errors.Is(err, providers.ErrUnavailable) {
		t.Fatalf("Extract() error = %v, want ErrUnavailable", err)
	}
	if got := m.RequestCount(); got != 1 {
		t.Fatalf("backend called %d times, want 1 (no retries against a dead backend)", got)
	}
}

func TestExtract_VocabularyInInstructions(t *testing.T) {
	m := providers.NewMockBackend()
	m.Response = `{"issues":["Air"]}`

	v := vocab.New([]string{"Air", "Water"})
	schema := &Schema{
		Name: "issues",
		Fields: []Field{{
			Name:        "issues",
			Type:        TypeStringArray,
			Required:    true,
			Vocabulary:  v.Terms(),
			Normalizers: []string{normalize.NameVocabulary},
		}},
	}
	ex := New(Config{Backend: m, Normalizers: normalize.Registry(v)})

	if _, err := ex.Extract(context.Background(), "text", schema, "Tag the document."); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	system := m.Requests()[0].Messages[0].Content
	if !strings.Contains(system, "Air; Water") {
		t.Fatalf("system prompt missing vocabulary terms, got: %s", system)
	}
}

func TestTruncate(t *testing.T) {
	text := strings.Repeat("a", 100)

	got, truncated := Truncate(text, 200)
	if truncated || got != text {
		t.Fatal("Truncate() should pass short text through unchanged")
	}

	got, truncated = Truncate(text, 10)
	if !truncated {
		t.Fatal("Truncate() should report truncation")
	}
	if !strings.HasSuffix(got, "[truncated]") {
		t.Fatalf("Truncate() output missing signal, got %q", got)
	}

	// Deterministic.
	again, _ := Truncate(text, 10)
	if again != got {
		t.Fatal("Truncate() not deterministic")
	}
}
