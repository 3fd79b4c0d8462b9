package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fedwatch/fedwatch/internal/normalize"
	"github.com/fedwatch/fedwatch/internal/providers"
)

// DefaultMaxAttempts bounds the validation retry loop.
const DefaultMaxAttempts = 3

// DefaultMaxDocumentChars bounds how much document text goes into one
// request. PDF-extracted bodies can run far past any model's context
// window.
const DefaultMaxDocumentChars = 48000

// Observer is notified after every backend call, including failed ones.
type Observer func(schema string, attempt int, req *providers.ChatRequest, res *providers.ChatResult, err error)

// Config configures an Extractor.
type Config struct {
	Backend     providers.Backend
	Normalizers map[string]normalize.Func

	Model       string
	Temperature float64
	MaxTokens   int

	MaxAttempts      int // default DefaultMaxAttempts
	MaxDocumentChars int // default DefaultMaxDocumentChars

	Logger   *slog.Logger
	Observer Observer
}

// Extractor drives one extraction call per document: compose request,
// parse, validate, normalize, retry with feedback.
type Extractor struct {
	backend     providers.Backend
	normalizers map[string]normalize.Func

	model       string
	temperature float64
	maxTokens   int

	maxAttempts int
	maxDocChars int

	logger   *slog.Logger
	observer Observer
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.MaxDocumentChars <= 0 {
		cfg.MaxDocumentChars = DefaultMaxDocumentChars
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Extractor{
		backend:     cfg.Backend,
		normalizers: cfg.Normalizers,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		maxAttempts: cfg.MaxAttempts,
		maxDocChars: cfg.MaxDocumentChars,
		logger:      cfg.Logger,
		observer:    cfg.Observer,
	}
}

// Result is a validated extraction, never mutated after acceptance.
type Result struct {
	Fields map[string]any

	Backend   string
	ModelUsed string
	Attempts  int

	// Truncated reports that document text was cut to fit the request.
	Truncated bool

	TotalTokens int
}

// Decode unmarshals the validated fields into a typed struct.
func (r *Result) Decode(v any) error {
	b, err := json.Marshal(r.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode extraction fields: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode extraction fields: %w", err)
	}
	return nil
}

// Extract runs the request/validate/retry loop for one document.
//
// instructions carries the caller's task prompt; the schema's own field
// table is appended to it. Validation rejections from one attempt are
// fed back into the next attempt's messages to bias correction. A
// providers.ErrUnavailable from the backend aborts immediately so the
// caller can stop the run instead of burning the bound per document.
func (e *Extractor) Extract(ctx context.Context, text string, schema *Schema, instructions string) (*Result, error) {
	compiled, err := e.compile(schema)
	if err != nil {
		return nil, err
	}

	docText, truncated := Truncate(text, e.maxDocChars)
	if truncated {
		e.logger.Warn("document text truncated for extraction",
			"schema", schema.Name,
			"kept_chars", e.maxDocChars,
			"total_chars", len(text))
	}

	system := strings.TrimSpace(instructions + "\n\n" + schema.Instructions())
	base := []providers.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: docText},
	}

	var lastIssues []FieldIssue
	var lastOutput string

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		messages := base
		if len(lastIssues) > 0 {
			messages = append(append([]providers.Message{}, base...), providers.Message{
				Role:    "user",
				Content: rejectionFeedback(lastOutput, lastIssues),
			})
		}

		req := &providers.ChatRequest{
			Messages:    messages,
			Model:       e.model,
			Temperature: e.temperature,
			MaxTokens:   e.maxTokens,
		}

		res, err := e.backend.Chat(ctx, req)
		if e.observer != nil {
			e.observer(schema.Name, attempt, req, res, err)
		}
		if err != nil {
			if errors.Is(err, providers.ErrUnavailable) || ctx.Err() != nil {
				return nil, err
			}
			lastIssues = []FieldIssue{{Reason: fmt.Sprintf("backend call failed: %v", err)}}
			lastOutput = ""
			e.logger.Warn("extraction attempt failed",
				"schema", schema.Name, "attempt", attempt, "error", err)
			continue
		}
		lastOutput = res.Content

		fields, issues := e.validate(compiled, schema, res.Content)
		if len(issues) > 0 {
			lastIssues = issues
			e.logger.Warn("extraction attempt rejected",
				"schema", schema.Name, "attempt", attempt, "issues", len(issues))
			continue
		}

		return &Result{
			Fields:      fields,
			Backend:     e.backend.Name(),
			ModelUsed:   res.ModelUsed,
			Attempts:    attempt,
			Truncated:   truncated,
			TotalTokens: res.TotalTokens,
		}, nil
	}

	return nil, &ExtractionFailure{
		Schema:   schema.Name,
		Attempts: e.maxAttempts,
		Issues:   lastIssues,
	}
}

// validate parses model output and runs schema validation plus the
// schema-declared normalizers. Coerced values replace raw ones in the
// returned field map.
func (e *Extractor) validate(compiled *jsonschema.Schema, schema *Schema, content string) (map[string]any, []FieldIssue) {
	parsed, err := providers.ParseJSON(content)
	if err != nil {
		return nil, []FieldIssue{{Reason: fmt.Sprintf("response was not valid JSON: %v", err)}}
	}

	var doc any
	if err := json.Unmarshal(parsed, &doc); err != nil {
		return nil, []FieldIssue{{Reason: fmt.Sprintf("failed to decode response: %v", err)}}
	}

	if err := compiled.Validate(doc); err != nil {
		return nil, []FieldIssue{{Reason: fmt.Sprintf("response does not match schema: %v", err)}}
	}

	fields, ok := doc.(map[string]any)
	if !ok {
		return nil, []FieldIssue{{Reason: "response was not a JSON object"}}
	}

	var issues []FieldIssue
	for _, f := range schema.Fields {
		value, present := fields[f.Name]
		if !present {
			continue
		}
		for _, name := range f.Normalizers {
			fn, ok := e.normalizers[name]
			if !ok {
				issues = append(issues, FieldIssue{Field: f.Name, Reason: fmt.Sprintf("unknown normalizer %q", name)})
				break
			}
			value, err = fn(value)
			if err != nil {
				issues = append(issues, FieldIssue{Field: f.Name, Reason: err.Error()})
				break
			}
		}
		fields[f.Name] = value
	}
	if len(issues) > 0 {
		return nil, issues
	}

	return fields, nil
}

func (e *Extractor) compile(schema *Schema) (*jsonschema.Schema, error) {
	raw, err := schema.JSONSchema()
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to load schema %q: %w", schema.Name, err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %q: %w", schema.Name, err)
	}
	return compiled, nil
}

// rejectionFeedback renders the previous attempt's rejections for the
// next request.
func rejectionFeedback(lastOutput string, issues []FieldIssue) string {
	var sb strings.Builder
	sb.WriteString("Your previous response was rejected:\n")
	for _, issue := range issues {
		fmt.Fprintf(&sb, "- %s\n", issue)
	}
	if lastOutput != "" {
		out := lastOutput
		if len(out) > 12000 {
			out = out[:12000] + "\n...[truncated]"
		}
		sb.WriteString("\nPrevious response:\n")
		sb.WriteString(out)
		sb.WriteString("\n")
	}
	sb.WriteString("\nCorrect these problems and return the complete JSON object again.")
	return sb.String()
}

// Truncate cuts text to at most max bytes on a rune boundary and
// reports whether anything was dropped. Deterministic: the same input
// always keeps the same prefix.
func Truncate(text string, max int) (string, bool) {
	if max <= 0 || len(text) <= max {
		return text, false
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max] + "\n...[truncated]", true
}
