package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fedwatch/fedwatch/internal/schemas/enforcement"
)

func TestWrite(t *testing.T) {
	penalty := 47500.0
	flattened := "Rule - 40 C.F.R. § 1068.101"
	records := []Record{
		{
			Title:   "EPA Enforcement - Acme Corp",
			Summary: "<p>Case summary.</p>",
			Penalty: &penalty,
			Laws: &Laws{FederalLaw: []enforcement.Law{
				{Type: "Rule", Citation: "40 C.F.R. § 1068.101"},
			}},
			FlattenedFederalLaws: &flattened,
			AITags:               []string{TagGenerated, TagEntityExtraction},
		},
	}

	var buf bytes.Buffer
	if err := Write(&buf, records); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"documents": [`) {
		t.Fatalf("output missing documents array:\n%s", out)
	}
	if !strings.Contains(out, "<p>Case summary.</p>") {
		t.Fatalf("HTML should not be escaped:\n%s", out)
	}

	var decoded struct {
		Documents []map[string]any `json:"documents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	doc := decoded.Documents[0]
	if doc["penalty"] != 47500.0 {
		t.Errorf("penalty = %v", doc["penalty"])
	}
	if _, present := doc["abstract"]; present {
		t.Error("empty optional fields must be omitted")
	}
}

func TestWriteEmptyFlattenedLawsPresent(t *testing.T) {
	empty := ""
	var buf bytes.Buffer
	if err := Write(&buf, []Record{{Title: "x", FlattenedFederalLaws: &empty}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded struct {
		Documents []map[string]any `json:"documents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	v, present := decoded.Documents[0]["flattened_federal_laws"]
	if !present || v != "" {
		t.Fatalf("flattened_federal_laws = %v (present=%v), want present empty string", v, present)
	}
}

func TestWriteNoRecords(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"documents": []`) {
		t.Fatalf("empty run should emit an empty array:\n%s", buf.String())
	}
}

func TestWriteDigest(t *testing.T) {
	var buf bytes.Buffer
	record := Record{
		Title:   "Environmental Protection Agency Regulatory Review from August 14, 2025",
		Summary: "<p>Overview.</p>",
		AITags:  []string{TagGenerated},
	}
	if err := WriteDigest(&buf, record); err != nil {
		t.Fatalf("WriteDigest() error = %v", err)
	}

	var decoded struct {
		Documents map[string]any `json:"documents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Documents["title"] == "" {
		t.Fatal("digest document missing title")
	}
}
