package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type documentsFile struct {
	Documents []Record `json:"documents"`
}

type digestFile struct {
	Documents Record `json:"documents"`
}

// Write encodes records as {"documents": [...]} with two-space indent.
// HTML in summary fields is written verbatim, not escaped.
func Write(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	return encode(w, documentsFile{Documents: records})
}

// WriteFile writes records to path, creating or truncating it.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := Write(f, records); err != nil {
		return err
	}
	return f.Close()
}

// WriteDigest encodes a single digest record as {"documents": {...}},
// the shape the importer expects for the run overview.
func WriteDigest(w io.Writer, record Record) error {
	return encode(w, digestFile{Documents: record})
}

// WriteDigestFile writes the digest record to path.
func WriteDigestFile(path string, record Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create digest file: %w", err)
	}
	defer f.Close()

	if err := WriteDigest(f, record); err != nil {
		return err
	}
	return f.Close()
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode documents: %w", err)
	}
	return nil
}
