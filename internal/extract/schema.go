// Package extract drives schema-constrained structured extraction
// against a model backend.
//
// The schema is data, not code: a table of field descriptors (name,
// type, constraint, normalizer) consumed uniformly by the Extractor, so
// the same retry/validation engine serves every document schema in the
// system. Validation happens here, post hoc, because structured-output
// guarantees vary in strength across providers and cannot be trusted at
// the backend boundary.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Field types understood by the schema renderer.
const (
	TypeString      = "string"
	TypeNumber      = "number"
	TypeStringArray = "string_array"
	TypeObjectArray = "object_array"
)

// Field describes one named output field.
type Field struct {
	Name        string
	Type        string
	Required    bool
	Description string

	// Enum restricts a string field to a fixed set of values, enforced
	// during JSON Schema validation.
	Enum []string

	// Vocabulary lists allowed terms for a dynamic-enum field. Rendered
	// into the instructions only; membership is enforced by the field's
	// normalizer so rejections surface as normalizer rejections with
	// the offending term named.
	Vocabulary []string

	// Normalizers names the normalize.Func entries to run, in order,
	// against the extracted value.
	Normalizers []string

	// ItemFields describes the object shape for object_array fields.
	ItemFields []Field
}

// Schema is an ordered set of fields extracted together from one
// document.
type Schema struct {
	Name   string
	Fields []Field
}

// JSONSchema renders the schema as a JSON Schema document for
// validation. Unknown fields are a hard failure, not a warning.
func (s *Schema) JSONSchema() (json.RawMessage, error) {
	doc := map[string]any{
		"type":                 "object",
		"properties":           propertiesFor(s.Fields),
		"additionalProperties": false,
	}
	if required := requiredFor(s.Fields); len(required) > 0 {
		doc["required"] = required
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render schema %q: %w", s.Name, err)
	}
	return b, nil
}

func propertiesFor(fields []Field) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		var prop map[string]any
		switch f.Type {
		case TypeNumber:
			// Penalty-style amounts may arrive as "$1,234.50"; the
			// normalizer coerces, so the schema admits both shapes.
			prop = map[string]any{"type": []string{"number", "string"}}
		case TypeStringArray:
			prop = map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			}
		case TypeObjectArray:
			items := map[string]any{
				"type":                 "object",
				"properties":           propertiesFor(f.ItemFields),
				"additionalProperties": false,
			}
			if required := requiredFor(f.ItemFields); len(required) > 0 {
				items["required"] = required
			}
			prop = map[string]any{
				"type":  "array",
				"items": items,
			}
		default:
			prop = map[string]any{"type": "string"}
		}
		if len(f.Enum) > 0 {
			prop["enum"] = f.Enum
		}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		props[f.Name] = prop
	}
	return props
}

func requiredFor(fields []Field) []string {
	var required []string
	for _, f := range fields {
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return required
}

// Instructions renders the field table as explicit prompt instructions,
// including any dynamic vocabulary the model must choose from
// exclusively.
func (s *Schema) Instructions() string {
	var sb strings.Builder
	sb.WriteString("Return ONLY a JSON object (no markdown, no commentary) with exactly these fields:\n")
	writeFieldInstructions(&sb, s.Fields, "")
	sb.WriteString("\nDo not include any field not listed above. Omit optional fields you cannot determine; never invent values.")
	return sb.String()
}

func writeFieldInstructions(sb *strings.Builder, fields []Field, indent string) {
	for _, f := range fields {
		req := "optional"
		if f.Required {
			req = "required"
		}
		fmt.Fprintf(sb, "%s- %q (%s, %s)", indent, f.Name, typeLabel(f.Type), req)
		if f.Description != "" {
			fmt.Fprintf(sb, ": %s", f.Description)
		}
		sb.WriteString("\n")
		if len(f.Enum) > 0 {
			fmt.Fprintf(sb, "%s  Must be one of: %s\n", indent, strings.Join(f.Enum, ", "))
		}
		if len(f.Vocabulary) > 0 {
			fmt.Fprintf(sb, "%s  Choose values exclusively from this list, verbatim: %s\n", indent, strings.Join(f.Vocabulary, "; "))
		}
		if len(f.ItemFields) > 0 {
			fmt.Fprintf(sb, "%s  Each element is an object with:\n", indent)
			writeFieldInstructions(sb, f.ItemFields, indent+"  ")
		}
	}
}

func typeLabel(t string) string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeStringArray:
		return "array of strings"
	case TypeObjectArray:
		return "array of objects"
	default:
		return "string"
	}
}
