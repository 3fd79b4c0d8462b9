package providers

import (
	"context"
	"strings"
	"testing"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{
			name:    "plain object",
			content: `{"title":"test"}`,
			want:    `{"title":"test"}`,
		},
		{
			name:    "code fence",
			content: "```json\n{\"title\":\"test\"}\n```",
			want:    `{"title":"test"}`,
		},
		{
			name:    "fence without language",
			content: "```\n{\"title\":\"test\"}\n```",
			want:    `{"title":"test"}`,
		},
		{
			name:    "surrounding commentary",
			content: "Here is the extraction:\n{\"title\":\"test\"}\nLet me know if you need anything else.",
			want:    `{"title":"test"}`,
		},
		{
			name:    "array",
			content: `[1,2,3]`,
			want:    `[1,2,3]`,
		},
		{
			name:    "empty",
			content: "",
			wantErr: true,
		},
		{
			name:    "no json",
			content: "I could not process this document.",
			wantErr: true,
		},
		{
			name:    "truncated object",
			content: `{"title":"te`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseJSON(%q) expected error, got %s", tt.content, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseJSON(%q) error = %v", tt.content, err)
			}
			if string(got) != tt.want {
				t.Fatalf("ParseJSON(%q) = %s, want %s", tt.content, got, tt.want)
			}
		})
	}
}

func TestMockBackendResponseQueue(t *testing.T) {
	m := NewMockBackend()
	m.Responses = []string{"first", "second"}

	req := &ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}}

	for i, want := range []string{"first", "second", "second"} {
		res, err := m.Chat(context.Background(), req)
		if err != nil {
			t.Fatalf("Chat() call %d error = %v", i+1, err)
		}
		if res.Content != want {
			t.Fatalf("Chat() call %d content = %q, want %q", i+1, res.Content, want)
		}
	}
	if got := m.RequestCount(); got != 3 {
		t.Fatalf("RequestCount() = %d, want 3", got)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("mock", NewMockBackend())

	if !r.Has("mock") {
		t.Fatal("Has(mock) = false, want true")
	}
	if _, err := r.Get("missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("Get(missing) error = %v, want not found", err)
	}
	if names := r.List(); len(names) != 1 || names[0] != "mock" {
		t.Fatalf("List() = %v, want [mock]", names)
	}
}
