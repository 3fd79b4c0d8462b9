package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const epaListingHTML = `<html><body>
<table id="datatable"><tbody>
<tr>
  <td><a href="/enforcement/acme-corp-settlement">Acme Corp</a></td>
  <td>Clean Air Act</td>
  <td>Settlement</td>
  <td>2025-08-14</td>
</tr>
<tr>
  <td><a href="/enforcement/widgets-inc">Widgets Inc</a></td>
  <td>RCRA</td>
  <td>Consent Decree</td>
  <td>2025-08-01</td>
</tr>
<tr><td>malformed row</td></tr>
</tbody></table>
</body></html>`

const epaCaseHTML = `<html><body>
<article>
  <h1>Acme Corp Settlement</h1>
  <p>Acme Corp violated 40 C.F.R. Part 1039 and paid a penalty.</p>
  <div id="comment"><p>Comment boilerplate</p></div>
  <p>Contact us at example</p>
</article>
<div class="box__content">
  <a href="/system/files/decree.pdf">Consent Decree</a>
  <a href="/enforcement/other-page">Not a PDF</a>
</div>
</body></html>`

func epaTestServer(t *testing.T) (*httptest.Server, *EPAAdapter) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(epaEnforcementPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, epaListingHTML)
	})
	mux.HandleFunc("/enforcement/acme-corp-settlement", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, epaCaseHTML)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, NewEPAAdapter(EPAConfig{BaseURL: srv.URL})
}

func TestEPAFetch(t *testing.T) {
	srv, adapter := epaTestServer(t)

	docs, err := adapter.Fetch(context.Background(), FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Fetch() returned %d docs, want 2 (malformed row skipped)", len(docs))
	}

	got := docs[0]
	if got.Title != "EPA Enforcement - Acme Corp" {
		t.Errorf("Title = %q, want %q", got.Title, "EPA Enforcement - Acme Corp")
	}
	if got.Date != "2025-08-14" {
		t.Errorf("Date = %q, want 2025-08-14", got.Date)
	}
	if want := srv.URL + "/enforcement/acme-corp-settlement"; got.URL != want {
		t.Errorf("URL = %q, want %q", got.URL, want)
	}
	if got.Source != EPAName {
		t.Errorf("Source = %q, want %q", got.Source, EPAName)
	}
	if got.Text != "" {
		t.Error("Fetch() should not hydrate body text")
	}
}

func TestEPAFetchSince(t *testing.T) {
	// The live table renders MM/DD/YYYY; the bound is YYYY-MM-DD.
	listing := `<html><body><table id="datatable"><tbody>
<tr><td>Acme Corp</td><td>CAA</td><td>Settlement</td><td>08/14/2025</td></tr>
<tr><td>Widgets Inc</td><td>RCRA</td><td>Decree</td><td>08/01/2025</td></tr>
<tr><td>Mystery Co</td><td>CWA</td><td>Decree</td><td>sometime in August</td></tr>
</tbody></table></body></html>`

	mux := http.NewServeMux()
	mux.HandleFunc(epaEnforcementPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listing)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	adapter := NewEPAAdapter(EPAConfig{BaseURL: srv.URL})

	docs, err := adapter.Fetch(context.Background(), FetchOptions{Since: "2025-08-10"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Fetch(Since) returned %d docs, want 2 (old row dropped, unparseable row kept)", len(docs))
	}
	if docs[0].Date != "2025-08-14" {
		t.Errorf("Date = %q, want normalized 2025-08-14", docs[0].Date)
	}
	if docs[1].Title != "EPA Enforcement - Mystery Co" {
		t.Errorf("docs[1].Title = %q, want the unparseable-date row kept", docs[1].Title)
	}
	if docs[1].Date != "sometime in August" {
		t.Errorf("docs[1].Date = %q, want raw cell preserved", docs[1].Date)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"2025-08-14", "2025-08-14", true},
		{"08/14/2025", "2025-08-14", true},
		{"August 14, 2025", "2025-08-14", true},
		{"14 Aug 2025", "14 Aug 2025", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := normalizeDate(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("normalizeDate(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEPAFetchLimit(t *testing.T) {
	_, adapter := epaTestServer(t)

	docs, err := adapter.Fetch(context.Background(), FetchOptions{Limit: 1})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Fetch(Limit:1) returned %d docs, want 1", len(docs))
	}
}

func TestEPAHydrate(t *testing.T) {
	srv, adapter := epaTestServer(t)

	doc := RawDocument{
		Source: EPAName,
		Title:  "EPA Enforcement - Acme Corp",
		URL:    srv.URL + "/enforcement/acme-corp-settlement",
	}
	if err := adapter.Hydrate(context.Background(), &doc); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	if doc.Text == "" {
		t.Fatal("Hydrate() left Text empty")
	}
	if !strings.Contains(doc.Text, "40 C.F.R. Part 1039") {
		t.Errorf("Text missing article body: %q", doc.Text)
	}
	if strings.Contains(doc.Text, "Comment boilerplate") || strings.Contains(doc.Text, "Contact us") {
		t.Errorf("Text should drop the comment section and everything after it: %q", doc.Text)
	}

	// The PDF link is recorded even though the download failed; only
	// .pdf hrefs count.
	if len(doc.PDFLinks) != 1 {
		t.Fatalf("PDFLinks = %v, want one entry", doc.PDFLinks)
	}
	if want := srv.URL + "/system/files/decree.pdf"; doc.PDFLinks[0] != want {
		t.Errorf("PDFLinks[0] = %q, want %q", doc.PDFLinks[0], want)
	}
}

func TestTextFromContentStream(t *testing.T) {
	stream := `BT /F1 12 Tf (Hello) Tj [(Wo)-10(rld)] TJ ET`
	got := textFromContentStream(stream)
	if got != "Hello World" {
		t.Fatalf("textFromContentStream() = %q, want %q", got, "Hello World")
	}
}
