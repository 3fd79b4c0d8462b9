// Package source fetches candidate documents from external sites.
//
// Adapters split listing from hydration: Fetch returns lightweight
// documents (title, date, URL) from a single request, and Hydrate
// pulls the body text and attachments for one document. The caller
// runs its existence check between the two, so already-imported
// documents never cost a detail fetch.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// fetchDelay spaces successive requests to the same site.
const fetchDelay = time.Second

// RawDocument is one candidate document as yielded by a source.
// Immutable once hydrated; consumed exactly once by the extraction
// pipeline.
type RawDocument struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	Date   string `json:"date"` // publication date, YYYY-MM-DD
	URL    string `json:"url"`

	// Text is the document body used for extraction. Empty until
	// Hydrate runs.
	Text string `json:"-"`

	Agencies []string `json:"agencies,omitempty"`
	PDFLinks []string `json:"pdf_links,omitempty"`

	// Federal Register metadata. Empty for scraped sources.
	DocumentNumber string `json:"document_number,omitempty"`
	Citation       string `json:"citation,omitempty"`
	Abstract       string `json:"abstract,omitempty"`
	EffectiveOn    string `json:"effective_on,omitempty"`
	Type           string `json:"type,omitempty"`
	PDFURL         string `json:"pdf_url,omitempty"`
	BodyURL        string `json:"-"`
}

// FetchOptions filter a listing fetch.
type FetchOptions struct {
	// Limit caps the number of documents returned. Zero means no cap.
	Limit int

	// Since is a publication-date lower bound (YYYY-MM-DD). Empty
	// means no bound. Adapters whose listing endpoint filters
	// server-side pass it through; others filter locally.
	Since string
}

// Adapter is a document source.
type Adapter interface {
	Name() string

	// Fetch lists candidate documents from a single results page or
	// API call. Returned documents are not yet hydrated.
	Fetch(ctx context.Context, opts FetchOptions) ([]RawDocument, error)

	// Hydrate fills in the document body text and attachments.
	Hydrate(ctx context.Context, doc *RawDocument) error
}

// FetchError wraps a failure to retrieve a URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// get retrieves a URL with bounded retries on transport and server
// errors.
func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", userAgent)

			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return fmt.Errorf("status %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("status %d", resp.StatusCode))
			}

			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}

// pause sleeps between requests to the same site, returning early on
// cancellation.
func pause(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
