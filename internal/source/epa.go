package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	EPAName            = "epa"
	EPABaseURL         = "https://www.epa.gov"
	epaEnforcementPath = "/enforcement/civil-and-cleanup-enforcement-cases-and-settlements"
)

var multiWhitespace = regexp.MustCompile(`\s+`)

// EPAAdapter scrapes civil-enforcement cases from the EPA enforcement
// page. One listing page only; no pagination.
type EPAAdapter struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// EPAConfig configures the EPA adapter.
type EPAConfig struct {
	BaseURL string // default EPABaseURL; overridable for tests
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewEPAAdapter creates an EPA enforcement-page adapter.
func NewEPAAdapter(cfg EPAConfig) *EPAAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = EPABaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &EPAAdapter{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

// Name returns the source identifier.
func (a *EPAAdapter) Name() string {
	return EPAName
}

// Fetch lists enforcement cases from the results table. Rows without
// enough columns are skipped, not fatal; the site owns the markup.
func (a *EPAAdapter) Fetch(ctx context.Context, opts FetchOptions) ([]RawDocument, error) {
	pageURL := a.baseURL + epaEnforcementPath
	body, err := get(ctx, a.client, pageURL)
	if err != nil {
		return nil, err
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse enforcement page: %w", err)
	}

	var docs []RawDocument
	page.Find("table#datatable tbody tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if opts.Limit > 0 && len(docs) >= opts.Limit {
			return false
		}

		tds := row.Find("td")
		if tds.Length() < 4 {
			a.logger.Warn("skipping enforcement row with too few columns", "row", i+1)
			return true
		}

		respondent := tds.Eq(0)
		date, dateOK := normalizeDate(strings.TrimSpace(tds.Eq(3).Text()))
		doc := RawDocument{
			Source: EPAName,
			Title:  "EPA Enforcement - " + strings.TrimSpace(respondent.Text()),
			Date:   date,
		}
		if href, ok := respondent.Find("a").Attr("href"); ok {
			doc.URL = a.absolute(href)
		}
		if opts.Since != "" {
			// The bound only applies to dates we could parse; a row with
			// an unrecognized date cell is kept rather than silently
			// dropped.
			if dateOK && date < opts.Since {
				return true
			}
			if !dateOK && date != "" {
				a.logger.Warn("unrecognized date cell, keeping row despite date bound",
					"title", doc.Title, "date", date)
			}
		}

		docs = append(docs, doc)
		return true
	})

	if len(docs) == 0 {
		a.logger.Warn("no enforcement rows found", "url", pageURL)
	}
	return docs, nil
}

// Hydrate scrapes the case page body and any linked enforcement PDFs.
// The comment and contact sections at the bottom of the article are
// boilerplate and are dropped along with everything after them.
func (a *EPAAdapter) Hydrate(ctx context.Context, doc *RawDocument) error {
	if doc.URL == "" {
		return nil
	}

	body, err := get(ctx, a.client, doc.URL)
	if err != nil {
		return err
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to parse case page: %w", err)
	}

	articleText := a.articleText(page)

	var pdfTexts []string
	page.Find("div.box__content a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !strings.HasSuffix(strings.ToLower(href), ".pdf") {
			return
		}
		pdfURL := a.absolute(href)
		doc.PDFLinks = append(doc.PDFLinks, pdfURL)

		text, err := a.pdfText(ctx, pdfURL)
		if err != nil {
			a.logger.Error("failed to extract PDF text", "url", pdfURL, "error", err)
		} else if text != "" {
			pdfTexts = append(pdfTexts, text)
		}
		pause(ctx, fetchDelay)
	})

	doc.Text = strings.TrimSpace(articleText + " " + strings.Join(pdfTexts, " --- "))
	return nil
}

func (a *EPAAdapter) articleText(page *goquery.Document) string {
	article := page.Find("article").First()
	if article.Length() == 0 {
		return ""
	}

	for _, id := range []string{"#comment", "#contact"} {
		if cut := article.Find(id).First(); cut.Length() > 0 {
			cut.NextAll().Remove()
			cut.Remove()
			break
		}
	}

	return multiWhitespace.ReplaceAllString(strings.TrimSpace(article.Text()), " ")
}

func (a *EPAAdapter) pdfText(ctx context.Context, pdfURL string) (string, error) {
	a.logger.Info("downloading PDF", "url", pdfURL)
	data, err := get(ctx, a.client, pdfURL)
	if err != nil {
		return "", err
	}
	return ExtractPDFText(data)
}

// epaDateLayouts are the layouts the enforcement table has been seen
// rendering its date column in.
var epaDateLayouts = []string{"2006-01-02", "01/02/2006", "January 2, 2006"}

// normalizeDate converts a scraped date cell to YYYY-MM-DD so date
// bounds compare correctly. Unrecognized layouts come back unchanged
// with ok false.
func normalizeDate(s string) (string, bool) {
	for _, layout := range epaDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return s, false
}

func (a *EPAAdapter) absolute(href string) string {
	u, err := url.Parse(href)
	if err != nil || u.IsAbs() {
		return href
	}
	return a.baseURL + href
}

// Verify interface
var _ Adapter = (*EPAAdapter)(nil)
