package source

import (
	"bytes"
	"context"
	"encoding/json"
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
	FRName    = "fr"
	FRBaseURL = "https://www.federalregister.gov"
)

// frFields are the document fields requested from the listing API.
var frFields = []string{
	"type", "publication_date", "abstract", "agency_names", "citation",
	"effective_on", "document_number", "pdf_url", "body_html_url", "title",
}

// Agency identifies a federal agency on the Federal Register.
type Agency struct {
	Name      string // full name, used in generated titles
	FRName    string // federalregister.gov agency slug
	ShortName string // CLI shorthand
}

// DefaultAgencies returns the built-in agency table.
func DefaultAgencies() []Agency {
	return []Agency{
		{Name: "Department of Transportation", FRName: "transportation-department", ShortName: "dot"},
		{Name: "Environmental Protection Agency", FRName: "environmental-protection-agency", ShortName: "epa"},
		{Name: "Federal Mine Safety and Health Review Commission", FRName: "federal-mine-safety-and-health-review-commission", ShortName: "fmsc"},
		{Name: "Health and Human Services Department", FRName: "health-and-human-services-department", ShortName: "hhs"},
		{Name: "National Highway Traffic Safety Administration", FRName: "national-highway-traffic-safety-administration", ShortName: "nhtsa"},
		{Name: "National Oceanic and Atmospheric Administration", FRName: "national-oceanic-and-atmospheric-administration", ShortName: "noaa"},
		{Name: "U.S. Citizenship and Immigration Services", FRName: "u-s-citizenship-and-immigration-services", ShortName: "uscis"},
	}
}

// LookupAgency finds an agency by short name or full name.
func LookupAgency(agencies []Agency, name string) (Agency, error) {
	for _, a := range agencies {
		if strings.EqualFold(a.ShortName, name) || strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return Agency{}, fmt.Errorf("unknown agency %q", name)
}

// FRAdapter fetches rule and proposed-rule documents for one agency
// from the Federal Register API.
type FRAdapter struct {
	baseURL string
	agency  Agency
	client  *http.Client
	logger  *slog.Logger
}

// FRConfig configures a Federal Register adapter.
type FRConfig struct {
	BaseURL string // default FRBaseURL; overridable for tests
	Agency  Agency
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewFRAdapter creates a Federal Register adapter for one agency.
func NewFRAdapter(cfg FRConfig) *FRAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = FRBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &FRAdapter{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		agency:  cfg.Agency,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

// Name returns the source identifier.
func (a *FRAdapter) Name() string {
	return FRName
}

// Agency returns the agency this adapter fetches for.
func (a *FRAdapter) Agency() Agency {
	return a.agency
}

type frResult struct {
	Abstract        string   `json:"abstract"`
	AgencyNames     []string `json:"agency_names"`
	BodyHTMLURL     string   `json:"body_html_url"`
	Citation        string   `json:"citation"`
	DocumentNumber  string   `json:"document_number"`
	EffectiveOn     string   `json:"effective_on"`
	PDFURL          string   `json:"pdf_url"`
	PublicationDate string   `json:"publication_date"`
	Title           string   `json:"title"`
	Type            string   `json:"type"`
}

type frListing struct {
	Count   int        `json:"count"`
	Results []frResult `json:"results"`
}

// Fetch lists documents published on or after opts.Since. Titles carry
// the Federal Register citation prefix so they key the downstream
// existence check uniquely.
func (a *FRAdapter) Fetch(ctx context.Context, opts FetchOptions) ([]RawDocument, error) {
	listURL := a.listingURL(opts.Since)
	body, err := get(ctx, a.client, listURL)
	if err != nil {
		return nil, err
	}

	var listing frListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	if len(listing.Results) == 0 {
		a.logger.Info("no documents found", "agency", a.agency.ShortName, "since", opts.Since)
		return nil, nil
	}

	docs := make([]RawDocument, 0, len(listing.Results))
	for _, r := range listing.Results {
		if opts.Limit > 0 && len(docs) >= opts.Limit {
			break
		}

		citation := strings.TrimSpace(r.Citation)
		title := strings.TrimSpace(r.Title)
		if citation != "" {
			title = citation + " - " + title
		}

		docs = append(docs, RawDocument{
			Source:         FRName,
			Title:          title,
			Date:           r.PublicationDate,
			URL:            r.BodyHTMLURL,
			BodyURL:        r.BodyHTMLURL,
			Agencies:       r.AgencyNames,
			DocumentNumber: r.DocumentNumber,
			Citation:       citation,
			Abstract:       r.Abstract,
			EffectiveOn:    r.EffectiveOn,
			Type:           r.Type,
			PDFURL:         r.PDFURL,
		})
	}
	return docs, nil
}

// Hydrate fetches the full-text HTML body and reduces it to clean
// article text.
func (a *FRAdapter) Hydrate(ctx context.Context, doc *RawDocument) error {
	if doc.BodyURL == "" {
		return nil
	}

	pause(ctx, fetchDelay)
	body, err := get(ctx, a.client, doc.BodyURL)
	if err != nil {
		return err
	}

	text, err := cleanArticleHTML(body)
	if err != nil {
		return err
	}
	doc.Text = text
	return nil
}

func (a *FRAdapter) listingURL(since string) string {
	q := url.Values{}
	for _, f := range frFields {
		q.Add("fields[]", f)
	}
	if since != "" {
		q.Set("conditions[publication_date][gte]", since)
	}
	q.Add("conditions[agencies][]", a.agency.FRName)
	q.Add("conditions[type][]", "RULE")
	q.Add("conditions[type][]", "PRORULE")
	return a.baseURL + "/api/v1/documents.json?" + q.Encode()
}

var runsOfSpaces = regexp.MustCompile(` {3,}`)

// cleanArticleHTML strips the document-headings block and flattens the
// body HTML to plain text.
func cleanArticleHTML(body []byte) (string, error) {
	page, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article HTML: %w", err)
	}

	page.Find("div.document-headings").Remove()

	text := page.Text()
	replacer := strings.NewReplacer(
		"\n", " ",
		"\u2003", " ", // em space
		"\u2009", " ", // thin space
		"\u200b", "", // zero-width space
	)
	text = replacer.Replace(text)
	return strings.TrimSpace(runsOfSpaces.ReplaceAllString(text, " ")), nil
}

// Verify interface
var _ Adapter = (*FRAdapter)(nil)
