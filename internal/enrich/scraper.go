// Package enrich scrapes broker websites for contact data: email, phone,
// and a contact person. Extraction runs tiered strategies per field, most
// reliable source first.
package enrich

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/broker-finder/internal/model"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	defaultMaxBody   = 2 << 20
)

// excludedDomains are price comparison portals and social networks whose
// pages never yield broker contact data. Subdomains are excluded too.
var excludedDomains = []string{
	"check24.de",
	"verivox.de",
	"tarifcheck.de",
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"youtube.com",
	"linkedin.com",
	"xing.com",
}

// Scraper fetches broker websites and extracts contact data.
type Scraper struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// Option configures the scraper.
type Option func(*Scraper)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Scraper) {
		s.client = hc
	}
}

// WithUserAgent overrides the User-Agent header sent with fetches.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		s.userAgent = ua
	}
}

// WithMaxBodyBytes caps how much of a page body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Scraper) {
		s.maxBody = n
	}
}

// NewScraper creates a website scraper.
func NewScraper(opts ...Option) *Scraper {
	s := &Scraper{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: defaultUserAgent,
		maxBody:   defaultMaxBody,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enrich fetches the website and extracts contact fields. Every failure
// mode, from an unusable URL to a fetch or parse error, degrades to the
// all-unavailable result; enrichment never aborts a search.
func (s *Scraper) Enrich(ctx context.Context, rawURL string) model.EnrichmentResult {
	result := model.UnavailableEnrichment()

	if !ScrapableURL(rawURL) {
		zap.L().Debug("enrich: url not scrapable", zap.String("url", rawURL))
		return result
	}

	doc, raw, err := s.fetch(ctx, rawURL)
	if err != nil {
		zap.L().Debug("enrich: fetch failed",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return result
	}

	if email := extractEmail(doc, raw); email != "" {
		result.Email = email
	}
	if phone := extractPhone(doc, raw); phone != "" {
		result.Phone = phone
	}
	if person := extractContactPerson(doc); person != "" {
		result.ContactPerson = person
	}
	return result
}

// ScrapableURL reports whether a website URL is worth fetching: absolute
// http(s) and not on the excluded domain list.
func ScrapableURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range excludedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return false
		}
	}
	return true
}

func (s *Scraper) fetch(ctx context.Context, rawURL string) (*goquery.Document, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", eris.Wrap(err, "enrich: build request")
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", eris.Wrap(err, "enrich: fetch")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", eris.Errorf("enrich: fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return nil, "", eris.Wrap(err, "enrich: read body")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, "", eris.Wrap(err, "enrich: parse html")
	}
	return doc, string(body), nil
}
