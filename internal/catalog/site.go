package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/stuchain/cuepoint/internal/domain"
	"github.com/stuchain/cuepoint/internal/httpclient"
)

const userAgent = "cuepoint/1.0"

// SiteProvider scrapes the catalog website directly. All requests go
// through the shared rate-limited client.
type SiteProvider struct {
	baseURL string
	client  *httpclient.Client
}

func NewSiteProvider(baseURL string, client *httpclient.Client) *SiteProvider {
	if client == nil {
		client = httpclient.NewClient(nil, 0)
	}
	return &SiteProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (p *SiteProvider) Search(ctx context.Context, query string, maxResults int) (*domain.SearchOutcome, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s", p.baseURL, url.QueryEscape(query))
	doc, err := p.fetchDocument(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var urls []string
	doc.Find("a.track-link").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return true
		}
		urls = append(urls, p.absoluteURL(href))
		return maxResults <= 0 || len(urls) < maxResults
	})

	return &domain.SearchOutcome{URLs: urls}, nil
}

func (p *SiteProvider) FetchTrack(ctx context.Context, trackURL string) (*domain.DetailOutcome, error) {
	doc, err := p.fetchDocument(ctx, trackURL)
	if err != nil {
		return nil, fmt.Errorf("fetch track %s: %w", trackURL, err)
	}

	f := &domain.RawFields{
		Title:       text(doc, "h1.track-title"),
		Artists:     text(doc, ".track-artists"),
		Key:         text(doc, ".track-key"),
		Label:       text(doc, ".track-label"),
		Genre:       text(doc, ".track-genre"),
		ReleaseName: text(doc, ".track-release"),
		ReleaseDate: text(doc, ".track-released"),
	}
	if f.Title == "" {
		return nil, fmt.Errorf("track page %s: no title found", trackURL)
	}

	if bpm := text(doc, ".track-bpm"); bpm != "" {
		if n, err := strconv.Atoi(bpm); err == nil {
			f.BPM = n
		}
	}
	f.ReleaseYear = yearOf(f.ReleaseDate)
	if src, ok := doc.Find("img.track-artwork").First().Attr("src"); ok {
		f.ArtworkURL = p.absoluteURL(src)
	}

	return &domain.DetailOutcome{Fields: f}, nil
}

func (p *SiteProvider) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func (p *SiteProvider) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return p.baseURL + href
}

func text(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

// yearOf extracts the leading four-digit year of a release date string like
// "2015-01-19".
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
