// Package scraper implements wishlist page fetching, snapshot assembly
// and normalization.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"merkwatch/watcher-service/internal/model"
)

const httpTimeout = 15 * time.Second

// FetchError reports a page request that did not succeed. Status is zero
// for transport-level failures.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a page whose embedded data block was missing or not
// valid JSON.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Fetcher retrieves and decodes the structured payload of one wishlist
// page. Implemented by HTTPFetcher; faked in tests.
type Fetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*model.PageData, error)
}

// nextData mirrors the nesting of the server-rendered page state down to
// the wishlist payload.
type nextData struct {
	Props struct {
		PageProps struct {
			InitialProps struct {
				OriginalServerResponse struct {
					Data model.PageData `json:"data"`
				} `json:"originalServerResponse"`
			} `json:"initialProps"`
		} `json:"pageProps"`
	} `json:"props"`
}

// HTTPFetcher fetches wishlist pages over plain HTTP and extracts the
// payload from the __NEXT_DATA__ script tag.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher constructs a fetcher with a shared HTTP client.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: httpTimeout}}
}

// FetchPage performs the request and locates the embedded data block.
// Non-2xx responses yield a FetchError; a missing or malformed block
// yields a ParseError.
func (f *HTTPFetcher) FetchPage(ctx context.Context, pageURL string) (*model.PageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.7")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: pageURL, Status: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	raw := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if raw == "" {
		return nil, &ParseError{URL: pageURL, Err: fmt.Errorf("__NEXT_DATA__ script tag not found")}
	}

	var nd nextData
	if err := json.Unmarshal([]byte(raw), &nd); err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	data := nd.Props.PageProps.InitialProps.OriginalServerResponse.Data
	return &data, nil
}
