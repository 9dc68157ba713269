package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"merkwatch/watcher-service/internal/model"
)

// Assembler drives the paginated wishlist fetch and merges the per-page
// product maps into one logical snapshot.
type Assembler struct {
	fetcher Fetcher
}

// NewAssembler constructs an Assembler on top of a page fetcher.
func NewAssembler(fetcher Fetcher) *Assembler {
	return &Assembler{fetcher: fetcher}
}

// Assemble fetches the entry page, discovers the remaining pages from its
// pagination list and fetches them concurrently. Results are joined as a
// batch and merged in page-discovery order (entry page first), so the
// merged map is identical regardless of which fetch completes first.
// Any single page failure fails the whole assembly — a partial wishlist
// must never be mistaken for the complete one.
func (a *Assembler) Assemble(ctx context.Context, entryURL string) (*model.RawProductMap, error) {
	entry, err := a.fetcher.FetchPage(ctx, entryURL)
	if err != nil {
		return nil, fmt.Errorf("entry page: %w", err)
	}

	extra := additionalPageURLs(entry.Content.Pagination)
	if len(extra) > 0 {
		log.Printf("[assembler] %d additional page(s) discovered", len(extra))
	}

	pages := make([]*model.PageData, len(extra))
	g, gctx := errgroup.WithContext(ctx)
	for i, pageURL := range extra {
		i, pageURL := i, pageURL
		g.Go(func() error {
			page, err := a.fetcher.FetchPage(gctx, pageURL)
			if err != nil {
				return err
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := model.NewRawProductMap()
	mergeInto(merged, &entry.Content.Products)
	for _, page := range pages {
		mergeInto(merged, &page.Content.Products)
	}

	return merged, nil
}

// additionalPageURLs extracts the page URLs to fetch beyond the entry
// page. The first pagination entry refers to the entry page itself and is
// skipped; non-string placeholder entries are skipped as well.
func additionalPageURLs(pagination []json.RawMessage) []string {
	var urls []string
	for i, raw := range pagination {
		if i == 0 {
			continue
		}
		var link string
		if err := json.Unmarshal(raw, &link); err != nil || link == "" {
			continue
		}
		urls = append(urls, link)
	}
	return urls
}

// mergeInto folds src into dst, later pages overwriting earlier ones on
// id collision.
func mergeInto(dst, src *model.RawProductMap) {
	for _, id := range src.IDs() {
		rec, _ := src.Get(id)
		dst.Set(id, rec)
	}
}
