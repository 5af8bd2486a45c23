// Package pager turns a page fetcher into a navigable result list.
package pager

import (
	"context"
	"errors"
	"fmt"

	"animeku/internal/log"
	"animeku/internal/media"
)

// ErrNotFound is returned when the first page has no results.
var ErrNotFound = errors.New("title not found")

// Fetch returns the items of page (1-based). An empty slice means the
// page does not exist.
type Fetch func(ctx context.Context, page int) ([]media.Movie, error)

// Choose presents items and returns the index picked by the user.
type Choose func(items []media.Movie) (int, error)

// Pager walks pages of a Fetch, adding previous and next entries.
type Pager struct {
	fetch Fetch
	page  int
	last  int // last non-empty page, 0 until an empty page is seen
}

// New returns a Pager positioned on page 1.
func New(fetch Fetch) *Pager {
	return &Pager{fetch: fetch, page: 1}
}

// Page returns the current page number.
func (p *Pager) Page() int { return p.page }

// Next shows pages until the user picks a real item and returns it.
//
// An empty page past the first one means the previous page was the last:
// the pager steps back, remembers that and shows that page without a next
// entry.
func (p *Pager) Next(ctx context.Context, choose Choose) (media.Movie, error) {
	for {
		items, err := p.fetch(ctx, p.page)
		if err != nil {
			return media.Movie{}, err
		}

		if len(items) == 0 {
			if p.page == 1 {
				return media.Movie{}, ErrNotFound
			}
			log.Debugf("page %d is empty, falling back to page %d", p.page, p.page-1)
			p.page--
			p.last = p.page
			continue
		}

		view := p.decorate(items)
		idx, err := choose(view)
		if err != nil {
			return media.Movie{}, err
		}
		if idx < 0 || idx >= len(view) {
			return media.Movie{}, fmt.Errorf("selection %d out of range", idx)
		}

		switch picked := view[idx]; picked.ID {
		case media.PrevPageID:
			p.page--
		case media.NextPageID:
			p.page++
		default:
			return picked, nil
		}
	}
}

// decorate returns a copy of items with the navigation entries the
// current page allows.
func (p *Pager) decorate(items []media.Movie) []media.Movie {
	view := make([]media.Movie, len(items), len(items)+2)
	copy(view, items)
	if p.page > 1 {
		view = append(view, media.PrevPage(p.page))
	}
	if p.last == 0 || p.page < p.last {
		view = append(view, media.NextPage(p.page))
	}
	return view
}
