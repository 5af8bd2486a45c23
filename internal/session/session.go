// Package session memoizes one title lookup against one provider.
//
// A Session lives as long as the user browses the results of a single
// search. Every page, episode list and stream list is fetched at most once;
// failed fetches are retried on the next request.
package session

import (
	"context"

	"animeku/internal/cache"
	"animeku/internal/log"
	"animeku/internal/media"
	"animeku/internal/provider"
)

type episodeBundle struct {
	episodes []media.Episode
	meta     media.Meta
}

type searchPage struct {
	movies []media.Movie
	total  int
}

// Session fronts a provider with per-session caches.
type Session struct {
	provider provider.Provider
	title    string

	pages    *cache.Cache[int, searchPage]
	episodes *cache.Cache[string, episodeBundle]
	streams  *cache.Cache[string, []media.Stream]

	total int
}

// New starts a session for title on p.
func New(p provider.Provider, title string) *Session {
	return &Session{
		provider: p,
		title:    title,
		pages:    cache.New[int, searchPage](),
		episodes: cache.New[string, episodeBundle](),
		streams:  cache.New[string, []media.Stream](),
	}
}

// Title returns the searched title.
func (s *Session) Title() string { return s.title }

// Provider returns the provider the session was started with.
func (s *Session) Provider() provider.Provider { return s.provider }

// Search returns page of the results. Navigation entries are never
// stored here; the pager adds them per view.
func (s *Session) Search(ctx context.Context, page int) ([]media.Movie, error) {
	res, err := s.pages.GetOrCompute(page, func() (searchPage, error) {
		log.WithField("source", s.provider.Name()).Debugf("search %q page %d", s.title, page)
		movies, total, err := s.provider.Search(ctx, s.title, page)
		return searchPage{movies: movies, total: total}, err
	})
	if err != nil {
		return nil, err
	}
	if page == 1 {
		s.total = res.total
	}
	return res.movies, nil
}

// Total returns the total reported with the first page, or 0 before it
// was fetched.
func (s *Session) Total() int { return s.total }

// Episodes returns the episodes and metadata of movie.
func (s *Session) Episodes(ctx context.Context, movie media.Movie) ([]media.Episode, media.Meta, error) {
	b, err := s.episodes.GetOrCompute(movie.ID, func() (episodeBundle, error) {
		log.WithField("source", s.provider.Name()).Debugf("episodes of %s", movie.ID)
		episodes, meta, err := s.provider.Episodes(ctx, movie)
		return episodeBundle{episodes: episodes, meta: meta}, err
	})
	return b.episodes, b.meta, err
}

// Streams returns the resolved streams of episode.
func (s *Session) Streams(ctx context.Context, episode media.Episode) ([]media.Stream, error) {
	return s.streams.GetOrCompute(episode.ID, func() ([]media.Stream, error) {
		log.WithField("source", s.provider.Name()).Debugf("streams of %s", episode.ID)
		return s.provider.Streams(ctx, episode)
	})
}
