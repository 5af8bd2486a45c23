package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"animeku/internal/extract"
	"animeku/internal/httputil"
	"animeku/internal/log"
	"animeku/internal/media"
)

const (
	searchSeriesPath = "search_category_collection/v7_1/"
	searchMoviePath  = "search_anime_movie/v7_1/"
	episodesPath     = "get_category_posts_secure/v9_1/"
	streamsPath      = "get_post_description_secure/v9_4/"

	pageSize = 20
)

// Quality tiers of the stream endpoint, lowest first.
const (
	TierSD  = "360p SD"
	TierHD  = "720p HD"
	TierFHD = "1080p FHD"
)

type tier struct{ field, label string }

var tiers = []tier{
	{"channel_url", TierSD},
	{"channel_url_hd", TierHD},
	{"channel_url_fhd", TierFHD},
}

// apiHeaders mimic the official Android client; the API rejects others.
func apiHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "okhttp/3.12.13")
	h.Set("Cache-Control", "max-age=0")
	h.Set("Data-Agent", "New Aniplex v9.1")
	return h
}

// scalar is a loosely typed JSON value. The API mixes numbers and strings
// for the same fields, and null means absent.
type scalar struct {
	raw   string
	isStr bool
	set   bool
}

func (s *scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	s.set = true
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.raw, s.isStr = v, true
		return nil
	}
	s.raw = string(b)
	return nil
}

func (s scalar) String() string { return strings.TrimSpace(s.raw) }

// number returns the value as an unsigned integer when it is one.
func (s scalar) number() (uint64, bool) {
	if !s.set {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s.raw), 10, 64)
	return n, err == nil
}

// id returns the value as an entity id. Ids 1 and 2 collide with the
// pagination entries and are rejected.
func (s scalar) id() (string, bool) {
	n, ok := s.number()
	if !ok || n == 1 || n == 2 {
		return "", false
	}
	return strconv.FormatUint(n, 10), true
}

// api is the form-POST client shared by both nontonanime sources.
type api struct {
	base     string
	client   *http.Client
	resolver *extract.Resolver
}

func newAPI(o Options) api {
	return api{
		base:     strings.TrimRight(o.APIBase, "/") + "/",
		client:   o.Client,
		resolver: o.Resolver,
	}
}

func (a api) post(ctx context.Context, path string, form url.Values, out any) error {
	body, err := httputil.PostForm(ctx, a.client, a.base+path, form, apiHeaders())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func searchForm(title string, page int) url.Values {
	return url.Values{
		"search":     {title},
		"page":       {strconv.Itoa(page)},
		"count":      {strconv.Itoa(pageSize)},
		"lang":       {"All"},
		"isAPKvalid": {"true"},
	}
}

// streams fetches the quality tiers of episode and resolves them.
func (a api) streams(ctx context.Context, episode media.Episode) ([]media.Stream, error) {
	if err := httputil.ValidateNumericID(episode.ID); err != nil {
		return nil, fmt.Errorf("invalid episode ID: %w", err)
	}

	var resp map[string]scalar
	form := url.Values{"channel_id": {episode.ID}, "isAPKvalid": {"true"}}
	if err := a.post(ctx, streamsPath, form, &resp); err != nil {
		return nil, fmt.Errorf("getting streams: %w", err)
	}

	cands := lo.FilterMap(tiers, func(t tier, _ int) (extract.Candidate, bool) {
		v, ok := resp[t.field]
		if !ok || !v.isStr {
			return extract.Candidate{}, false
		}
		return extract.Candidate{Ref: v.raw, Label: t.label}, true
	})
	log.Debugf("episode %s: %d quality candidates", episode.ID, len(cands))

	streams := a.resolver.Resolve(ctx, cands)
	return extract.RelabelSingleResult(streams, episode.IsSeries, TierSD, TierHD), nil
}

// Nontonanime serves anime series from the nontonanime API.
// Search reports the API's count_total, or 0 when the API omits it.
type Nontonanime struct {
	api
}

// NewNontonanime creates the series source.
func NewNontonanime(o Options) *Nontonanime {
	return &Nontonanime{api: newAPI(o)}
}

func (n *Nontonanime) Name() string { return "anime" }

type seriesSearchResponse struct {
	Categories []struct {
		CID        scalar `json:"cid"`
		Name       scalar `json:"category_name"`
		CountAnime scalar `json:"count_anime"`
	} `json:"categories"`
	CountTotal scalar `json:"count_total"`
}

// Search returns the series matching title.
func (n *Nontonanime) Search(ctx context.Context, title string, page int) ([]media.Movie, int, error) {
	if err := checkPage(page); err != nil {
		return nil, 0, err
	}

	var resp seriesSearchResponse
	if err := n.post(ctx, searchSeriesPath, searchForm(title, page), &resp); err != nil {
		return nil, 0, fmt.Errorf("searching for %q: %w", title, err)
	}

	movies := make([]media.Movie, 0, len(resp.Categories))
	for _, c := range resp.Categories {
		id, ok := c.CID.id()
		if !ok {
			continue
		}
		count := "1"
		if c.CountAnime.isStr {
			count = c.CountAnime.String()
		}
		movies = append(movies, media.Movie{
			ID:            id,
			Title:         c.Name.String(),
			TotalEpisodes: mo.Some(count),
		})
	}

	total, _ := resp.CountTotal.number()
	return movies, int(total), nil
}

type seriesEpisodesResponse struct {
	Category *struct {
		ImgURL  scalar `json:"img_url"`
		Name    scalar `json:"category_name"`
		Genre   scalar `json:"genre"`
		Years   scalar `json:"years"`
		Rating  scalar `json:"rating"`
		Ongoing scalar `json:"ongoing"`
	} `json:"category"`
	Posts []seriesPost `json:"posts"`
}

type seriesPost struct {
	ChannelID scalar `json:"channel_id"`
	Name      scalar `json:"channel_name"`
}

// Episodes returns the episodes of a series with its category metadata.
func (n *Nontonanime) Episodes(ctx context.Context, movie media.Movie) ([]media.Episode, media.Meta, error) {
	if err := httputil.ValidateNumericID(movie.ID); err != nil {
		return nil, media.Meta{}, fmt.Errorf("invalid series ID: %w", err)
	}

	var resp seriesEpisodesResponse
	form := url.Values{"id": {movie.ID}, "isAPKvalid": {"true"}}
	if err := n.post(ctx, episodesPath, form, &resp); err != nil {
		return nil, media.Meta{}, fmt.Errorf("getting episodes: %w", err)
	}

	var meta media.Meta
	if c := resp.Category; c != nil {
		if c.ImgURL.String() != "" {
			meta.ThumbURL = mo.Some(c.ImgURL.String())
		}
		meta.Add("Title", c.Name.String())
		meta.Add("Genre", c.Genre.String())
		meta.Add("Year", c.Years.String())
		meta.Add("Rating", c.Rating.String())
		if v, ok := c.Ongoing.number(); ok {
			meta.Add("Ongoing", strconv.FormatBool(v != 0))
		}
	}

	episodes := lo.FilterMap(resp.Posts, func(p seriesPost, _ int) (media.Episode, bool) {
		v, ok := p.ChannelID.number()
		if !ok {
			return media.Episode{}, false
		}
		return media.Episode{
			ID:       strconv.FormatUint(v, 10),
			Title:    p.Name.String(),
			IsSeries: true,
		}, true
	})

	return episodes, meta, nil
}

// Streams resolves the quality tiers of an episode.
func (n *Nontonanime) Streams(ctx context.Context, episode media.Episode) ([]media.Stream, error) {
	return n.streams(ctx, episode)
}

// NontonanimeMovie serves anime movies from the nontonanime API.
// The API has no total for movie searches, so Search reports the number
// of items on the returned page.
//
// Movie metadata only comes with search results. It is kept by id until
// Episodes asks for it.
type NontonanimeMovie struct {
	api

	mu   sync.Mutex
	meta map[string]media.Meta
}

// NewNontonanimeMovie creates the movie source.
func NewNontonanimeMovie(o Options) *NontonanimeMovie {
	return &NontonanimeMovie{api: newAPI(o), meta: make(map[string]media.Meta)}
}

func (m *NontonanimeMovie) Name() string { return "movie" }

type movieSearchResponse struct {
	Posts []struct {
		ChannelID scalar `json:"channel_id"`
		Name      scalar `json:"channel_name"`
		ImgURL    scalar `json:"img_url"`
		Lang      scalar `json:"lang"`
		Rating    scalar `json:"rating"`
		Years     scalar `json:"years"`
	} `json:"posts"`
}

// Search returns the movies matching title and remembers their metadata.
func (m *NontonanimeMovie) Search(ctx context.Context, title string, page int) ([]media.Movie, int, error) {
	if err := checkPage(page); err != nil {
		return nil, 0, err
	}

	var resp movieSearchResponse
	if err := m.post(ctx, searchMoviePath, searchForm(title, page), &resp); err != nil {
		return nil, 0, fmt.Errorf("searching for %q: %w", title, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	movies := make([]media.Movie, 0, len(resp.Posts))
	for _, p := range resp.Posts {
		id, ok := p.ChannelID.id()
		if !ok {
			continue
		}

		var meta media.Meta
		if p.ImgURL.String() != "" {
			meta.ThumbURL = mo.Some(p.ImgURL.String())
		}
		meta.Add("Title", p.Name.String())
		meta.Add("Language", p.Lang.String())
		meta.Add("Rating", p.Rating.String())
		meta.Add("Year", p.Years.String())
		m.meta[id] = meta

		movies = append(movies, media.Movie{ID: id, Title: p.Name.String()})
	}

	return movies, len(movies), nil
}

// Episodes returns the movie itself as the only episode.
func (m *NontonanimeMovie) Episodes(_ context.Context, movie media.Movie) ([]media.Episode, media.Meta, error) {
	m.mu.Lock()
	meta := m.meta[movie.ID]
	m.mu.Unlock()

	ep := media.Episode{ID: movie.ID, Title: movie.Title, IsSeries: false}
	return []media.Episode{ep}, meta, nil
}

// Streams resolves the quality tiers of the movie.
func (m *NontonanimeMovie) Streams(ctx context.Context, episode media.Episode) ([]media.Stream, error) {
	return m.streams(ctx, episode)
}
