package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"

	"animeku/internal/extract"
	"animeku/internal/httputil"
	"animeku/internal/log"
	"animeku/internal/media"
)

// Tenflix implements the Provider interface for the tenflix site.
// The site has no result total, so Search reports the number of items on
// the returned page.
type Tenflix struct {
	base      string // e.g., "https://tenflix.org"
	embedHost string // e.g., "kotakajaib.me"
	client    *http.Client
	resolver  *extract.Resolver
}

// NewTenflix creates a new Tenflix provider.
func NewTenflix(o Options) *Tenflix {
	return &Tenflix{
		base:      strings.TrimRight(o.TenflixBase, "/"),
		embedHost: o.EmbedHost,
		client:    o.Client,
		resolver:  o.Resolver,
	}
}

func (t *Tenflix) Name() string { return "tenflix" }

// Search returns matching results for title at page.
func (t *Tenflix) Search(ctx context.Context, title string, page int) ([]media.Movie, int, error) {
	if err := checkPage(page); err != nil {
		return nil, 0, err
	}

	searchURL := fmt.Sprintf("%s/page/%d/?s=%s", t.base, page, url.QueryEscape(title))
	doc, err := t.fetchDocument(ctx, searchURL)
	if err != nil {
		return nil, 0, fmt.Errorf("searching for %q: %w", title, err)
	}

	results := parseSearchResults(doc, t.base)
	return results, len(results), nil
}

// Episodes returns the episodes of a TV show, or the movie itself as the
// only episode. Both come with the poster and custom fields of the page.
func (t *Tenflix) Episodes(ctx context.Context, movie media.Movie) ([]media.Episode, media.Meta, error) {
	if err := httputil.ValidateID(movie.ID); err != nil {
		return nil, media.Meta{}, fmt.Errorf("invalid content ID: %w", err)
	}

	doc, err := t.fetchDocument(ctx, t.base+"/"+movie.ID)
	if err != nil {
		return nil, media.Meta{}, fmt.Errorf("getting episodes: %w", err)
	}

	var episodes []media.Episode
	if strings.HasPrefix(movie.ID, "tv") {
		episodes = parseEpisodes(doc, t.base)
	} else {
		episodes = []media.Episode{{ID: movie.ID, Title: movie.Title, IsSeries: false}}
	}

	var meta media.Meta
	if poster, ok := parsePoster(doc); ok {
		meta.ThumbURL = mo.Some(poster)
	}
	for _, f := range parseCustomFields(doc) {
		meta.Add(f.Label, f.Value)
	}

	return episodes, meta, nil
}

// Streams follows the episode's download pages to its embed page and
// resolves every server listed there.
func (t *Tenflix) Streams(ctx context.Context, episode media.Episode) ([]media.Stream, error) {
	if err := httputil.ValidateID(episode.ID); err != nil {
		return nil, fmt.Errorf("invalid episode ID: %w", err)
	}

	doc, err := t.fetchDocument(ctx, t.base+"/"+episode.ID)
	if err != nil {
		return nil, fmt.Errorf("getting episode page: %w", err)
	}

	embedURL, ok := t.findEmbed(ctx, parseDownloadLinks(doc, t.base))
	if !ok {
		log.Debugf("tenflix %s: no embed link", episode.ID)
		return nil, nil
	}

	embed, err := t.fetchDocument(ctx, embedURL)
	if err != nil {
		return nil, fmt.Errorf("getting embed page: %w", err)
	}

	cands := parseEmbedServers(embed)
	log.Debugf("tenflix %s: %d servers", episode.ID, len(cands))
	return t.resolver.Resolve(ctx, cands), nil
}

// findEmbed visits links in order and returns the first embed page found.
func (t *Tenflix) findEmbed(ctx context.Context, links []string) (string, bool) {
	for _, link := range links {
		doc, err := t.fetchDocument(ctx, link)
		if err != nil {
			log.Debugf("tenflix links page %s: %v", link, err)
			continue
		}
		if embed, ok := parseEmbedLink(doc, t.embedHost); ok {
			return embed, true
		}
	}
	return "", false
}

// fetchDocument fetches a URL and parses it into a goquery Document.
func (t *Tenflix) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	resp, err := httputil.Get(ctx, t.client, rawURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		return nil, &httputil.StatusError{URL: httputil.Redact(rawURL), StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return doc, nil
}
