// Package provider defines the interface for media content sources
// and their implementations.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"animeku/internal/extract"
	"animeku/internal/httputil"
	"animeku/internal/media"
)

// Provider is the interface that content sources must implement.
type Provider interface {
	// Name returns the source kind, e.g. "anime".
	Name() string

	// Search returns the titles matching title at page (1-based) and the
	// total reported with them. What the total counts is source specific.
	// An empty page is not an error.
	Search(ctx context.Context, title string, page int) ([]media.Movie, int, error)

	// Episodes returns the playable units of movie with its metadata.
	Episodes(ctx context.Context, movie media.Movie) ([]media.Episode, media.Meta, error)

	// Streams resolves the playable URLs of episode. An empty result means
	// nothing playable was found.
	Streams(ctx context.Context, episode media.Episode) ([]media.Stream, error)
}

// ErrInvalidPage is returned by Search for pages below 1.
var ErrInvalidPage = errors.New("page must be 1 or greater")

// Options carries what every source needs to talk to its upstream.
type Options struct {
	Client   *http.Client
	Resolver *extract.Resolver

	APIBase     string // JSON API root for the anime and movie sources
	TenflixBase string
	EmbedHost   string // host serving tenflix embed pages
}

type entry struct {
	name        string
	description string
	build       func(Options) Provider
}

var registry = []entry{
	{"anime", "anime series from the nontonanime API", func(o Options) Provider { return NewNontonanime(o) }},
	{"movie", "anime movies from the nontonanime API", func(o Options) Provider { return NewNontonanimeMovie(o) }},
	{"tenflix", "movies and TV shows scraped from tenflix", func(o Options) Provider { return NewTenflix(o) }},
}

// New builds the source registered as kind.
func New(kind string, opts Options) (Provider, error) {
	e, ok := lo.Find(registry, func(e entry) bool { return e.name == kind })
	if !ok {
		return nil, fmt.Errorf("unknown source %q", kind)
	}
	if opts.Client == nil {
		opts.Client = httputil.NewClient()
	}
	if opts.Resolver == nil {
		opts.Resolver = extract.New(opts.Client, extract.Options{})
	}
	return e.build(opts), nil
}

// Names returns the registered source kinds in menu order.
func Names() []string {
	return lo.Map(registry, func(e entry, _ int) string { return e.name })
}

// Describe returns a one-line description of kind.
func Describe(kind string) string {
	e, _ := lo.Find(registry, func(e entry) bool { return e.name == kind })
	return e.description
}

func checkPage(page int) error {
	if page < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidPage, page)
	}
	return nil
}
