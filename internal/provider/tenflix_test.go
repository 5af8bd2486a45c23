package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"animeku/internal/config"
	"animeku/internal/extract"
	"animeku/internal/media"
)

type tenflixSite struct {
	srv        *httptest.Server
	linkFails  bool
	noEmbed    bool
	linkVisits atomic.Int32
}

// newTenflixSite serves a tenflix clone, its embed host and the mirrors
// the embed page points at from a single TLS server.
func newTenflixSite(t *testing.T) *tenflixSite {
	t.Helper()
	site := &tenflixSite{}
	site.srv = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := site.srv.URL
		host := strings.TrimPrefix(base, "https://")
		vars := map[string]string{
			"BASE":  base,
			"EMBED": host,
			"PRIV":  b64(base + "/priv/player"),
			"TAPE":  b64(base + "/mirror/tape.mp4"),
			"DOOD":  b64(base + "/mirror/dood.mp4"),
		}

		switch {
		case r.URL.Path == "/page/2/" && r.URL.Query().Get("s") == "dune part two":
			fmt.Fprint(w, loadFixture(t, "search_results.html", vars))
		case r.URL.Path == "/page/1/" && r.URL.Query().Get("s") == "amelie":
			fmt.Fprint(w, loadFixture(t, "search_encoded.html", vars))
		case strings.HasPrefix(r.URL.Path, "/page/"):
			fmt.Fprint(w, loadFixture(t, "search_empty.html", vars))
		case r.URL.Path == "/tv/dune-prophecy/":
			fmt.Fprint(w, loadFixture(t, "tv_show.html", vars))
		case r.URL.Path == "/movie/amélie-2001/":
			fmt.Fprint(w, loadFixture(t, "movie.html", vars))
		case r.URL.Path == "/movie/dune-2021/":
			fmt.Fprint(w, loadFixture(t, "movie.html", vars))
		case strings.HasPrefix(r.URL.Path, "/links/"):
			n := site.linkVisits.Add(1)
			switch {
			case site.linkFails && n == 1:
				w.WriteHeader(http.StatusInternalServerError)
			case site.noEmbed:
				fmt.Fprint(w, loadFixture(t, "links_none.html", vars))
			default:
				fmt.Fprint(w, loadFixture(t, "links.html", vars))
			}
		case r.URL.Path == "/embed/Xy9fileQ1":
			fmt.Fprint(w, loadFixture(t, "embed.html", vars))
		case r.URL.Path == "/priv/player":
			fmt.Fprint(w, `<script>player.setup({file: "https://cdn.example/priv.m3u8"});</script>`)
		case r.URL.Path == "/mirror/tape.mp4":
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/mirror/dood.mp4":
			w.WriteHeader(http.StatusGone)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(site.srv.Close)
	return site
}

func (s *tenflixSite) provider() *Tenflix {
	client := s.srv.Client()
	return NewTenflix(Options{
		Client: client,
		Resolver: extract.New(client, extract.Options{
			PrivateMarkers:    []string{"priv"},
			CheckAvailability: true,
		}),
		TenflixBase: s.srv.URL,
		EmbedHost:   strings.TrimPrefix(s.srv.URL, "https://"),
	})
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestTenflixSearch(t *testing.T) {
	site := newTenflixSite(t)
	p := site.provider()

	movies, total, err := p.Search(context.Background(), "dune part two", 2)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(movies) != 3 || total != 3 {
		t.Fatalf("got %d movies, total %d; want 3 and 3", len(movies), total)
	}
	if movies[0].ID != "movie/dune-2021/" || movies[0].Title != "Dune 2021 (Movie)" {
		t.Errorf("movies[0] = %+v", movies[0])
	}

	movies, total, err = p.Search(context.Background(), "dune part two", 3)
	if err != nil || len(movies) != 0 || total != 0 {
		t.Errorf("past last page = (%v, %d, %v), want empty without error", movies, total, err)
	}
}

func TestTenflixEpisodes(t *testing.T) {
	site := newTenflixSite(t)
	p := site.provider()

	t.Run("tv show", func(t *testing.T) {
		episodes, meta, err := p.Episodes(context.Background(), media.Movie{ID: "tv/dune-prophecy/", Title: "Dune: Prophecy 2024 (TV)"})
		if err != nil {
			t.Fatalf("Episodes() error: %v", err)
		}
		if len(episodes) != 2 || !episodes[0].IsSeries {
			t.Fatalf("episodes = %+v", episodes)
		}
		if meta.ThumbURL.OrEmpty() != site.srv.URL+"/img/prophecy.jpg" {
			t.Errorf("thumb = %q", meta.ThumbURL.OrEmpty())
		}
		if len(meta.Data) != 3 {
			t.Errorf("meta = %+v, want 3 fields", meta.Data)
		}
	})

	t.Run("movie", func(t *testing.T) {
		movie := media.Movie{ID: "movie/dune-2021/", Title: "Dune 2021 (Movie)"}
		episodes, meta, err := p.Episodes(context.Background(), movie)
		if err != nil {
			t.Fatalf("Episodes() error: %v", err)
		}
		if len(episodes) != 1 {
			t.Fatalf("got %d episodes, want 1", len(episodes))
		}
		if episodes[0].ID != movie.ID || episodes[0].Title != movie.Title || episodes[0].IsSeries {
			t.Errorf("episode = %+v", episodes[0])
		}
		if len(meta.Data) != 2 || meta.Data[0].Label != "Original title" {
			t.Errorf("meta = %+v", meta.Data)
		}
	})

	t.Run("missing page", func(t *testing.T) {
		if _, _, err := p.Episodes(context.Background(), media.Movie{ID: "movie/nope/"}); err == nil {
			t.Error("expected error for 404 page")
		}
	})
}

func TestTenflixEncodedSlug(t *testing.T) {
	site := newTenflixSite(t)
	p := site.provider()

	movies, _, err := p.Search(context.Background(), "amelie", 1)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(movies) != 1 || movies[0].ID != "movie/am%c3%a9lie-2001/" {
		t.Fatalf("movies = %+v", movies)
	}

	episodes, _, err := p.Episodes(context.Background(), movies[0])
	if err != nil {
		t.Fatalf("Episodes() error: %v", err)
	}
	if len(episodes) != 1 || episodes[0].ID != movies[0].ID {
		t.Errorf("episodes = %+v", episodes)
	}
}

func TestTenflixStreams(t *testing.T) {
	site := newTenflixSite(t)
	p := site.provider()

	streams, err := p.Streams(context.Background(), media.Episode{ID: "movie/dune-2021/", Title: "Dune"})
	if err != nil {
		t.Fatalf("Streams() error: %v", err)
	}

	want := []media.Stream{
		{URL: "https://cdn.example/priv.m3u8", Title: "privserver: Private HD"},
		{URL: site.srv.URL + "/mirror/tape.mp4", Title: "streamtape: Streamtape 720p"},
	}
	if len(streams) != len(want) {
		t.Fatalf("streams = %+v, want %+v", streams, want)
	}
	for i := range want {
		if streams[i] != want[i] {
			t.Errorf("streams[%d] = %+v, want %+v", i, streams[i], want[i])
		}
	}
	if n := site.linkVisits.Load(); n != 1 {
		t.Errorf("visited %d links pages, want 1", n)
	}
}

func TestTenflixStreamsSkipsFailedLinksPage(t *testing.T) {
	site := newTenflixSite(t)
	site.linkFails = true
	p := site.provider()

	streams, err := p.Streams(context.Background(), media.Episode{ID: "movie/dune-2021/"})
	if err != nil {
		t.Fatalf("Streams() error: %v", err)
	}
	if len(streams) != 2 {
		t.Errorf("got %d streams, want 2", len(streams))
	}
	if n := site.linkVisits.Load(); n != 2 {
		t.Errorf("visited %d links pages, want 2", n)
	}
}

func TestTenflixStreamsNoEmbed(t *testing.T) {
	site := newTenflixSite(t)
	site.noEmbed = true
	p := site.provider()

	streams, err := p.Streams(context.Background(), media.Episode{ID: "movie/dune-2021/"})
	if err != nil {
		t.Fatalf("Streams() error: %v", err)
	}
	if len(streams) != 0 {
		t.Errorf("streams = %+v, want none", streams)
	}
}

func TestRegistry(t *testing.T) {
	for _, kind := range config.Sources {
		p, err := New(kind, Options{})
		if err != nil {
			t.Errorf("New(%q) error: %v", kind, err)
			continue
		}
		if p.Name() != kind {
			t.Errorf("New(%q).Name() = %q", kind, p.Name())
		}
		if Describe(kind) == "" {
			t.Errorf("Describe(%q) is empty", kind)
		}
	}

	if names := Names(); len(names) != len(config.Sources) {
		t.Errorf("Names() = %v, want %v", names, config.Sources)
	}

	if _, err := New("netflix", Options{}); err == nil {
		t.Error("expected error for unknown source")
	}
}
