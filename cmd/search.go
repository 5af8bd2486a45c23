package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"animeku/internal/config"
	"animeku/internal/download"
	"animeku/internal/extract"
	"animeku/internal/httputil"
	"animeku/internal/log"
	"animeku/internal/media"
	"animeku/internal/pager"
	"animeku/internal/player"
	"animeku/internal/provider"
	"animeku/internal/session"
	"animeku/internal/thumb"
	"animeku/internal/ui"
)

// stdout carries only machine-readable output (--json); everything meant
// for the user goes to stderr.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// opError marks a failed top-level operation. Only the operation is shown
// to the user; the cause goes to the debug log.
type opError struct {
	op    string
	err   error
	local bool // failed on this machine (ffmpeg, player), not upstream
}

func (e *opError) Error() string { return e.op + ": " + e.err.Error() }
func (e *opError) Unwrap() error { return e.err }

// report turns err into a short notice without transport internals.
func report(err error) string {
	var oe *opError
	if !errors.As(err, &oe) {
		return err.Error()
	}
	if oe.local {
		return oe.op + " failed. Run with --debug for details."
	}
	var se *httputil.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("%s failed: the source answered with status %d.", oe.op, se.StatusCode)
	}
	return oe.op + " failed: the source could not be reached or sent something unexpected."
}

// resolverOptions maps the configuration onto stream resolution settings.
func resolverOptions(c *config.Config) extract.Options {
	return extract.Options{
		Credentials:       c.MirrorCredentials,
		CredentialHosts:   c.CredentialHosts,
		IndirectHosts:     c.IndirectHosts,
		PrivateMarkers:    c.PrivateMarkers,
		SizeExcludeHosts:  c.SizeProbeExclude,
		ProbeTimeout:      c.ProbeTimeout.Duration,
		CheckAvailability: c.CheckAvailability,
		AnnotateSize:      true,
	}
}

// searchRun is the default command: animeku <title>
func searchRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(stderr, ui.Banner(Version))

	client := httputil.NewClient()
	opts := provider.Options{
		Client:      client,
		Resolver:    extract.New(client, resolverOptions(cfg)),
		APIBase:     cfg.APIBase,
		TenflixBase: cfg.TenflixBase,
		EmbedHost:   cfg.EmbedHost,
	}

	title := strings.Join(args, " ")
	for {
		if title == "" {
			var err error
			title, err = ui.Input("Title")
			if err != nil {
				return err
			}
		}

		kind, err := chooseSource()
		if err != nil {
			return err
		}
		p, err := provider.New(kind, opts)
		if err != nil {
			return err
		}
		log.Debugf("searching %s for: %s", kind, title)

		err = browse(ctx, client, session.New(p, title))
		switch {
		case errors.Is(err, pager.ErrNotFound):
			fmt.Fprintln(stderr, ui.Warn(fmt.Sprintf("%q not found.", title)))
		case err != nil:
			return err
		}

		again, err := ui.Confirm("Search again?")
		if err != nil || !again {
			return nil
		}
		title = ""
	}
}

// chooseSource returns the configured source or asks for one.
func chooseSource() (string, error) {
	if cfg.Source != "" {
		return cfg.Source, nil
	}
	names := provider.Names()
	labels := make([]string, len(names))
	for i, n := range names {
		labels[i] = fmt.Sprintf("%-8s %s", n, provider.Describe(n))
	}
	idx, err := ui.Select("Source", labels, false)
	if err != nil {
		return "", err
	}
	return names[idx], nil
}

// browse runs one title session: pick a title, then episodes until the
// user is done.
func browse(ctx context.Context, client *http.Client, s *session.Session) error {
	announced := false
	pg := pager.New(func(ctx context.Context, page int) ([]media.Movie, error) {
		movies, err := s.Search(ctx, page)
		if err != nil {
			return nil, &opError{op: "Search", err: err}
		}
		return movies, nil
	})

	movie, err := pg.Next(ctx, func(items []media.Movie) (int, error) {
		if !announced && s.Total() > 0 {
			fmt.Fprintln(stderr, ui.Success(fmt.Sprintf("Found %d titles.", s.Total())))
			announced = true
		}
		return ui.Choose("Select title", items, false)
	})
	if err != nil {
		return err
	}
	log.Debugf("selected: %s (ID: %s)", movie.Title, movie.ID)

	episodes, meta, err := s.Episodes(ctx, movie)
	if err != nil {
		return &opError{op: "Loading episodes", err: err}
	}
	if len(episodes) == 0 {
		fmt.Fprintln(stderr, ui.Warn("No episodes found."))
		return nil
	}
	showMeta(ctx, client, meta, len(episodes))

	for {
		idx, err := ui.Choose("Select episode", episodes, true)
		if err != nil {
			return err
		}
		episode := episodes[idx]

		if err := watch(ctx, s, movie, episode); err != nil {
			return err
		}

		if !episode.IsSeries {
			return nil
		}
		more, err := ui.Confirm("Watch another episode?")
		if err != nil || !more {
			return nil
		}
	}
}

// showMeta prints the poster and metadata block to stderr. The poster is
// skipped when stderr is not a terminal or stdout carries JSON.
func showMeta(ctx context.Context, client *http.Client, meta media.Meta, episodes int) {
	if url, ok := meta.ThumbURL.Get(); ok && cfg.Thumbnails && !flagJSON && term.IsTerminal(int(os.Stderr.Fd())) {
		if err := thumb.Render(ctx, client, url, stderr); err != nil {
			log.Debugf("thumbnail: %v", err)
		}
	}
	fmt.Fprint(stderr, ui.MetaBlock(meta, episodes))
}

// watch resolves the streams of episode and plays or prints the chosen one.
func watch(ctx context.Context, s *session.Session, movie media.Movie, episode media.Episode) error {
	streams, err := s.Streams(ctx, episode)
	if err != nil {
		return &opError{op: "Resolving streams", err: err}
	}
	if len(streams) == 0 {
		fmt.Fprintln(stderr, ui.Warn("No playable stream found."))
		return nil
	}

	idx, err := ui.Choose("Select quality", streams, false)
	if err != nil {
		return err
	}
	stream := streams[idx]
	title := playbackTitle(movie, episode)
	log.Debugf("stream URL: %s", httputil.Redact(stream.URL))

	// JSON output mode
	if flagJSON {
		return printJSON(title, stream)
	}

	if flagDownload != "" {
		path, err := download.Download(ctx, stream, title, flagDownload)
		if err != nil {
			return &opError{op: "Download", err: err, local: true}
		}
		fmt.Fprintln(stderr, ui.Success("Saved to "+path))
		return nil
	}

	p := player.New(cfg.Player)
	if !p.Available() {
		return fmt.Errorf("player %q not found in PATH", cfg.Player)
	}
	fmt.Fprintln(stderr, ui.Info("Playing "+title+" ["+stream.String()+"]"))
	if err := p.Play(stream, title); err != nil {
		return &opError{op: "Playback", err: err, local: true}
	}
	return nil
}

func playbackTitle(movie media.Movie, episode media.Episode) string {
	if !episode.IsSeries {
		return strings.TrimSpace(movie.Title)
	}
	return strings.TrimSpace(movie.Title) + " - " + episode.String()
}

type streamOutput struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Quality string `json:"quality"`
}

func printJSON(title string, stream media.Stream) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(streamOutput{Title: title, URL: stream.URL, Quality: stream.Title})
}
