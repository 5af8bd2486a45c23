// Package extract resolves raw stream references into playable URLs.
//
// A reference may be base64 encoded, point at a mirror that needs
// credentials, hide the real file behind an iframe page or a player
// script, or already be direct. The Resolver normalizes each one, drops
// what is confirmed dead and annotates the rest with a size when the host
// reports one.
package extract

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"animeku/internal/httputil"
	"animeku/internal/log"
	"animeku/internal/media"

	"github.com/samber/lo"
)

// DefaultProbeTimeout bounds every auxiliary fetch when Options leaves it unset.
const DefaultProbeTimeout = 2 * time.Second

// Candidate is one unresolved stream reference as scraped from a backend.
type Candidate struct {
	Ref     string // URL, or base64 of a URL when Encoded is set
	Label   string // Quality or server label shown to the user
	Server  string // Upstream server id, used to spot private servers
	Encoded bool
}

// Options tunes mirror classification and probing.
type Options struct {
	Credentials      string // "user:pass"; empty disables credential injection
	CredentialHosts  []string
	IndirectHosts    []string
	PrivateMarkers   []string
	SizeExcludeHosts []string
	ProbeTimeout     time.Duration

	CheckAvailability bool
	AnnotateSize      bool
}

// Resolver turns candidates into streams. It never fails as a whole:
// a candidate that cannot be resolved is dropped or kept as-is.
type Resolver struct {
	client *http.Client
	opts   Options
}

// New creates a Resolver using client for every request.
func New(client *http.Client, opts Options) *Resolver {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	return &Resolver{client: client, opts: opts}
}

// Resolve resolves cands in order. The result keeps the relative order of
// the candidates that survived.
func (r *Resolver) Resolve(ctx context.Context, cands []Candidate) []media.Stream {
	streams := make([]media.Stream, 0, len(cands))
	for _, c := range cands {
		if s, ok := r.resolve(ctx, c); ok {
			streams = append(streams, s)
		}
	}
	return streams
}

func (r *Resolver) resolve(ctx context.Context, c Candidate) (media.Stream, bool) {
	entry := log.WithField("candidate", c.Label)

	ref := cleanRef(c.Ref)
	if c.Encoded {
		raw, err := base64.StdEncoding.DecodeString(ref)
		if err != nil {
			entry.Debugf("dropping undecodable reference: %v", err)
			return media.Stream{}, false
		}
		ref = cleanRef(string(raw))
	}

	kind := r.classify(ref, c.Server)
	entry.Debugf("%s mirror", kind)
	switch kind {
	case mirrorCredentialed:
		ref = r.injectCredentials(ref)
	case mirrorIndirect:
		ref = r.followIndirect(ctx, ref)
	case mirrorPrivate:
		ref = r.extractPrivate(ctx, ref)
	}

	if !strings.HasPrefix(ref, "http") {
		entry.Debug("dropping non-http reference")
		return media.Stream{}, false
	}

	var (
		size   int64 = -1
		probed bool
	)
	if r.opts.CheckAvailability {
		res, err := r.probe(ctx, ref)
		if err != nil {
			entry.Debugf("availability probe inconclusive: %v", err)
		} else {
			if !res.ok {
				entry.Debugf("dropping unavailable stream (status %d)", res.status)
				return media.Stream{}, false
			}
			size, probed = res.length, true
		}
	}

	label := c.Label
	if r.opts.AnnotateSize && !r.sizeExcluded(ref) {
		if !probed {
			if res, err := r.probe(ctx, ref); err == nil {
				size = res.length
			}
		}
		if size >= 0 {
			label += " (" + formatSize(size) + ")"
		}
	}

	return media.Stream{URL: ref, Title: label}, true
}

func (r *Resolver) sizeExcluded(ref string) bool {
	return httputil.ContainsAny(ref, r.opts.SizeExcludeHosts)
}

// RelabelSingleResult rewrites from to to in the label of a lone stream of
// a non-series episode. Any other input is returned unchanged.
func RelabelSingleResult(streams []media.Stream, isSeries bool, from, to string) []media.Stream {
	if len(streams) != 1 || isSeries {
		return streams
	}
	return lo.Map(streams, func(s media.Stream, _ int) media.Stream {
		s.Title = strings.ReplaceAll(s.Title, from, to)
		return s
	})
}

func cleanRef(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'`))
}
