package player

import "animeku/internal/media"

// Generic implements the Player interface for players like iina and celluloid
// that accept mpv-compatible arguments.
type Generic struct {
	name string
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) Available() bool { return available(g.name) }

// Play launches the generic player.
func (g *Generic) Play(stream media.Stream, title string) error {
	// Both iina and celluloid accept mpv-style flags
	return run(g.name, stream, []string{stream.URL, "--force-media-title=" + title})
}
