package player

import "animeku/internal/media"

// MPV implements the Player interface for mpv.
type MPV struct{}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool { return available("mpv") }

// Play launches mpv with the given stream.
func (m *MPV) Play(stream media.Stream, title string) error {
	return run("mpv", stream, mpvArgs(stream, title))
}

// mpvArgs builds args as an explicit slice; each arg is separate.
func mpvArgs(stream media.Stream, title string) []string {
	return []string{
		stream.URL,
		"--force-media-title=" + title,
		"--really-quiet",
	}
}
