package player

import "animeku/internal/media"

// VLC implements the Player interface for VLC media player.
type VLC struct{}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool { return available("vlc") }

// Play launches VLC and exits it when the stream ends.
func (v *VLC) Play(stream media.Stream, title string) error {
	return run("vlc", stream, vlcArgs(stream, title))
}

func vlcArgs(stream media.Stream, title string) []string {
	return []string{
		stream.URL,
		"--meta-title", title,
		"--play-and-exit",
	}
}
