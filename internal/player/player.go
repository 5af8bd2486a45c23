// Package player provides a secure interface for launching media players.
// All player invocations use exec.Command with explicit argument slices,
// so stream URLs and titles are never interpreted by a shell.
package player

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"animeku/internal/httputil"
	"animeku/internal/media"
)

// Player is the interface for media player implementations.
type Player interface {
	// Play starts playback of a stream and blocks until the player exits.
	Play(stream media.Stream, title string) error

	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool
}

// New creates a player by name.
func New(name string) Player {
	switch strings.ToLower(name) {
	case "vlc":
		return &VLC{}
	case "iina", "celluloid":
		return &Generic{name: strings.ToLower(name)}
	case "open":
		return &Opener{}
	default:
		return &MPV{} // Default to mpv
	}
}

// run executes bin with args attached to the terminal. A non-zero exit is
// how most players report that the user closed them, so it is not an error.
func run(bin string, stream media.Stream, args []string) error {
	if err := httputil.ValidateURL(stream.URL); err != nil {
		return fmt.Errorf("refusing to play: %w", err)
	}

	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return fmt.Errorf("running %s: %w", bin, err)
	}
	return nil
}

func available(bin string) bool {
	_, err := exec.LookPath(bin)
	return err == nil
}
