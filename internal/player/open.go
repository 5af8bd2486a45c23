package player

import (
	"os"
	"path/filepath"
	"runtime"

	"animeku/internal/media"
)

// Opener hands the stream to the system's default URL handler.
type Opener struct{}

func (o *Opener) Name() string { return "open" }

func (o *Opener) Available() bool {
	bin, _ := openCommand(runtime.GOOS)
	return available(bin)
}

// Play opens the stream URL. The title is not passed on; default
// handlers have no common flag for it.
func (o *Opener) Play(stream media.Stream, _ string) error {
	bin, args := openCommand(runtime.GOOS)
	return run(bin, stream, append(args, stream.URL))
}

// openCommand returns the launcher for goos and its leading arguments.
func openCommand(goos string) (string, []string) {
	switch goos {
	case "windows":
		return filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe"), []string{"url.dll,FileProtocolHandler"}
	case "darwin":
		return "open", nil
	default:
		return "xdg-open", nil
	}
}
