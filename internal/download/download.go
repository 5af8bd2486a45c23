// Package download saves a resolved stream to disk with ffmpeg.
// Arguments are passed as an explicit slice and the output path is
// confined to the chosen directory.
package download

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path"
	"strings"

	"animeku/internal/httputil"
	"animeku/internal/log"
	"animeku/internal/media"
)

// Download copies stream into dir as "<title>.<ext>" and returns the file path.
func Download(ctx context.Context, stream media.Stream, title, dir string) (string, error) {
	if err := httputil.ValidateURL(stream.URL); err != nil {
		return "", fmt.Errorf("refusing to download: %w", err)
	}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	outputPath, err := httputil.SafeDownloadPath(dir, title+extension(stream.URL))
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, Args(stream.URL, title, outputPath)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.WithField("quality", stream.Title).Debugf("downloading %s", httputil.Redact(stream.URL))
	if err := cmd.Run(); err != nil {
		// Clean up partial download on failure
		os.Remove(outputPath)
		return "", fmt.Errorf("ffmpeg download failed: %w", err)
	}
	return outputPath, nil
}

// Args builds the ffmpeg command line. Streams are copied, never re-encoded.
func Args(streamURL, title, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-stats",
		"-y",
		"-i", streamURL,
		"-c", "copy",
		"-metadata", "title=" + title,
		outputPath,
	}
}

// extension keeps mp4 files as mp4; playlists and anything else go to mkv.
func extension(streamURL string) string {
	u, err := url.Parse(streamURL)
	if err != nil {
		return ".mkv"
	}
	if strings.EqualFold(path.Ext(u.Path), ".mp4") {
		return ".mp4"
	}
	return ".mkv"
}
