// Package thumb draws poster thumbnails in the terminal with half-block
// characters. Rendering is best effort: callers are expected to ignore
// its errors.
package thumb

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"animeku/internal/httputil"
)

// Timeout bounds the thumbnail download.
const Timeout = 2 * time.Second

const (
	maxCols = 50
	maxRows = 30 // terminal rows; each holds two pixel rows
)

// Render downloads the image at url and draws it to w.
func Render(ctx context.Context, client *http.Client, url string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	body, err := httputil.GetBody(ctx, client, url, nil)
	if err != nil {
		return fmt.Errorf("fetching thumbnail: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("decoding thumbnail: %w", err)
	}

	_, err = io.WriteString(w, Draw(img, columns()))
	return err
}

// columns picks a width that fits the terminal.
func columns() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 4 {
		return maxCols
	}
	return min(maxCols, width-4)
}

// Draw renders img cols cells wide, keeping its aspect ratio. Each cell is
// an upper half block coloured with the top pixel as foreground and the
// bottom pixel as background.
func Draw(img image.Image, cols int) string {
	b := img.Bounds()
	if b.Empty() || cols <= 0 {
		return ""
	}

	cols = min(cols, b.Dx())
	// Terminal cells are about twice as tall as wide, half blocks fix that.
	pixRows := b.Dy() * cols / b.Dx()
	pixRows = max(2, min(pixRows, maxRows*2))
	pixRows += pixRows % 2

	var sb strings.Builder
	for y := 0; y < pixRows; y += 2 {
		for x := 0; x < cols; x++ {
			top := sample(img, x, y, cols, pixRows)
			bottom := sample(img, x, y+1, cols, pixRows)
			sb.WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀"))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// sample picks the source pixel for cell (x, y) of a cols x rows grid.
func sample(img image.Image, x, y, cols, rows int) lipgloss.Color {
	b := img.Bounds()
	sx := b.Min.X + x*b.Dx()/cols
	sy := b.Min.Y + y*b.Dy()/rows
	r, g, bl, _ := img.At(sx, sy).RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, bl>>8))
}
