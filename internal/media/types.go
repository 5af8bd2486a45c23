// Package media defines shared types for the animeku application.
package media

import (
	"fmt"
	"strings"

	"github.com/samber/mo"
)

// Reserved movie IDs for the pagination entries. Backends must never
// return a real title with one of these IDs.
const (
	PrevPageID = "1"
	NextPageID = "2"
)

// Movie represents a single search result from a provider.
type Movie struct {
	ID            string             // Provider-specific ID (e.g., "25107" or "tv/one-piece")
	Title         string             // Display title
	TotalEpisodes mo.Option[string] // Episode count as reported upstream, if any
}

func (m Movie) String() string {
	s := strings.TrimSpace(m.Title)
	if eps, ok := m.TotalEpisodes.Get(); ok {
		s += fmt.Sprintf(" (%s eps)", eps)
	}
	return s
}

// IsNavigation reports whether m is a previous/next page entry.
func (m Movie) IsNavigation() bool {
	return m.ID == PrevPageID || m.ID == NextPageID
}

// PrevPage returns the navigation entry pointing at the page before page.
func PrevPage(page int) Movie {
	return Movie{ID: PrevPageID, Title: fmt.Sprintf("Previous (page %d)", page-1)}
}

// NextPage returns the navigation entry pointing at the page after page.
func NextPage(page int) Movie {
	return Movie{ID: NextPageID, Title: fmt.Sprintf("Next (page %d)", page+1)}
}

// Episode represents one playable unit of a Movie.
// IsSeries is false for single-file movies.
type Episode struct {
	ID       string
	Title    string
	IsSeries bool
}

func (e Episode) String() string { return strings.TrimSpace(e.Title) }

// Field is one label/value pair of descriptive metadata.
type Field struct {
	Label string
	Value string
}

// Meta describes a Movie. Data is rendered in insertion order.
type Meta struct {
	ThumbURL mo.Option[string]
	Data     []Field
}

// Add appends a field, ignoring blank values.
func (m *Meta) Add(label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	m.Data = append(m.Data, Field{Label: label, Value: value})
}

// Stream is a resolved, playable URL.
type Stream struct {
	URL   string `json:"url"`
	Title string `json:"title"` // Quality or server label, optionally with a size suffix
}

func (s Stream) String() string { return strings.TrimSpace(s.Title) }
