package provider

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"animeku/internal/extract"
	"animeku/internal/media"
)

// parseSearchResults extracts search results from a tenflix search page.
// Uses DOM parsing instead of regexes on raw HTML so entities are decoded
// and attribute order does not matter.
func parseSearchResults(doc *goquery.Document, base string) []media.Movie {
	var results []media.Movie

	doc.Find(".result-item").Each(func(_ int, s *goquery.Selection) {
		link := s.Find(".details .title a").First()
		href, exists := link.Attr("href")
		if !exists {
			return
		}
		id, ok := pathUnder(href, base)
		if !ok {
			return
		}

		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}
		if year := strings.TrimSpace(s.Find(".meta .year").First().Text()); year != "" {
			title += " " + year
		}
		title += " (" + kindOf(id) + ")"

		results = append(results, media.Movie{ID: id, Title: title})
	})

	return results
}

// kindOf labels an item id as a movie or a TV show.
func kindOf(id string) string {
	if strings.HasPrefix(id, "movie") {
		return "Movie"
	}
	return "TV"
}

// parseEpisodes extracts the episode list of a TV show page.
func parseEpisodes(doc *goquery.Document, base string) []media.Episode {
	var episodes []media.Episode

	doc.Find(".episodios li").Each(func(_ int, s *goquery.Selection) {
		link := s.Find(".episodiotitle a").First()
		href, exists := link.Attr("href")
		if !exists {
			return
		}
		id, ok := pathUnder(href, base)
		if !ok {
			return
		}

		num := strings.TrimSpace(s.Find(".numerando").First().Text())
		episodes = append(episodes, media.Episode{
			ID:       id,
			Title:    "Season " + num + ": " + strings.TrimSpace(link.Text()),
			IsSeries: true,
		})
	})

	return episodes
}

// parsePoster returns the poster image of an item page.
func parsePoster(doc *goquery.Document) (string, bool) {
	img := doc.Find(".poster img").First()
	for _, attr := range []string{"src", "data-src"} {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" {
			return v, true
		}
	}
	return "", false
}

// parseCustomFields extracts the label/value pairs shown under an item.
// Pairs with a blank value are skipped.
func parseCustomFields(doc *goquery.Document) []media.Field {
	var fields []media.Field

	doc.Find(".custom_fields").Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(s.Find(".variante").First().Text())
		value := strings.TrimSpace(s.Find(".valor").First().Text())
		if label == "" || value == "" {
			return
		}
		fields = append(fields, media.Field{Label: label, Value: value})
	})

	return fields
}

// parseDownloadLinks returns the /links/ pages of an episode page in
// document order, without duplicates.
func parseDownloadLinks(doc *goquery.Document, base string) []string {
	prefix := strings.TrimRight(base, "/") + "/links/"

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if strings.HasPrefix(href, prefix) && len(href) > len(prefix) {
			links = append(links, href)
		}
	})

	return lo.Uniq(links)
}

// parseEmbedLink finds the first file link on embedHost and returns the
// matching embed page URL.
func parseEmbedLink(doc *goquery.Document, embedHost string) (string, bool) {
	prefix := "https://" + embedHost + "/file/"

	var embed string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if !strings.HasPrefix(href, prefix) || len(href) == len(prefix) {
			return true
		}
		embed = "https://" + embedHost + "/embed/" + strings.TrimPrefix(href, prefix)
		return false
	})

	return embed, embed != ""
}

// parseEmbedServers extracts the server list of an embed page. Each
// server carries its target base64 encoded in data-frame.
func parseEmbedServers(doc *goquery.Document) []extract.Candidate {
	var cands []extract.Candidate

	doc.Find("[data-frame]").Each(func(_ int, s *goquery.Selection) {
		id := strings.TrimSpace(s.AttrOr("id", ""))
		frame := strings.TrimSpace(s.AttrOr("data-frame", ""))
		label := strings.TrimSpace(s.Text())
		if id == "" || frame == "" {
			return
		}
		cands = append(cands, extract.Candidate{
			Ref:     frame,
			Label:   id + ": " + label,
			Server:  id,
			Encoded: true,
		})
	})

	return cands
}

// pathUnder returns href relative to base, e.g. "movie/dune-2021/".
func pathUnder(href, base string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(href), strings.TrimRight(base, "/")+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
