package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/jaki95/mixplayer/internal/domain"
)

const DefaultSearchLimit = 20

// SearchResult is one fuzzy hit, either on a mix field or on a track.
type SearchResult struct {
	Type    string        `json:"type"` // "mix" or "track"
	MixKey  string        `json:"mixKey"`
	MixName string        `json:"mixName"`
	Field   string        `json:"field"`
	Text    string        `json:"text"`
	Track   *domain.Track `json:"track,omitempty"`
	Score   int           `json:"score"`
}

// searchIndex adapts the entries to fuzzy.Source.
type searchIndex []SearchResult

func (s searchIndex) String(i int) string { return s[i].Text }
func (s searchIndex) Len() int            { return len(s) }

func buildIndex(mixes []domain.Mix) searchIndex {
	var index searchIndex
	add := func(r SearchResult) {
		if strings.TrimSpace(r.Text) != "" {
			index = append(index, r)
		}
	}

	for _, mix := range mixes {
		base := SearchResult{Type: "mix", MixKey: mix.MixcloudKey, MixName: mix.Name}

		r := base
		r.Field, r.Text = "name", mix.Name
		add(r)

		r = base
		r.Field, r.Text = "notes", mix.Notes
		add(r)

		r = base
		r.Field, r.Text = "tags", strings.Join(mix.Tags, " ")
		add(r)

		for i := range mix.Tracks {
			track := mix.Tracks[i]
			text := track.ArtistName + " - " + track.TrackName
			if track.RemixArtistName != "" {
				text += " " + track.RemixArtistName
			}
			if track.Publisher != "" {
				text += " " + track.Publisher
			}
			add(SearchResult{
				Type:    "track",
				MixKey:  mix.MixcloudKey,
				MixName: mix.Name,
				Field:   "track",
				Text:    text,
				Track:   &track,
			})
		}
	}
	return index
}

// Search fuzzy-matches query against mix names, notes and tags and against
// every track's artist, title, remixer and publisher. Results are ordered by
// score, best first.
func (c *Catalog) Search(query string, limit int) []SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	index := buildIndex(c.snapshot().Mixes)
	matches := fuzzy.FindFrom(query, index)

	results := make([]SearchResult, 0, min(limit, len(matches)))
	for _, match := range matches {
		if len(results) == limit {
			break
		}
		r := index[match.Index]
		r.Score = match.Score
		results = append(results, r)
	}
	return results
}
