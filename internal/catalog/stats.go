package catalog

import (
	"sort"
	"strings"

	"github.com/jaki95/mixplayer/internal/domain"
	"github.com/jaki95/mixplayer/internal/tracklist"
)

const topN = 10

// Count is a name with its number of occurrences.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type MixSummary struct {
	MixcloudKey string `json:"mixcloudKey"`
	Name        string `json:"name"`
	Duration    string `json:"duration"`
}

// Stats aggregates the whole dataset.
type Stats struct {
	TotalMixes           int            `json:"totalMixes"`
	TotalTracks          int            `json:"totalTracks"`
	TotalDurationSeconds int            `json:"totalDurationSeconds"`
	TotalDuration        string         `json:"totalDuration"`
	AverageMixSeconds    float64        `json:"averageMixSeconds"`
	AverageTracksPerMix  float64        `json:"averageTracksPerMix"`
	MixesPerCategory     map[string]int `json:"mixesPerCategory"`
	UniqueTags           int            `json:"uniqueTags"`
	UniqueArtists        int            `json:"uniqueArtists"`
	UniquePublishers     int            `json:"uniquePublishers"`
	TopTags              []Count        `json:"topTags"`
	TopArtists           []Count        `json:"topArtists"`
	TopPublishers        []Count        `json:"topPublishers"`
	LongestMix           *MixSummary    `json:"longestMix,omitempty"`
	ShortestMix          *MixSummary    `json:"shortestMix,omitempty"`
}

func (c *Catalog) Stats() Stats {
	mixes := c.snapshot().Mixes

	stats := Stats{
		TotalMixes:       len(mixes),
		MixesPerCategory: make(map[string]int),
		TopTags:          []Count{},
		TopArtists:       []Count{},
		TopPublishers:    []Count{},
	}

	tags := make(map[string]int)
	artists := make(map[string]int)
	publishers := make(map[string]int)
	longest, shortest := -1, -1

	for _, mix := range mixes {
		stats.MixesPerCategory[mix.Category]++
		stats.TotalTracks += len(mix.Tracks)

		seconds := tracklist.TimeToSeconds(mix.Duration)
		stats.TotalDurationSeconds += seconds
		if seconds > longest {
			longest = seconds
			stats.LongestMix = summarize(mix)
		}
		if seconds > 0 && (shortest < 0 || seconds < shortest) {
			shortest = seconds
			stats.ShortestMix = summarize(mix)
		}

		for _, tag := range mix.Tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags[tag]++
			}
		}
		for _, track := range mix.Tracks {
			if name := strings.TrimSpace(track.ArtistName); name != "" {
				artists[name]++
			}
			if name := strings.TrimSpace(track.RemixArtistName); name != "" {
				artists[name]++
			}
			if name := strings.TrimSpace(track.Publisher); name != "" {
				publishers[name]++
			}
		}
	}

	stats.TotalDuration = tracklist.FormatSeconds(stats.TotalDurationSeconds)
	if len(mixes) > 0 {
		stats.AverageMixSeconds = float64(stats.TotalDurationSeconds) / float64(len(mixes))
		stats.AverageTracksPerMix = float64(stats.TotalTracks) / float64(len(mixes))
	}

	stats.UniqueTags = len(tags)
	stats.UniqueArtists = len(artists)
	stats.UniquePublishers = len(publishers)
	stats.TopTags = top(tags, topN)
	stats.TopArtists = top(artists, topN)
	stats.TopPublishers = top(publishers, topN)

	return stats
}

func summarize(mix domain.Mix) *MixSummary {
	return &MixSummary{MixcloudKey: mix.MixcloudKey, Name: mix.Name, Duration: mix.Duration}
}

// top returns the n highest counts, ties broken by name.
func top(counts map[string]int, n int) []Count {
	result := make([]Count, 0, len(counts))
	for name, count := range counts {
		result = append(result, Count{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
