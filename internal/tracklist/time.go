package tracklist

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jaki95/mixplayer/internal/domain"
)

// TimeToSeconds converts a timestamp like "1:23:45" or "45:23" to seconds.
// Any other shape, or a non-numeric part, yields 0.
func TimeToSeconds(timestamp string) int {
	parts := strings.Split(strings.TrimSpace(timestamp), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0
	}

	total := 0
	for _, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil || value < 0 {
			return 0
		}
		total = total*60 + value
	}
	return total
}

// FormatSeconds renders seconds as "M:SS", or "H:MM:SS" past the hour.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// SortTracksByTime returns a copy of tracks ordered by start time.
// Tracks sharing a start time keep their original order.
func SortTracksByTime(tracks []domain.Track) []domain.Track {
	sorted := make([]domain.Track, len(tracks))
	copy(sorted, tracks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return TimeToSeconds(sorted[i].StartTime) < TimeToSeconds(sorted[j].StartTime)
	})
	return sorted
}

// FindTrackIndexAtPosition returns the index of the track playing at
// position, given tracks already sorted by start time. duration acts as the
// start of a virtual track after the last one.
//
// Both window bounds are shifted left by tolerance, so the final tolerance
// seconds of a track are attributed to the next one.
func FindTrackIndexAtPosition(sortedTracks []domain.Track, position, duration float64, tolerance float64) int {
	if position <= 0 || len(sortedTracks) == 0 {
		return -1
	}

	for i := range sortedTracks {
		start := float64(TimeToSeconds(sortedTracks[i].StartTime))
		next := duration
		if i+1 < len(sortedTracks) {
			next = float64(TimeToSeconds(sortedTracks[i+1].StartTime))
		}
		if position >= start-tolerance && position < next-tolerance {
			return i
		}
	}
	return -1
}
