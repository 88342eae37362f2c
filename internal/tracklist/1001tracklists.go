package tracklist

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	"github.com/jaki95/mixplayer/internal/domain"
)

var (
	remixPattern     = regexp.MustCompile(`\(([^()]+?)\s+(?:Remix|Edit|Rework|Dub)\)`)
	publisherPattern = regexp.MustCompile(`\[([^\[\]]+)\]\s*$`)
)

type Tracklists1001Importer struct {
	maxRetries int
	baseDelay  time.Duration
	userAgents []string
}

func New1001TracklistsImporter() *Tracklists1001Importer {
	return &Tracklists1001Importer{
		maxRetries: 4,
		baseDelay:  2 * time.Second,
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
	}
}

func (t *Tracklists1001Importer) Name() string {
	return Source1001Tracklists
}

func (t *Tracklists1001Importer) Import(ctx context.Context, url string) ([]domain.Track, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.MaxDepth(1),
		colly.UserAgent(t.userAgents[rand.Intn(len(t.userAgents))]),
	)
	c.SetRequestTimeout(30 * time.Second)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Referer", "https://www.1001tracklists.com/")
	})

	var tracks []domain.Track
	c.OnHTML("body", func(e *colly.HTMLElement) {
		tracks = parseSelection(e.DOM)
	})

	slog.Info("Fetching tracklist data with Colly", "url", url)
	if err := t.visitWithRetries(ctx, c, url); err != nil {
		return nil, err
	}

	if len(tracks) == 0 {
		slog.Warn("Possibly blocked by anti-scraping measures", "url", url)
		return nil, fmt.Errorf("%w at %s", ErrNoTracks, url)
	}

	slog.Info("Successfully scraped tracklist", "trackCount", len(tracks))
	return tracks, nil
}

// ParseDocument extracts tracks from an already fetched tracklist page.
func ParseDocument(doc *goquery.Document) []domain.Track {
	return parseSelection(doc.Selection)
}

func parseSelection(root *goquery.Selection) []domain.Track {
	var tracks []domain.Track
	root.Find("div.tlpTog").Each(func(_ int, row *goquery.Selection) {
		startTime := strings.TrimSpace(row.Find("div.cue").First().Text())
		if startTime == "" {
			startTime = "0:00"
		}

		trackValue := strings.TrimSpace(row.Find("span.trackValue").First().Text())
		if trackValue == "" {
			return
		}

		track := parseTrackValue(trackValue)
		track.StartTime = startTime
		tracks = append(tracks, track)
	})
	return tracks
}

// parseTrackValue splits "Artist - Title (Remixer Remix) [Label]".
func parseTrackValue(trackValue string) domain.Track {
	var track domain.Track

	if m := publisherPattern.FindStringSubmatch(trackValue); m != nil {
		track.Publisher = strings.TrimSpace(m[1])
		trackValue = strings.TrimSpace(strings.TrimSuffix(trackValue, m[0]))
	}

	parts := strings.SplitN(trackValue, " - ", 2)
	if len(parts) == 2 {
		track.ArtistName = strings.TrimSpace(parts[0])
		track.TrackName = strings.TrimSpace(parts[1])
	} else {
		track.ArtistName = "Unknown Artist"
		track.TrackName = strings.TrimSpace(trackValue)
	}

	if m := remixPattern.FindStringSubmatch(track.TrackName); m != nil {
		track.RemixArtistName = strings.TrimSpace(m[1])
	}

	return track
}

func (t *Tracklists1001Importer) visitWithRetries(ctx context.Context, c *colly.Collector, url string) error {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			delay := t.baseDelay * time.Duration(1<<uint(attempt))
			jitter := time.Duration(rand.Int63n(3000)) * time.Millisecond
			slog.Info("Retrying request", "attempt", attempt+1, "delay", (delay + jitter).String(), "url", url)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay + jitter):
			}
		}

		lastErr = c.Visit(url)
		if lastErr == nil {
			return nil
		}
		slog.Warn("Request failed", "attempt", attempt+1, "error", lastErr)
	}
	return fmt.Errorf("failed after %d attempts: %w", t.maxRetries, lastErr)
}
