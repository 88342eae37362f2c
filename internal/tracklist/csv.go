package tracklist

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jaki95/mixplayer/internal/domain"
)

// CSVImporter reads "startTime,artist,track[,remixArtist][,publisher]" rows
// after a single header row.
type CSVImporter struct {
}

func NewCSVImporter() *CSVImporter {
	return &CSVImporter{}
}

func (c *CSVImporter) Name() string {
	return SourceCSV
}

func (c *CSVImporter) Import(ctx context.Context, filePath string) ([]domain.Track, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return c.Parse(file)
}

func (c *CSVImporter) Parse(r io.Reader) ([]domain.Track, error) {
	reader := csv.NewReader(r)
	reader.Comma = ','
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	slog.Debug("Header row", "header", header)

	var tracks []domain.Track
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("invalid CSV record on line %d: expected at least 3 fields, got %d", line, len(record))
		}

		track := domain.Track{
			StartTime:  strings.TrimSpace(record[0]),
			ArtistName: strings.TrimSpace(record[1]),
			TrackName:  strings.TrimSpace(record[2]),
		}
		if len(record) > 3 {
			track.RemixArtistName = strings.TrimSpace(record[3])
		}
		if len(record) > 4 {
			track.Publisher = strings.TrimSpace(record[4])
		}
		if TimeToSeconds(track.StartTime) == 0 && track.StartTime != "0:00" && track.StartTime != "00:00" && track.StartTime != "00:00:00" {
			slog.Warn("Unrecognised start time, treating as 0:00", "line", line, "startTime", track.StartTime)
		}
		tracks = append(tracks, track)
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w in CSV file", ErrNoTracks)
	}

	return tracks, nil
}
