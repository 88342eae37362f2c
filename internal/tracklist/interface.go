package tracklist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jaki95/mixplayer/internal/domain"
)

// Importer turns an external tracklist source into mix tracks.
type Importer interface {
	Import(ctx context.Context, source string) ([]domain.Track, error)
	Name() string
}

const (
	Source1001Tracklists = "1001tracklists"
	SourceCSV            = "csv"
)

var ErrNoTracks = errors.New("no tracks found")

// CompositeImporter tries multiple importers in sequence until one succeeds
type CompositeImporter struct {
	importers []Importer
}

func NewCompositeImporter(importers ...Importer) *CompositeImporter {
	return &CompositeImporter{importers: importers}
}

func (c *CompositeImporter) Name() string {
	return "composite"
}

func (c *CompositeImporter) Import(ctx context.Context, source string) ([]domain.Track, error) {
	var errs []error
	for _, importer := range c.importers {
		tracks, err := importer.Import(ctx, source)
		if err == nil {
			return tracks, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", importer.Name(), err))
	}
	return nil, fmt.Errorf("all importers failed: %w", errors.Join(errs...))
}

// NewImporter picks an importer for the given source kind.
// An empty kind guesses from the source itself.
func NewImporter(kind, source string) (Importer, error) {
	switch kind {
	case Source1001Tracklists:
		return New1001TracklistsImporter(), nil
	case SourceCSV:
		return NewCSVImporter(), nil
	case "":
		if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
			return New1001TracklistsImporter(), nil
		}
		return NewCSVImporter(), nil
	default:
		return nil, fmt.Errorf("unknown tracklist source %q", kind)
	}
}
