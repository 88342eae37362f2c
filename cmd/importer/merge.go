package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaki95/mixplayer/internal/domain"
	"github.com/jaki95/mixplayer/internal/tracklist"
)

type batchEntry struct {
	Key    string
	Source string
}

// readBatch parses "mixKey,source" lines. Blank lines and lines starting
// with # are skipped.
func readBatch(path string) ([]batchEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var entries []batchEntry
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read batch file: %w", err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("invalid batch line %q: want mixKey,source", strings.Join(record, ","))
		}
		entries = append(entries, batchEntry{
			Key:    strings.TrimSpace(record[0]),
			Source: strings.TrimSpace(record[1]),
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("batch file %s is empty", path)
	}
	return entries, nil
}

// mergeTracks replaces the tracks of the listed mixes in the mixes file and
// rewrites it. It returns how many mixes changed. Unknown keys are an error
// so a typo never silently drops an import.
func mergeTracks(path string, updates map[string][]domain.Track) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var mixes []domain.Mix
	if err := json.Unmarshal(data, &mixes); err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	seen := make(map[string]bool, len(updates))
	for i := range mixes {
		tracks, ok := updates[mixes[i].MixcloudKey]
		if !ok {
			continue
		}
		mixes[i].Tracks = tracklist.SortTracksByTime(tracks)
		seen[mixes[i].MixcloudKey] = true
	}

	var missing []string
	for key := range updates {
		if !seen[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("unknown mix keys in %s: %s", path, strings.Join(missing, ", "))
	}

	out, err := json.MarshalIndent(mixes, "", "  ")
	if err != nil {
		return 0, err
	}
	out = append(out, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".mixes-*.json")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, err
	}
	return len(seen), nil
}
