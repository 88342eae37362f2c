package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/mixplayer/internal/domain"
)

func writeMixes(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "mixes.json")
	content := `[
		{"mixcloudKey": "/dj/one/", "name": "One", "listOrder": 1, "tracks": []},
		{"mixcloudKey": "/dj/two/", "name": "Two", "listOrder": 2, "tracks": [{"startTime": "0:00", "trackName": "Keep"}]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMergeTracks(t *testing.T) {
	path := writeMixes(t, t.TempDir())

	updated, err := mergeTracks(path, map[string][]domain.Track{
		"/dj/one/": {
			{StartTime: "12:00", ArtistName: "B", TrackName: "Later"},
			{StartTime: "0:00", ArtistName: "A", TrackName: "Opener"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var mixes []domain.Mix
	require.NoError(t, json.Unmarshal(data, &mixes))

	require.Len(t, mixes, 2)
	require.Len(t, mixes[0].Tracks, 2)
	assert.Equal(t, "Opener", mixes[0].Tracks[0].TrackName, "tracks are stored sorted")
	assert.Equal(t, "Keep", mixes[1].Tracks[0].TrackName)
}

func TestMergeTracksUnknownKey(t *testing.T) {
	path := writeMixes(t, t.TempDir())
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = mergeTracks(path, map[string][]domain.Track{"/dj/typo/": {{StartTime: "0:00"}}})
	assert.ErrorContains(t, err, "/dj/typo/")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "file is untouched on error")
}

func TestReadBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.csv")
	content := "# key,source\n/dj/one/, https://www.1001tracklists.com/tracklist/abc/one.html\n\n/dj/two/,two.csv\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	entries, err := readBatch(path)
	require.NoError(t, err)
	assert.Equal(t, []batchEntry{
		{Key: "/dj/one/", Source: "https://www.1001tracklists.com/tracklist/abc/one.html"},
		{Key: "/dj/two/", Source: "two.csv"},
	}, entries)
}

func TestReadBatchInvalid(t *testing.T) {
	dir := t.TempDir()

	short := filepath.Join(dir, "short.csv")
	require.NoError(t, os.WriteFile(short, []byte("/dj/one/\n"), 0644))
	_, err := readBatch(short)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n"), 0644))
	_, err = readBatch(empty)
	assert.Error(t, err)
}

func TestWriteTracks(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tracks.json")
	require.NoError(t, writeTracks(out, []domain.Track{{StartTime: "1:00", TrackName: "X"}}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"trackName": "X"`)
}
