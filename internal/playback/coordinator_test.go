package playback

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/mixplayer/internal/domain"
	"github.com/jaki95/mixplayer/internal/progress"
)

const widgetBase = "https://widget.example.com/iframe/"

type fakeWidget struct {
	mu    sync.Mutex
	calls []string
}

func (w *fakeWidget) record(call string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, call)
	return nil
}

func (w *fakeWidget) Load(url string) error          { return w.record("load " + url) }
func (w *fakeWidget) Play() error                    { return w.record("play") }
func (w *fakeWidget) Pause() error                   { return w.record("pause") }
func (w *fakeWidget) Seek(position float64) error    { return w.record(fmt.Sprintf("seek %.0f", position)) }
func (w *fakeWidget) SetVolume(volume float64) error { return w.record(fmt.Sprintf("volume %.2f", volume)) }

func (w *fakeWidget) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.calls...)
}

func (w *fakeWidget) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = nil
}

// fakeSource answers MixKeys by category. A category listed in gates blocks
// until its channel is closed.
type fakeSource struct {
	mu      sync.Mutex
	keys    map[string][]string
	errs    map[string]error
	gates   map[string]chan struct{}
	entered chan string
	tracks  map[string][]domain.Track
}

func newFakeSource(keys ...string) *fakeSource {
	return &fakeSource{
		keys:    map[string][]string{"": keys},
		errs:    map[string]error{},
		gates:   map[string]chan struct{}{},
		entered: make(chan string, 8),
		tracks:  map[string][]domain.Track{},
	}
}

func (s *fakeSource) MixKeys(ctx context.Context, f domain.Filters) ([]string, error) {
	s.mu.Lock()
	gate := s.gates[f.Category]
	keys, err := s.keys[f.Category], s.errs[f.Category]
	s.mu.Unlock()

	s.entered <- f.Category
	if gate != nil {
		<-gate
	}
	return keys, err
}

func (s *fakeSource) Tracks(key string) ([]domain.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks, ok := s.tracks[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return tracks, nil
}

type MockClipboard struct {
	mock.Mock
}

func (m *MockClipboard) WriteAll(text string) error {
	args := m.Called(text)
	return args.Error(0)
}

type harness struct {
	c       *Coordinator
	widget  *fakeWidget
	source  *fakeSource
	tracker *progress.Tracker
	clock   *clock.Mock
	clip    *MockClipboard
}

func newHarness(t *testing.T, keys ...string) *harness {
	t.Helper()
	mockClock := clock.NewMock()
	h := &harness{
		widget:  &fakeWidget{},
		source:  newFakeSource(keys...),
		tracker: progress.NewTracker(context.Background(), nil, mockClock),
		clock:   mockClock,
		clip:    &MockClipboard{},
	}
	h.c = New(h.widget, h.source, h.tracker, Options{
		ShareBaseURL:  "https://mixes.example.com/",
		WidgetBaseURL: widgetBase,
		Clock:         mockClock,
		Rand:          rand.New(rand.NewSource(1)),
		Clipboard:     h.clip,
	})
	t.Cleanup(func() { _ = h.c.Close() })
	return h
}

func (h *harness) load(t *testing.T, target ...int) {
	t.Helper()
	require.NoError(t, h.c.LoadMixes(context.Background(), domain.Filters{}, target...))
}

func (h *harness) ready(duration float64) {
	h.c.HandleEvent(Event{Type: EventReady, Key: h.c.State().CurrentKey, Duration: duration})
}

func TestLoadMixes(t *testing.T) {
	h := newHarness(t, "/a/", "/b/", "/c/")

	h.load(t)
	state := h.c.State()
	assert.Equal(t, []string{"/a/", "/b/", "/c/"}, state.Keys)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Equal(t, "/a/", state.CurrentKey)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Error)
	assert.Equal(t, widgetBase+"?feed=%2Fa%2F", state.WidgetURL)
	assert.Equal(t, []string{"load " + widgetBase + "?feed=%2Fa%2F"}, h.widget.Calls())
}

func TestLoadMixesTarget(t *testing.T) {
	tests := []struct {
		name   string
		target int
		want   int
	}{
		{"in range", 2, 2},
		{"negative", -1, 0},
		{"past end", 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "/a/", "/b/", "/c/")
			h.load(t, tt.target)
			assert.Equal(t, tt.want, h.c.State().CurrentIndex)
		})
	}
}

func TestLoadMixesEmpty(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	state := h.c.State()
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Empty(t, state.CurrentKey)
	assert.Empty(t, h.widget.Calls())
}

func TestLoadMixesFailureKeepsKeys(t *testing.T) {
	h := newHarness(t, "/a/", "/b/")
	h.load(t)

	h.source.errs["broken"] = errors.New("dataset unavailable")
	err := h.c.LoadMixes(context.Background(), domain.Filters{Category: "broken"})
	require.Error(t, err)

	state := h.c.State()
	assert.Equal(t, PhaseError, state.Phase)
	assert.Contains(t, state.Error, "dataset unavailable")
	assert.Equal(t, []string{"/a/", "/b/"}, state.Keys)
	assert.False(t, state.IsLoading)

	// A later successful load clears the error.
	h.load(t)
	assert.Empty(t, h.c.State().Error)
}

func TestLoadMixesDiscardsStaleResponse(t *testing.T) {
	h := newHarness(t)
	h.source.keys["slow"] = []string{"/slow/"}
	h.source.keys["fast"] = []string{"/fast-1/", "/fast-2/"}
	gate := make(chan struct{})
	h.source.gates["slow"] = gate

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.c.LoadMixes(context.Background(), domain.Filters{Category: "slow"})
	}()
	assert.Equal(t, "slow", <-h.source.entered)

	require.NoError(t, h.c.LoadMixes(context.Background(), domain.Filters{Category: "fast"}))
	close(gate)

	err := <-errCh
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.True(t, IsSuperseded(err))

	state := h.c.State()
	assert.Equal(t, []string{"/fast-1/", "/fast-2/"}, state.Keys)
	assert.Equal(t, "fast", state.Filters.Category)
}

func TestPlayWaitsForWidgetConfirmation(t *testing.T) {
	h := newHarness(t, "/a/")
	h.load(t)
	h.ready(300)
	h.widget.Reset()

	h.c.Play()
	assert.Equal(t, []string{"play"}, h.widget.Calls())
	assert.False(t, h.c.State().IsPlaying)

	h.c.HandleEvent(Event{Type: EventPlay, Key: "/a/"})
	state := h.c.State()
	assert.True(t, state.IsPlaying)
	assert.Equal(t, PhasePlaying, state.Phase)

	h.c.Toggle()
	assert.Equal(t, []string{"play", "pause"}, h.widget.Calls())
	assert.True(t, h.c.State().IsPlaying)

	h.c.HandleEvent(Event{Type: EventPause, Key: "/a/", Position: 12})
	state = h.c.State()
	assert.False(t, state.IsPlaying)
	assert.Equal(t, PhasePaused, state.Phase)
	assert.Equal(t, 12.0, state.Position)
}

func TestPlayBeforeReadyIsDeferred(t *testing.T) {
	h := newHarness(t, "/a/")
	h.load(t)
	h.widget.Reset()

	h.c.Play()
	assert.Empty(t, h.widget.Calls())

	h.ready(300)
	assert.Equal(t, []string{"volume 1.00", "play"}, h.widget.Calls())
}

func TestNextPreviousWrap(t *testing.T) {
	h := newHarness(t, "/a/", "/b/", "/c/")
	h.load(t)

	h.c.Previous()
	assert.Equal(t, 2, h.c.State().CurrentIndex)

	h.c.Next()
	assert.Equal(t, 0, h.c.State().CurrentIndex)

	h.c.Next()
	h.c.Next()
	assert.Equal(t, 2, h.c.State().CurrentIndex)
	assert.Equal(t, "/c/", h.c.State().CurrentKey)
}

func TestNextSingleKeyIsNoop(t *testing.T) {
	h := newHarness(t, "/only/")
	h.load(t)
	h.widget.Reset()

	h.c.Next()
	h.c.Previous()

	assert.Equal(t, 0, h.c.State().CurrentIndex)
	assert.Empty(t, h.widget.Calls())
}

func TestNextKeepsPlaying(t *testing.T) {
	h := newHarness(t, "/a/", "/b/")
	h.load(t)
	h.ready(300)
	h.c.HandleEvent(Event{Type: EventPlay})
	h.c.HandleEvent(Event{Type: EventProgress, Position: 40})

	h.c.Next()
	state := h.c.State()
	assert.False(t, state.IsPlaying, "isPlaying waits for the new widget")
	assert.False(t, state.WidgetReady)

	entry, ok := h.tracker.Get("/a/")
	require.True(t, ok)
	assert.Equal(t, 40.0, entry.Position)

	h.widget.Reset()
	h.ready(200)
	assert.Contains(t, h.widget.Calls(), "play")
}

func TestShuffleVisitsEveryKeyOnce(t *testing.T) {
	keys := []string{"/a/", "/b/", "/c/", "/d/", "/e/", "/f/"}

	for seed := int64(1); seed <= 20; seed++ {
		h := newHarness(t, keys...)
		h.c.rng = rand.New(rand.NewSource(seed))
		h.c.shuffle = newShuffler(h.c.rng)
		h.load(t)
		h.c.SetShuffle(true)

		prev := h.c.State().CurrentIndex
		seen := map[int]int{}
		for i := 0; i < len(keys); i++ {
			h.c.Next()
			idx := h.c.State().CurrentIndex
			assert.NotEqual(t, prev, idx, "seed %d: next must move", seed)
			seen[idx]++
			prev = idx
		}
		assert.Len(t, seen, len(keys), "seed %d", seed)
		for idx, n := range seen {
			assert.Equal(t, 1, n, "seed %d: index %d drawn twice", seed, idx)
		}

		// The following cycle never starts on the index just played.
		for i := 0; i < 2*len(keys); i++ {
			h.c.Next()
			idx := h.c.State().CurrentIndex
			assert.NotEqual(t, prev, idx, "seed %d", seed)
			prev = idx
		}
	}
}

func TestShufflePreviousWalksHistory(t *testing.T) {
	h := newHarness(t, "/a/", "/b/", "/c/", "/d/", "/e/")
	h.load(t)
	h.c.SetShuffle(true)

	visited := []int{h.c.State().CurrentIndex}
	for i := 0; i < 3; i++ {
		h.c.Next()
		visited = append(visited, h.c.State().CurrentIndex)
	}

	for i := len(visited) - 2; i >= 0; i-- {
		h.c.Previous()
		assert.Equal(t, visited[i], h.c.State().CurrentIndex)
	}

	// Empty history falls back to sequential order.
	start := h.c.State().CurrentIndex
	h.c.Previous()
	assert.Equal(t, (start-1+5)%5, h.c.State().CurrentIndex)
}

func TestToggleShuffle(t *testing.T) {
	h := newHarness(t, "/a/", "/b/")
	h.load(t)

	h.c.ToggleShuffle()
	assert.True(t, h.c.State().ShuffleMode)
	h.c.ToggleShuffle()
	assert.False(t, h.c.State().ShuffleMode)
}

func TestSeek(t *testing.T) {
	h := newHarness(t, "/a/")
	h.load(t)
	h.ready(300)
	h.widget.Reset()

	h.c.Seek(120)
	h.c.Seek(1000)
	h.c.Seek(-5)

	assert.Equal(t, []string{"seek 120", "seek 300", "seek 0"}, h.widget.Calls())
	assert.Equal(t, 0.0, h.c.State().Position)

	h.c.Seek(150)
	entry, ok := h.tracker.Get("/a/")
	require.True(t, ok)
	assert.Equal(t, 150.0, entry.Position)
	assert.Equal(t, domain.StatusInProgress, entry.Status)
}

func TestSeekBeforeReadyIsAppliedOnReady(t *testing.T) {
	h := newHarness(t, "/a/")
	h.load(t)
	h.widget.Reset()

	h.c.Seek(90)
	assert.Empty(t, h.widget.Calls())

	h.ready(300)
	assert.Contains(t, h.widget.Calls(), "seek 90")
	assert.Equal(t, 90.0, h.c.State().Position)
}

func TestVolume(t *testing.T) {
	h := newHarness(t, "/a/")
	h.load(t)
	h.ready(300)

	h.c.SetVolume(1.5)
	assert.Equal(t, 1.0, h.c.State().Volume)

	h.c.SetVolume(-1)
	assert.Equal(t, 0.0, h.c.State().Volume)

	h.c.SetVolume(0.4)
	h.c.ToggleMute()
	assert.Equal(t, 0.0, h.c.State().Volume)
	h.c.ToggleMute()
	assert.Equal(t, 0.4, h.c.State().Volume)

	assert.Equal(t, "volume 0.40", h.widget.Calls()[len(h.widget.Calls())-1])
}

func TestGoToTrackFromSavedPosition(t *testing.T) {
	h := newHarness(t, "/a/", "/b/", "/c/")
	h.load(t)
	h.tracker.Update(context.Background(), "/b/", 50, 100)
	h.tracker.Update(context.Background(), "/c/", 100, 100)

	h.c.GoToTrack(1, true)
	h.widget.Reset()
	h.ready(100)
	assert.Equal(t, []string{"volume 1.00", "seek 50", "play"}, h.widget.Calls())
	assert.Equal(t, 50.0, h.c.State().Position)

	// A duplicate ready must not re-apply the seek.
	h.c.HandleEvent(Event{Type: EventProgress, Position: 60})
	h.widget.Reset()
	h.ready(100)
	assert.Empty(t, h.widget.Calls())
	assert.Equal(t, 60.0, h.c.State().Position)

	// Completed mixes start from the top.
	h.c.GoToTrack(2, true)
	h.widget.Reset()
	h.ready(100)
	assert.NotContains(t, h.widget.Calls(), "seek 100")
}

func TestGoToTrackOutOfRange(t *testing.T) {
	h := newHarness(t, "/a/", "/b/")
	h.load(t)
	h.widget.Reset()

	h.c.GoToTrack(5, false)
	h.c.GoToTrack(-1, false)

	assert.Equal(t, 0, h.c.State().CurrentIndex)
	assert.Empty(t, h.widget.Calls())
}

func TestPlayRandomExcludesCurrent(t *testing.T) {
	h := newHarness(t, "/a/", "/b/", "/c/")
	h.load(t, 1)

	for i := 0; i < 50; i++ {
		before := h.c.State().CurrentIndex
		h.c.PlayRandomFromCurrentList()
		assert.NotEqual(t, before, h.c.State().CurrentIndex)
	}

	single := newHarness(t, "/only/")
	single.load(t)
	single.c.PlayRandomFromCurrentList()
	assert.Equal(t, 0, single.c.State().CurrentIndex)
}

func TestEndedRecordsCompletionAndAdvances(t *testing.T) {
	h := newHarness(t, "/a/", "/b/")
	h.load(t)
	h.ready(300)
	h.c.HandleEvent(Event{Type: EventPlay})

	h.c.HandleEvent(Event{Type: EventEnded, Key: "/a/"})

	entry, ok := h.tracker.Get("/a/")
	require.True(t, ok)
	assert.Equal(t, domain.StatusComplete, entry.Status)

	state := h.c.State()
	assert.Equal(t, "/b/", state.CurrentKey)
	assert.Equal(t, domain.StatusComplete, state.MixProgress["/a/"].Status)

	h.widget.Reset()
	h.ready(200)
	assert.Contains(t, h.widget.Calls(), "play")
}

func TestPauseAfterEndedIsIgnored(t *testing.T) {
	h := newHarness(t, "/only/")
	h.load(t)
	h.ready(300)
	h.c.HandleEvent(Event{Type: EventPlay})
	h.c.HandleEvent(Event{Type: EventEnded})
	h.c.HandleEvent(Event{Type: EventEnded})
	h.c.HandleEvent(Event{Type: EventPause, Position: 3})

	state := h.c.State()
	assert.False(t, state.IsPlaying)
	assert.Equal(t, 300.0, state.Position)
	assert.Equal(t, "/only/", state.CurrentKey)

	entry, _ := h.tracker.Get("/only/")
	assert.Equal(t, domain.StatusComplete, entry.Status)
}

func TestEventsForOtherKeysAreDropped(t *testing.T) {
	h := newHarness(t, "/a/", "/b/")
	h.load(t)

	h.c.HandleEvent(Event{Type: EventReady, Key: "/b/", Duration: 300})
	assert.False(t, h.c.State().WidgetReady)

	h.c.HandleEvent(Event{Type: EventPlay, Key: "/a/"})
	assert.False(t, h.c.State().IsPlaying, "play before ready is dropped")

	h.ready(300)
	h.c.HandleEvent(Event{Type: EventPlay, Key: "/b/"})
	assert.False(t, h.c.State().IsPlaying)
}

func TestProgressTracksCurrentTrack(t *testing.T) {
	h := newHarness(t, "/a/")
	h.source.tracks["/a/"] = []domain.Track{
		{StartTime: "00:00", ArtistName: "Intro", TrackName: "One"},
		{StartTime: "01:00", ArtistName: "Second", TrackName: "Two"},
	}
	h.load(t)
	h.ready(300)

	h.c.HandleEvent(Event{Type: EventProgress, Position: 70, Duration: 300})
	state := h.c.State()
	assert.Equal(t, 1, state.CurrentTrackIndex)
	require.NotNil(t, state.CurrentTrack)
	assert.Equal(t, "Two", state.CurrentTrack.TrackName)
}

func TestProgressRecordedOnInterval(t *testing.T) {
	h := newHarness(t, "/a/")
	h.load(t)
	h.ready(300)
	h.c.HandleEvent(Event{Type: EventPlay})
	h.c.HandleEvent(Event{Type: EventProgress, Position: 30})

	_, ok := h.tracker.Get("/a/")
	assert.False(t, ok, "progress events alone are not persisted")

	h.clock.Add(DefaultProgressInterval)
	assert.Eventually(t, func() bool {
		entry, ok := h.tracker.Get("/a/")
		return ok && entry.Position == 30
	}, time.Second, 10*time.Millisecond)
}

func TestShareCurrentMix(t *testing.T) {
	h := newHarness(t, "/dj/mix-one/")
	h.load(t)
	h.clip.On("WriteAll", "https://mixes.example.com/?mix=%2Fdj%2Fmix-one%2F").Return(nil)

	link, err := h.c.ShareCurrentMix()
	require.NoError(t, err)
	assert.Equal(t, "https://mixes.example.com/?mix=%2Fdj%2Fmix-one%2F", link)
	assert.Equal(t, shareCopied, h.c.State().ShareMessage)
	h.clip.AssertExpectations(t)

	// Sharing again restarts the timer.
	h.clock.Add(2 * time.Second)
	_, _ = h.c.ShareCurrentMix()
	h.clock.Add(2 * time.Second)
	assert.Equal(t, shareCopied, h.c.State().ShareMessage)

	h.clock.Add(time.Second)
	assert.Eventually(t, func() bool {
		return h.c.State().ShareMessage == ""
	}, time.Second, 10*time.Millisecond)
}

func TestShareClipboardFailure(t *testing.T) {
	h := newHarness(t, "/a/")
	h.load(t)
	h.clip.On("WriteAll", mock.Anything).Return(errors.New("no display"))

	_, err := h.c.ShareCurrentMix()
	assert.NoError(t, err)
	assert.Equal(t, shareFailed, h.c.State().ShareMessage)
}

func TestShareWithoutMix(t *testing.T) {
	h := newHarness(t)
	link, err := h.c.ShareCurrentMix()
	assert.ErrorIs(t, err, ErrNoMixes)
	assert.Empty(t, link)
	assert.Equal(t, shareEmpty, h.c.State().ShareMessage)
	h.clip.AssertNotCalled(t, "WriteAll", mock.Anything)
}

func TestSubscribe(t *testing.T) {
	h := newHarness(t, "/a/", "/b/")

	var mu sync.Mutex
	var keys []string
	unsubscribe := h.c.Subscribe(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		keys = append(keys, s.CurrentKey)
	})

	h.load(t)
	h.c.Next()
	unsubscribe()
	h.c.Next()

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, keys)
	assert.Equal(t, "/b/", keys[len(keys)-1])
}

func TestResyncRestoresPosition(t *testing.T) {
	h := newHarness(t, "/a/")
	h.load(t)
	h.ready(300)
	h.c.HandleEvent(Event{Type: EventProgress, Position: 80})

	h.c.Resync()
	assert.False(t, h.c.State().WidgetReady)

	h.widget.Reset()
	h.ready(300)
	calls := strings.Join(h.widget.Calls(), ",")
	assert.Contains(t, calls, "seek 80")
	assert.NotContains(t, h.widget.Calls(), "play", "a paused mix stays paused")
}

func TestResyncResumesPlayback(t *testing.T) {
	h := newHarness(t, "/a/")
	h.load(t)
	h.ready(300)
	h.c.HandleEvent(Event{Type: EventPlay})
	h.c.HandleEvent(Event{Type: EventProgress, Position: 80})
	require.True(t, h.c.State().IsPlaying)

	h.c.Resync()
	assert.False(t, h.c.State().IsPlaying, "playing is only confirmed by the widget")

	h.widget.Reset()
	h.ready(300)
	calls := h.widget.Calls()
	require.NotEmpty(t, calls)
	assert.Contains(t, calls, "seek 80")
	assert.Equal(t, "play", calls[len(calls)-1])
}
