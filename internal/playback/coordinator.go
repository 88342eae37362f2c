package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/benbjohnson/clock"
	"github.com/jaki95/mixplayer/internal/domain"
	"github.com/jaki95/mixplayer/internal/tracklist"
)

const (
	DefaultProgressInterval = 5 * time.Second
	DefaultShareMessageTTL  = 3 * time.Second
	DefaultTrackTolerance   = 2

	shareCopied = "Link copied to clipboard"
	shareFailed = "Could not copy link"
	shareEmpty  = "Nothing to share"
)

// Options tune a Coordinator. Zero values fall back to the defaults above.
type Options struct {
	ProgressInterval time.Duration
	ShareMessageTTL  time.Duration
	ShareBaseURL     string
	WidgetBaseURL    string
	TrackTolerance   int

	Clock     clock.Clock
	Rand      *rand.Rand
	Clipboard Clipboard
}

// systemClipboard writes to the OS clipboard.
type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Coordinator owns the playlist, the playback flags and the widget. Every
// operation runs under one mutex so user commands, widget callbacks and
// timer fires never interleave.
type Coordinator struct {
	mu sync.Mutex

	widget    Widget
	source    MixSource
	progress  ProgressRecorder
	clipboard Clipboard
	clock     clock.Clock
	rng       *rand.Rand
	opts      Options

	phase       Phase
	isPlaying   bool
	isLoading   bool
	keys        []string
	index       int
	duration    float64
	position    float64
	volume      float64
	lastVolume  float64
	shuffleMode bool
	filters     domain.Filters
	err         string

	widgetReady bool
	widgetURL   string
	ended       bool
	autoplay    bool
	pendingSeek *float64
	tracks      []domain.Track
	trackIndex  int

	shuffle *shuffler
	loadGen uint64

	tickStop   chan struct{}
	shareMsg   string
	shareGen   uint64
	shareTimer *clock.Timer

	listeners []func(State)
	closed    bool
}

func New(widget Widget, source MixSource, progress ProgressRecorder, opts Options) *Coordinator {
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if opts.ShareMessageTTL <= 0 {
		opts.ShareMessageTTL = DefaultShareMessageTTL
	}
	if opts.TrackTolerance <= 0 {
		opts.TrackTolerance = DefaultTrackTolerance
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Clipboard == nil {
		opts.Clipboard = systemClipboard{}
	}

	return &Coordinator{
		widget:     widget,
		source:     source,
		progress:   progress,
		clipboard:  opts.Clipboard,
		clock:      opts.Clock,
		rng:        opts.Rand,
		opts:       opts,
		phase:      PhaseIdle,
		volume:     1,
		lastVolume: 1,
		trackIndex: -1,
		shuffle:    newShuffler(opts.Rand),
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned func removes it.
func (c *Coordinator) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listeners = append(c.listeners, fn)
	id := len(c.listeners) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if id < len(c.listeners) {
			c.listeners[id] = nil
		}
	}
}

// State returns a snapshot of the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() State {
	s := State{
		Phase:             c.phase,
		IsPlaying:         c.isPlaying,
		IsLoading:         c.isLoading,
		WidgetReady:       c.widgetReady,
		WidgetURL:         c.widgetURL,
		CurrentIndex:      c.index,
		CurrentKey:        c.currentKeyLocked(),
		CurrentTrackIndex: c.trackIndex,
		Duration:          c.duration,
		Position:          c.position,
		Volume:            c.volume,
		Keys:              append([]string(nil), c.keys...),
		ShuffleMode:       c.shuffleMode,
		Filters:           c.filters,
		Error:             c.err,
		ShareMessage:      c.shareMsg,
	}
	if c.trackIndex >= 0 && c.trackIndex < len(c.tracks) {
		track := c.tracks[c.trackIndex]
		s.CurrentTrack = &track
	}
	if c.progress != nil {
		s.MixProgress = c.progress.All()
	} else {
		s.MixProgress = map[string]domain.MixProgress{}
	}
	return s
}

// notify hands the current snapshot to every listener. Must be called
// without holding mu.
func (c *Coordinator) notify() {
	c.mu.Lock()
	state := c.snapshotLocked()
	listeners := append([]func(State){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		if fn != nil {
			fn(state)
		}
	}
}

func (c *Coordinator) currentKeyLocked() string {
	if c.index < 0 || c.index >= len(c.keys) {
		return ""
	}
	return c.keys[c.index]
}

// LoadMixes fetches the keys matching filters and makes them the playlist.
// The current index becomes target when it is in range, else 0. If a
// newer LoadMixes is issued before this one resolves, this result is
// dropped and ErrSuperseded returned.
func (c *Coordinator) LoadMixes(ctx context.Context, filters domain.Filters, target ...int) error {
	c.mu.Lock()
	c.loadGen++
	gen := c.loadGen
	c.isLoading = true
	c.phase = PhaseLoading
	c.mu.Unlock()
	c.notify()

	keys, err := c.source.MixKeys(ctx, filters)

	c.mu.Lock()
	if gen != c.loadGen {
		c.mu.Unlock()
		slog.Debug("Discarding stale mix load", "generation", gen, "latest", c.latestGen())
		return ErrSuperseded
	}

	c.isLoading = false
	if err != nil {
		c.err = err.Error()
		c.phase = PhaseError
		c.mu.Unlock()
		slog.Error("Failed to load mixes", "error", err)
		c.notify()
		return fmt.Errorf("failed to load mixes: %w", err)
	}

	prevKey := c.currentKeyLocked()
	c.err = ""
	c.filters = filters
	c.keys = append([]string(nil), keys...)
	c.index = 0
	if len(target) > 0 && target[0] >= 0 && target[0] < len(keys) {
		c.index = target[0]
	}
	c.shuffle.reset(len(c.keys), c.index)

	switch {
	case len(c.keys) == 0:
		c.unloadLocked()
	case c.currentKeyLocked() != prevKey || c.widgetURL == "":
		c.autoplay = false
		c.loadCurrentLocked(false)
	default:
		c.phase = c.settledPhaseLocked()
	}
	c.mu.Unlock()

	slog.Info("Mixes loaded", "count", len(keys), "currentKey", c.State().CurrentKey)
	c.notify()
	return nil
}

func (c *Coordinator) latestGen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadGen
}

func (c *Coordinator) settledPhaseLocked() Phase {
	switch {
	case c.err != "":
		return PhaseError
	case len(c.keys) == 0:
		return PhaseIdle
	case c.isPlaying:
		return PhasePlaying
	case c.widgetReady && c.position > 0:
		return PhasePaused
	default:
		return PhaseReady
	}
}

func (c *Coordinator) unloadLocked() {
	c.stopProgressLoopLocked()
	c.index = 0
	c.isPlaying = false
	c.widgetReady = false
	c.widgetURL = ""
	c.position = 0
	c.duration = 0
	c.ended = false
	c.autoplay = false
	c.pendingSeek = nil
	c.tracks = nil
	c.trackIndex = -1
	c.phase = PhaseIdle
}

// loadCurrentLocked points the widget at the current key. When
// fromSaved is set and the mix has unfinished progress, the saved
// position is applied on the widget's next ready event.
func (c *Coordinator) loadCurrentLocked(fromSaved bool) {
	key := c.currentKeyLocked()

	c.stopProgressLoopLocked()
	c.isPlaying = false
	c.widgetReady = false
	c.ended = false
	c.position = 0
	c.duration = 0
	c.pendingSeek = nil
	c.trackIndex = -1
	c.phase = PhaseReady

	if fromSaved && c.progress != nil {
		if p, ok := c.progress.Get(key); ok && p.Status != domain.StatusComplete && p.Position > 0 {
			pos := p.Position
			c.pendingSeek = &pos
			c.duration = p.Duration
		}
	}

	c.tracks = nil
	if tracks, err := c.source.Tracks(key); err != nil {
		slog.Warn("No tracklist for mix", "key", key, "error", err)
	} else {
		c.tracks = tracks
	}

	c.widgetURL = c.widgetURLFor(key)
	if c.widget == nil {
		return
	}
	if err := c.widget.Load(c.widgetURL); err != nil {
		slog.Warn("Widget load failed", "key", key, "error", err)
	}
}

func (c *Coordinator) widgetURLFor(key string) string {
	base := c.opts.WidgetBaseURL
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "feed=" + url.QueryEscape(key)
}

// Resync reloads the current mix into a freshly attached widget and
// resumes from the last known position, playing again if it was playing.
func (c *Coordinator) Resync() {
	c.mu.Lock()
	if c.currentKeyLocked() == "" {
		c.mu.Unlock()
		return
	}
	pos := c.position
	resume := c.isPlaying || c.autoplay
	c.loadCurrentLocked(false)
	if pos > 0 {
		c.pendingSeek = &pos
	}
	c.autoplay = resume
	c.mu.Unlock()
	c.notify()
}

// Play asks the widget to start. isPlaying only flips when the widget
// confirms with a play event. Before the widget is ready the request is
// remembered and issued on ready.
func (c *Coordinator) Play() {
	c.mu.Lock()
	if c.currentKeyLocked() == "" {
		c.mu.Unlock()
		return
	}
	if !c.widgetReady {
		c.autoplay = true
		c.mu.Unlock()
		return
	}
	c.sendLocked("play", c.widget.Play)
	c.mu.Unlock()
}

// Pause asks the widget to pause.
func (c *Coordinator) Pause() {
	c.mu.Lock()
	c.autoplay = false
	if c.currentKeyLocked() == "" || !c.widgetReady {
		c.mu.Unlock()
		return
	}
	c.sendLocked("pause", c.widget.Pause)
	c.mu.Unlock()
}

// Toggle pauses when playing and plays otherwise.
func (c *Coordinator) Toggle() {
	c.mu.Lock()
	playing := c.isPlaying
	c.mu.Unlock()

	if playing {
		c.Pause()
	} else {
		c.Play()
	}
}

func (c *Coordinator) sendLocked(command string, fn func() error) {
	if c.widget == nil {
		return
	}
	if err := fn(); err != nil {
		slog.Warn("Widget command failed", "command", command, "error", err)
	}
}

// Next moves to the following mix, wrapping at the end. In shuffle mode
// the next mix is drawn from the shuffle permutation.
func (c *Coordinator) Next() {
	c.step(1)
}

// Previous moves to the preceding mix, wrapping at the start. In shuffle
// mode it walks back through the mixes drawn so far.
func (c *Coordinator) Previous() {
	c.step(-1)
}

func (c *Coordinator) step(dir int) {
	c.mu.Lock()
	n := len(c.keys)
	if n <= 1 {
		c.mu.Unlock()
		return
	}

	leaving := c.leavingProgressLocked()

	var idx int
	switch {
	case c.shuffleMode && dir > 0:
		idx = c.shuffle.next(n, c.index)
	case c.shuffleMode:
		var ok bool
		if idx, ok = c.shuffle.prev(n); !ok {
			idx = (c.index - 1 + n) % n
		}
	default:
		idx = (c.index + dir + n) % n
	}

	c.autoplay = c.isPlaying || c.autoplay || c.ended
	c.index = idx
	c.loadCurrentLocked(false)
	c.mu.Unlock()

	c.record(leaving)
	c.notify()
}

// GoToTrack jumps to the mix at index and starts it once the widget is
// ready. Out of range indices are ignored.
func (c *Coordinator) GoToTrack(index int, fromSavedPosition bool) {
	c.mu.Lock()
	if index < 0 || index >= len(c.keys) {
		c.mu.Unlock()
		return
	}
	leaving := c.leavingProgressLocked()
	if index != c.index && c.shuffleMode {
		c.shuffle.history = append(c.shuffle.history, c.index)
	}
	c.index = index
	c.autoplay = true
	c.loadCurrentLocked(fromSavedPosition)
	c.mu.Unlock()

	c.record(leaving)
	c.notify()
}

// PlayRandomFromCurrentList jumps to a uniformly random mix, never the
// current one when there is a choice.
func (c *Coordinator) PlayRandomFromCurrentList() {
	c.mu.Lock()
	n := len(c.keys)
	if n == 0 {
		c.mu.Unlock()
		return
	}
	idx := 0
	if n > 1 {
		idx = c.rng.Intn(n - 1)
		if idx >= c.index {
			idx++
		}
	}
	c.mu.Unlock()

	c.GoToTrack(idx, false)
}

// Seek moves the playhead. The position is clamped to the mix duration.
func (c *Coordinator) Seek(position float64) {
	c.mu.Lock()
	key := c.currentKeyLocked()
	if key == "" {
		c.mu.Unlock()
		return
	}
	if position < 0 {
		position = 0
	}
	if !c.widgetReady {
		c.pendingSeek = &position
		c.mu.Unlock()
		return
	}
	if c.duration > 0 && position > c.duration {
		position = c.duration
	}

	c.position = position
	c.ended = false
	c.updateTrackIndexLocked()
	if c.widget != nil {
		if err := c.widget.Seek(position); err != nil {
			slog.Warn("Widget command failed", "command", "seek", "error", err)
		}
	}
	update := progressUpdate{key: key, position: position, duration: c.duration}
	c.mu.Unlock()

	c.record(&update)
	c.notify()
}

// SetVolume sets the volume, clamped to [0, 1].
func (c *Coordinator) SetVolume(v float64) {
	c.mu.Lock()
	c.setVolumeLocked(v)
	c.mu.Unlock()
	c.notify()
}

// ToggleMute switches between silence and the last audible volume.
func (c *Coordinator) ToggleMute() {
	c.mu.Lock()
	if c.volume > 0 {
		c.setVolumeLocked(0)
	} else {
		c.setVolumeLocked(c.lastVolume)
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Coordinator) setVolumeLocked(v float64) {
	v = max(0, min(1, v))
	if v > 0 {
		c.lastVolume = v
	}
	c.volume = v
	if c.widgetReady && c.widget != nil {
		if err := c.widget.SetVolume(v); err != nil {
			slog.Warn("Widget command failed", "command", "volume", "error", err)
		}
	}
}

// SetShuffle turns shuffle mode on or off. Turning it on starts a fresh
// permutation.
func (c *Coordinator) SetShuffle(on bool) {
	c.mu.Lock()
	if on && !c.shuffleMode {
		c.shuffle.reset(len(c.keys), c.index)
	}
	c.shuffleMode = on
	c.mu.Unlock()
	c.notify()
}

func (c *Coordinator) ToggleShuffle() {
	c.mu.Lock()
	on := !c.shuffleMode
	c.mu.Unlock()
	c.SetShuffle(on)
}

// UpdateMixProgress records progress for key.
func (c *Coordinator) UpdateMixProgress(ctx context.Context, key string, position, duration float64) {
	if c.progress == nil || key == "" {
		return
	}
	c.progress.Update(ctx, key, position, duration)
	c.notify()
}

// ShareCurrentMix copies a link to the current mix to the clipboard and
// shows a short-lived message with the outcome. A clipboard failure is
// reported only through the message.
func (c *Coordinator) ShareCurrentMix() (string, error) {
	c.mu.Lock()
	key := c.currentKeyLocked()
	c.mu.Unlock()

	msg := shareEmpty
	link := ""
	if key != "" {
		link = ShareURL(c.opts.ShareBaseURL, key)
		msg = shareCopied
		if err := c.clipboard.WriteAll(link); err != nil {
			slog.Warn("Failed to copy share link", "key", key, "error", err)
			msg = shareFailed
		}
	}

	c.mu.Lock()
	c.shareMsg = msg
	c.shareGen++
	gen := c.shareGen
	if c.shareTimer != nil {
		c.shareTimer.Stop()
	}
	c.shareTimer = c.clock.AfterFunc(c.opts.ShareMessageTTL, func() {
		c.mu.Lock()
		if c.shareGen != gen {
			c.mu.Unlock()
			return
		}
		c.shareMsg = ""
		c.shareTimer = nil
		c.mu.Unlock()
		c.notify()
	})
	c.mu.Unlock()

	c.notify()
	if key == "" {
		return "", ErrNoMixes
	}
	return link, nil
}

// ShareURL builds the link that reopens key.
func ShareURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/?mix=" + url.QueryEscape(key)
}

// HandleEvent applies a widget lifecycle event.
func (c *Coordinator) HandleEvent(ev Event) {
	c.mu.Lock()
	key := c.currentKeyLocked()
	if key == "" || (ev.Key != "" && ev.Key != key) {
		c.mu.Unlock()
		slog.Debug("Dropping widget event", "event", ev.Type, "eventKey", ev.Key, "currentKey", key)
		return
	}
	// Until ready, anything but ready belongs to the previous load.
	if ev.Type != EventReady && !c.widgetReady {
		c.mu.Unlock()
		slog.Debug("Dropping widget event before ready", "event", ev.Type, "currentKey", key)
		return
	}

	var update *progressUpdate
	advance := false

	switch ev.Type {
	case EventReady:
		c.onReadyLocked(ev)
	case EventPlay:
		c.isPlaying = true
		c.ended = false
		c.autoplay = false
		c.phase = PhasePlaying
		c.startProgressLoopLocked()
	case EventPause:
		if c.ended {
			c.mu.Unlock()
			return
		}
		c.applyPositionLocked(ev)
		c.isPlaying = false
		c.phase = PhasePaused
		c.stopProgressLoopLocked()
		update = c.leavingProgressLocked()
	case EventEnded:
		if c.ended {
			c.mu.Unlock()
			return
		}
		c.applyPositionLocked(ev)
		c.ended = true
		c.isPlaying = false
		c.stopProgressLoopLocked()
		if c.duration > 0 {
			c.position = c.duration
		}
		c.phase = PhasePaused
		update = &progressUpdate{key: key, position: c.position, duration: c.duration}
		advance = len(c.keys) > 1
	case EventProgress:
		c.applyPositionLocked(ev)
	default:
		c.mu.Unlock()
		slog.Debug("Ignoring unknown widget event", "event", ev.Type)
		return
	}
	c.mu.Unlock()

	c.record(update)
	if advance {
		c.Next()
		return
	}
	c.notify()
}

func (c *Coordinator) onReadyLocked(ev Event) {
	if ev.Duration > 0 {
		c.duration = ev.Duration
	}
	if c.widgetReady {
		return
	}
	c.widgetReady = true
	if c.phase == PhaseLoading || c.phase == PhaseIdle {
		c.phase = PhaseReady
	}
	if c.widget == nil {
		return
	}

	if err := c.widget.SetVolume(c.volume); err != nil {
		slog.Warn("Widget command failed", "command", "volume", "error", err)
	}
	if c.pendingSeek != nil {
		pos := *c.pendingSeek
		c.pendingSeek = nil
		if c.duration > 0 && pos > c.duration {
			pos = c.duration
		}
		if err := c.widget.Seek(pos); err != nil {
			slog.Warn("Widget command failed", "command", "seek", "error", err)
		}
		c.position = pos
		c.updateTrackIndexLocked()
	}
	if c.autoplay {
		c.autoplay = false
		if err := c.widget.Play(); err != nil {
			slog.Warn("Widget command failed", "command", "play", "error", err)
		}
	}
}

func (c *Coordinator) applyPositionLocked(ev Event) {
	if ev.Duration > 0 {
		c.duration = ev.Duration
	}
	if ev.Type == EventPause && ev.Position == 0 {
		return
	}
	pos := max(0, ev.Position)
	if c.duration > 0 && pos > c.duration {
		pos = c.duration
	}
	c.position = pos
	c.updateTrackIndexLocked()
}

func (c *Coordinator) updateTrackIndexLocked() {
	c.trackIndex = tracklist.FindTrackIndexAtPosition(c.tracks, c.position, c.duration, float64(c.opts.TrackTolerance))
}

type progressUpdate struct {
	key      string
	position float64
	duration float64
}

// leavingProgressLocked captures progress worth saving before the current
// mix is replaced or paused.
func (c *Coordinator) leavingProgressLocked() *progressUpdate {
	key := c.currentKeyLocked()
	if key == "" || c.position <= 0 {
		return nil
	}
	return &progressUpdate{key: key, position: c.position, duration: c.duration}
}

func (c *Coordinator) record(u *progressUpdate) {
	if u == nil || c.progress == nil {
		return
	}
	c.progress.Update(context.Background(), u.key, u.position, u.duration)
}

func (c *Coordinator) startProgressLoopLocked() {
	if c.tickStop != nil || c.closed {
		return
	}
	stop := make(chan struct{})
	ticker := c.clock.Ticker(c.opts.ProgressInterval)
	c.tickStop = stop

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.onProgressTick()
			}
		}
	}()
}

func (c *Coordinator) stopProgressLoopLocked() {
	if c.tickStop != nil {
		close(c.tickStop)
		c.tickStop = nil
	}
}

func (c *Coordinator) onProgressTick() {
	c.mu.Lock()
	if !c.isPlaying {
		c.mu.Unlock()
		return
	}
	update := c.leavingProgressLocked()
	c.mu.Unlock()

	if update == nil {
		return
	}
	c.record(update)
	c.notify()
}

// Close stops every timer. The coordinator must not be used afterwards.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.stopProgressLoopLocked()
	if c.shareTimer != nil {
		c.shareTimer.Stop()
		c.shareTimer = nil
	}
	c.shareGen++
	return nil
}

// IsSuperseded reports whether err came from a load that lost to a newer one.
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}
