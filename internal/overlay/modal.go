package overlay

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// DefaultCloseGrace is how long content outlives Close, so the exit
// transition still has something to render.
const DefaultCloseGrace = 300 * time.Millisecond

// Content is what the single modal slot shows.
type Content struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Component string `json:"component" binding:"required"`

	// AutoClose closes the modal after the given time. Zero disables it.
	AutoClose time.Duration `json:"-"`
}

type contentJSON struct {
	ID               string `json:"id"`
	Title            string `json:"title,omitempty"`
	Component        string `json:"component"`
	AutoCloseTimeout int64  `json:"autoCloseTimeout,omitempty"`
}

// MarshalJSON writes AutoClose as autoCloseTimeout in milliseconds.
func (c Content) MarshalJSON() ([]byte, error) {
	return json.Marshal(contentJSON{
		ID:               c.ID,
		Title:            c.Title,
		Component:        c.Component,
		AutoCloseTimeout: c.AutoClose.Milliseconds(),
	})
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var raw contentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Content{
		ID:        raw.ID,
		Title:     raw.Title,
		Component: raw.Component,
		AutoClose: time.Duration(raw.AutoCloseTimeout) * time.Millisecond,
	}
	return nil
}

type ModalState struct {
	IsOpen  bool     `json:"isOpen"`
	Content *Content `json:"content"`
}

// Modal is a single-slot modal. Opening replaces whatever is shown; there
// is no stack.
type Modal struct {
	mu    sync.Mutex
	clock clock.Clock
	grace time.Duration

	isOpen  bool
	content *Content

	autoClose  *clock.Timer
	clearTimer *clock.Timer
	// gen invalidates timer callbacks that fire after being replaced.
	gen uint64

	onChange func(isOpen bool)
}

func NewModal(clk clock.Clock, grace time.Duration) *Modal {
	if clk == nil {
		clk = clock.New()
	}
	if grace <= 0 {
		grace = DefaultCloseGrace
	}
	return &Modal{clock: clk, grace: grace}
}

// OnChange registers a hook called whenever the open flag changes.
func (m *Modal) OnChange(fn func(isOpen bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

func (m *Modal) State() ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Modal) stateLocked() ModalState {
	s := ModalState{IsOpen: m.isOpen}
	if m.content != nil {
		c := *m.content
		s.Content = &c
	}
	return s
}

// Open shows content, replacing anything already shown. Pending timers
// from earlier content are cancelled.
func (m *Modal) Open(content Content) ModalState {
	m.mu.Lock()
	m.stopTimersLocked()
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	changed := !m.isOpen
	m.content = &content
	m.isOpen = true
	m.armAutoCloseLocked()
	state, hook := m.stateLocked(), m.onChange
	m.mu.Unlock()

	if changed && hook != nil {
		hook(true)
	}
	return state
}

// Switch replaces the content without a close/open transition. On a
// closed modal the new content is still cleared after the grace period.
func (m *Modal) Switch(content Content) ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()

	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	m.content = &content
	if m.isOpen {
		m.stopTimersLocked()
		m.armAutoCloseLocked()
	} else {
		m.closeLocked()
	}
	return m.stateLocked()
}

// Close hides the modal at once. Content is kept for the grace period.
func (m *Modal) Close() ModalState {
	m.mu.Lock()
	if !m.isOpen {
		state := m.stateLocked()
		m.mu.Unlock()
		return state
	}
	m.closeLocked()
	state, hook := m.stateLocked(), m.onChange
	m.mu.Unlock()

	if hook != nil {
		hook(false)
	}
	return state
}

func (m *Modal) closeLocked() {
	m.stopTimersLocked()
	m.isOpen = false

	gen := m.gen
	m.clearTimer = m.clock.AfterFunc(m.grace, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.gen != gen || m.isOpen {
			return
		}
		m.content = nil
		m.clearTimer = nil
	})
}

func (m *Modal) armAutoCloseLocked() {
	if m.content == nil || m.content.AutoClose <= 0 {
		return
	}
	gen := m.gen
	m.autoClose = m.clock.AfterFunc(m.content.AutoClose, func() {
		m.mu.Lock()
		if m.gen != gen || !m.isOpen {
			m.mu.Unlock()
			return
		}
		m.closeLocked()
		hook := m.onChange
		m.mu.Unlock()

		if hook != nil {
			hook(false)
		}
	})
}

func (m *Modal) stopTimersLocked() {
	m.gen++
	if m.autoClose != nil {
		m.autoClose.Stop()
		m.autoClose = nil
	}
	if m.clearTimer != nil {
		m.clearTimer.Stop()
		m.clearTimer = nil
	}
}

// Stop cancels every pending timer.
func (m *Modal) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimersLocked()
}
