package overlay

import "sync"

type State struct {
	IsModalOpen bool `json:"isModalOpen"`
	IsMenuOpen  bool `json:"isMenuOpen"`
	IsDimmed    bool `json:"isDimmed"`
}

// Overlay tracks what covers the page. IsDimmed is kept equal to
// IsModalOpen || IsMenuOpen.
type Overlay struct {
	mu    sync.Mutex
	state State
}

func New() *Overlay {
	return &Overlay{}
}

func (o *Overlay) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Overlay) SetModalOpen(open bool) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.IsModalOpen = open
	return o.recomputeLocked()
}

func (o *Overlay) SetMenuOpen(open bool) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.IsMenuOpen = open
	return o.recomputeLocked()
}

func (o *Overlay) ToggleMenu() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.IsMenuOpen = !o.state.IsMenuOpen
	return o.recomputeLocked()
}

// CloseAll clears every flag at once.
func (o *Overlay) CloseAll() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = State{}
	return o.state
}

func (o *Overlay) recomputeLocked() State {
	o.state.IsDimmed = o.state.IsModalOpen || o.state.IsMenuOpen
	return o.state
}
