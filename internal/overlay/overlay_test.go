package overlay

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestDimmedIsOrOfFlags(t *testing.T) {
	o := New()

	steps := []struct {
		name string
		do   func() State
	}{
		{"open modal", func() State { return o.SetModalOpen(true) }},
		{"open menu", func() State { return o.SetMenuOpen(true) }},
		{"close modal", func() State { return o.SetModalOpen(false) }},
		{"toggle menu", o.ToggleMenu},
		{"toggle menu again", o.ToggleMenu},
		{"close menu", func() State { return o.SetMenuOpen(false) }},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			state := step.do()
			assert.Equal(t, state.IsModalOpen || state.IsMenuOpen, state.IsDimmed)
			assert.Equal(t, state, o.State())
		})
	}
}

func TestCloseAll(t *testing.T) {
	o := New()
	o.SetModalOpen(true)
	o.SetMenuOpen(true)

	assert.Equal(t, State{}, o.CloseAll())
}

func TestModalDrivesOverlay(t *testing.T) {
	o := New()
	m := NewModal(clock.NewMock(), 0)
	m.OnChange(func(open bool) { o.SetModalOpen(open) })

	m.Open(Content{Component: "about"})
	assert.True(t, o.State().IsDimmed)

	m.Close()
	assert.False(t, o.State().IsDimmed)
}
