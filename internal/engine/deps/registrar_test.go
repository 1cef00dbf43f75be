package deps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	r := NewRegistrar("gi.repository", PriorityNormal)

	got := r.Register([]string{"Gtk", "Gdk", "GLib"})
	assert.Equal(t, []Entry{
		{Priority: 10, Module: "gi.repository.Gtk", Line: 1},
		{Priority: 10, Module: "gi.repository.Gdk", Line: 1},
		{Priority: 10, Module: "gi.repository.GLib", Line: 1},
	}, got)
}

func TestRegisterEmpty(t *testing.T) {
	r := NewRegistrar("gi.repository", PriorityNormal)
	assert.Empty(t, r.Register(nil))
	assert.Empty(t, r.Register([]string{}))
}

func TestRegisterPassesNamesThrough(t *testing.T) {
	r := NewRegistrar("gi.repository", 3)
	got := r.Register([]string{"Gtk-3.0/../x"})
	assert.Equal(t, []Entry{{Priority: 3, Module: "gi.repository.Gtk-3.0/../x", Line: 1}}, got)
}

func TestRegisterIsPure(t *testing.T) {
	r := NewRegistrar("gi.repository", PriorityNormal)
	in := []string{"Pango", "Gtk"}
	assert.Equal(t, r.Register(in), r.Register(in))
	assert.Equal(t, []string{"Pango", "Gtk"}, in)
}
