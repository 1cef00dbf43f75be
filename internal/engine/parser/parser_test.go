package parser

import (
	"testing"

	"gibridge/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, code string) *File {
	t.Helper()
	file, err := NewParser().ParseFile("app.py", []byte(code))
	require.NoError(t, err)
	return file
}

func TestPythonImportExtraction(t *testing.T) {
	file := parse(t, `
from __future__ import annotations
import os
import gi as gobject_introspection
from gi.repository import Gtk, Gdk as D
from gi.repository.GLib import MainLoop, idle_add
from . import local_mod
from ..pkg.mod import thing
from gi.repository import *
`)

	require.Len(t, file.Imports, 7)

	assert.Equal(t, "os", file.Imports[0].Module)
	assert.False(t, file.Imports[0].IsFrom)

	assert.Equal(t, "gi", file.Imports[1].Module)
	assert.Equal(t, "gobject_introspection", file.Imports[1].Alias)

	whole := file.Imports[2]
	assert.True(t, whole.IsFrom)
	assert.Equal(t, "gi.repository", whole.Module)
	assert.Equal(t, []ImportItem{{Name: "Gtk"}, {Name: "Gdk", Alias: "D"}}, whole.Items)
	assert.Equal(t, 5, whole.Location.Line)
	assert.Equal(t, "app.py", whole.Location.File)

	selected := file.Imports[3]
	assert.Equal(t, "gi.repository.GLib", selected.Module)
	assert.Equal(t, []string{"MainLoop", "idle_add"}, selected.ItemNames())

	assert.True(t, file.Imports[4].IsRelative)
	assert.Equal(t, "", file.Imports[4].Module)
	assert.Equal(t, "pkg.mod", file.Imports[5].Module)
	assert.Equal(t, "..pkg.mod", file.Imports[5].RawImport)

	assert.True(t, file.Imports[6].IsWildcard)
	assert.Empty(t, file.Imports[6].Items)
}

func TestPythonExtractionSkipsNestedScopes(t *testing.T) {
	file := parse(t, `
import sys

def build():
    from gi.repository import Gio
    gi.require_version("Gio", "2.0")

class Window:
    from gi.repository import Atk

if sys.platform == "linux":
    from gi.repository import Pango
else:
    pass

try:
    from gi.repository import GLib
except ImportError:
    GLib = None

with open("x") as fh:
    from gi.repository import Gdk
`)

	var modules []string
	for _, imp := range file.Imports {
		for _, item := range imp.Items {
			modules = append(modules, item.Name)
		}
	}
	assert.Equal(t, []string{"Pango", "GLib", "Gdk"}, modules)
	assert.Empty(t, file.VersionPins)
}

func TestPythonParenthesizedImportList(t *testing.T) {
	file := parse(t, `from gi.repository import (
    Gtk,
    GLib as glib,
)
`)
	require.Len(t, file.Imports, 1)
	assert.Equal(t, []string{"Gtk", "GLib"}, file.Imports[0].ItemNames())
}

func TestPythonVersionPins(t *testing.T) {
	file := parse(t, `
import gi
gi.require_version("Gtk", "3.0")
gi.require_version('Gdk', version='3.0')
gi.require_version(namespace="WebKit2", version="4.0")
from gi import require_version
require_version("Notify", "0.7")
gi.require_version(name, "1.0")
gi.require_version(f"{ns}", "1.0")
gi.require_version("Only")
from gi.repository import Gtk
`)

	require.Len(t, file.VersionPins, 4)
	assert.Equal(t, VersionPin{
		Callee:    "gi.require_version",
		Namespace: "Gtk",
		Version:   "3.0",
		Location:  Location{File: "app.py", Line: 3, Column: 1},
	}, file.VersionPins[0])
	assert.Equal(t, "Gdk", file.VersionPins[1].Namespace)
	assert.Equal(t, "WebKit2", file.VersionPins[2].Namespace)
	assert.Equal(t, "4.0", file.VersionPins[2].Version)
	assert.Equal(t, "require_version", file.VersionPins[3].Callee)
	assert.Equal(t, "0.7", file.VersionPins[3].Version)
}

func TestPythonVersionPinsRequireGiBinding(t *testing.T) {
	file := parse(t, `
foo.require_version("Gtk", "3.0")
require_version("Gdk", "3.0")
import gi as g
import foo
foo.require_version("Pango", "1.0")
g.require_version("Gtk", "4.0")
gi.require_version("GLib", "2.0")
from gi import require_version as rv
rv("Notify", "0.7")
`)

	require.Len(t, file.VersionPins, 2)
	assert.Equal(t, "g.require_version", file.VersionPins[0].Callee)
	assert.Equal(t, "Gtk", file.VersionPins[0].Namespace)
	assert.Equal(t, "4.0", file.VersionPins[0].Version)
	assert.Equal(t, "rv", file.VersionPins[1].Callee)
	assert.Equal(t, "Notify", file.VersionPins[1].Namespace)
}

func TestParseFileRejectsOtherLanguages(t *testing.T) {
	p := NewParser()
	_, err := p.ParseFile("main.go", []byte("package main"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))

	assert.True(t, p.IsSupportedPath("stubs/Gtk.PYI"))
	assert.Equal(t, []string{".py", ".pyi"}, p.SupportedExtensions())
}

func TestParseFileToleratesSyntaxErrors(t *testing.T) {
	file := parse(t, "from gi.repository import Gtk\ndef broken(:\n")
	require.NotEmpty(t, file.Imports)
	assert.Equal(t, "gi.repository", file.Imports[0].Module)
}

func TestParserPoolReuse(t *testing.T) {
	pool := NewParserPool(PythonLanguage())
	sp := pool.Get()
	assert.Equal(t, 1, pool.Active())

	tree := sp.Parse([]byte("import gi\n"), nil)
	require.NotNil(t, tree)
	assert.Equal(t, "module", tree.RootNode().Kind())
	tree.Close()

	pool.Put(sp)
	pool.Put(nil)
	assert.Equal(t, 0, pool.Active())
}
