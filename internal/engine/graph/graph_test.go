package graph

import (
	"reflect"
	"testing"

	"gibridge/internal/engine/deps"
	"gibridge/internal/engine/resolver"
	"gibridge/internal/engine/typesys"
)

func entries(modules ...string) []deps.Entry {
	out := make([]deps.Entry, 0, len(modules))
	for _, m := range modules {
		out = append(out, deps.Entry{Priority: deps.PriorityNormal, Module: m, Line: deps.AnchorLine})
	}
	return out
}

func TestGraph_AddRemoveFile(t *testing.T) {
	g := NewGraph()
	g.AddFile("/src/app.py", "app", entries("gi.repository.Gtk", "gi.repository.GLib"))

	if g.FileCount() != 1 {
		t.Errorf("Expected 1 file, got %d", g.FileCount())
	}
	want := []string{"app", "gi.repository.GLib", "gi.repository.Gtk"}
	if got := g.Modules(); !reflect.DeepEqual(got, want) {
		t.Errorf("Modules() = %v, want %v", got, want)
	}
	mod, ok := g.GetModule("gi.repository.Gtk")
	if !ok || !mod.Synthetic {
		t.Errorf("Expected synthetic module for gi.repository.Gtk, got %+v", mod)
	}
	if deps := g.Dependents("gi.repository.Gtk"); !reflect.DeepEqual(deps, []string{"/src/app.py"}) {
		t.Errorf("Dependents = %v", deps)
	}

	g.RemoveFile("/src/app.py")
	if g.FileCount() != 0 {
		t.Errorf("Expected 0 files, got %d", g.FileCount())
	}
	if g.ModuleCount() != 0 {
		t.Errorf("Expected 0 modules, got %d", g.ModuleCount())
	}
	if g.HasModule("gi.repository.Gtk") {
		t.Error("Expected orphaned synthetic module to be dropped")
	}
}

func TestGraph_SharedSyntheticModuleSurvivesPartialRemoval(t *testing.T) {
	g := NewGraph()
	g.AddFile("/src/a.py", "a", entries("gi.repository.Gtk"))
	g.AddFile("/src/b.py", "b", entries("gi.repository.Gtk", "gi.repository.Gdk"))

	g.RemoveFile("/src/b.py")
	if !g.HasModule("gi.repository.Gtk") {
		t.Error("gi.repository.Gtk is still imported by a.py")
	}
	if g.HasModule("gi.repository.Gdk") {
		t.Error("gi.repository.Gdk should be dropped with b.py")
	}
}

func TestGraph_AddFileReplacesEdges(t *testing.T) {
	g := NewGraph()
	g.AddFile("/src/a.py", "a", entries("gi.repository.Gtk"))
	g.AddFile("/src/a.py", "a", entries("gi.repository.Gio"))

	if g.HasModule("gi.repository.Gtk") {
		t.Error("stale dependency kept after re-adding file")
	}
	edges := g.Imports("/src/a.py")
	if len(edges) != 1 || edges[0].To != "gi.repository.Gio" {
		t.Errorf("Imports = %+v", edges)
	}
	if mod, _ := g.GetModule("a"); len(mod.Files) != 1 {
		t.Errorf("Expected one file for module a, got %v", mod.Files)
	}
}

func TestGraph_BuildOrder(t *testing.T) {
	g := NewGraph()
	g.AddFile("/src/a.py", "a", []deps.Entry{
		{Priority: 20, Module: "gi.repository.Pango", Line: 1},
		{Priority: 10, Module: "gi.repository.Gtk", Line: 1},
	})
	g.AddFile("/src/b.py", "b", []deps.Entry{
		{Priority: 5, Module: "gi.repository.Pango", Line: 1},
		{Priority: 10, Module: "gi.repository.Gdk", Line: 1},
		{Priority: 10, Module: "a", Line: 1},
	})

	want := []string{"gi.repository.Pango", "gi.repository.Gdk", "gi.repository.Gtk"}
	if got := g.BuildOrder(); !reflect.DeepEqual(got, want) {
		t.Errorf("BuildOrder() = %v, want %v", got, want)
	}
}

func TestGraph_ResolvedCache(t *testing.T) {
	g := NewGraph()
	g.AddFile("/src/a.py", "a", entries("gi.repository.Gtk"))

	name := "gi.repository.Gtk.Window"
	g.Store(name, resolver.Result{Outcome: resolver.Deferred, Name: name})
	if _, ok := g.Lookup(name); ok {
		t.Fatal("deferred results must not be cached")
	}

	res := resolver.Result{Outcome: resolver.Resolved, Name: name, Type: typesys.TypeObject(name)}
	g.Store(name, res)
	got, ok := g.Lookup(name)
	if !ok || !got.Type.Equal(res.Type) {
		t.Fatalf("Lookup = %+v, %v", got, ok)
	}

	if n := g.Invalidate("gi.repository.Gtk"); n != 1 {
		t.Errorf("Invalidate removed %d entries, want 1", n)
	}
	if _, ok := g.Lookup(name); ok {
		t.Error("expected cache entry to be invalidated")
	}

	g.Store(name, res)
	g.RemoveFile("/src/a.py")
	if _, ok := g.Lookup(name); ok {
		t.Error("dropping a module must invalidate its cached names")
	}
}
