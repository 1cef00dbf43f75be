package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gibridge/internal/core/config"
	"gibridge/internal/core/errors"
	"gibridge/internal/core/ports"
	"gibridge/internal/engine/deps"
	"gibridge/internal/engine/metadata/metadatatest"
	"gibridge/internal/engine/resolver"
	"gibridge/internal/plugin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newTestApp returns an app over a project tree and a metadata directory
// holding the GObject, Gtk and Gdk fixtures.
func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	metaDir := t.TempDir()
	require.NoError(t, metadatatest.WriteDir(metaDir, metadatatest.Documents()...))

	project := t.TempDir()
	writeFile(t, filepath.Join(project, "app.py"), "from gi.repository import Gtk\n")
	writeFile(t, filepath.Join(project, "pkg", "window.py"), "from gi.repository.Gtk import Window\nfrom gi.repository import Gdk as D\n")
	writeFile(t, filepath.Join(project, "pkg", "window_test.py"), "from gi.repository import Pango\n")
	writeFile(t, filepath.Join(project, ".venv", "lib.py"), "from gi.repository import Gio\n")
	writeFile(t, filepath.Join(project, "README.md"), "# project\n")

	cfg := config.Default()
	cfg.Metadata.Path = metaDir
	cfg.Scan.Paths = []string{project}
	cfg.Scan.ExcludeFiles = []string{"*_test.py"}
	cfg.Watch.Debounce = 50 * time.Millisecond

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, project
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Metadata.Source = "typelib"
	_, err := New(cfg)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))

	cfg = config.Default()
	cfg.Metadata.Path = t.TempDir()
	cfg.Bridge.Root = "gi..repository"
	_, err = New(cfg)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestRunScan(t *testing.T) {
	a, project := newTestApp(t)
	svc := a.AnalysisService()

	res, err := svc.RunScan(context.Background(), ports.ScanRequest{})
	require.NoError(t, err)

	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, 2, res.FilesScanned)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, []string{"gi.repository.Gdk", "gi.repository.Gtk"}, res.Modules)

	require.Len(t, res.Files, 2)
	assert.Equal(t, filepath.Join(project, "app.py"), res.Files[0].Path)
	assert.Equal(t, []deps.Entry{{Priority: 10, Module: "gi.repository.Gtk", Line: 1}}, res.Files[0].Entries)
	assert.Equal(t, []deps.Entry{
		{Priority: 10, Module: "gi.repository.Gtk", Line: 1},
		{Priority: 10, Module: "gi.repository.Gdk", Line: 1},
	}, res.Files[1].Entries)

	assert.True(t, a.Graph.HasModule("pkg.window"))
	assert.False(t, a.Graph.HasModule("gi.repository.Pango"))
	assert.False(t, a.Graph.HasModule("gi.repository.Gio"))
}

func TestRunScan_StrictNamespacesWarns(t *testing.T) {
	a, project := newTestApp(t)
	a.Config.Bridge.StrictNamespaces = true
	require.NoError(t, a.Reload(a.Config))
	writeFile(t, filepath.Join(project, "extra.py"), "from gi.repository import Bogus\n")

	res, err := a.AnalysisService().RunScan(context.Background(), ports.ScanRequest{})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "warning: ")
	assert.Contains(t, res.Warnings[0], "gi.repository.Bogus")
	assert.NotContains(t, res.Modules, "gi.repository.Bogus")
}

func TestRunScan_FirstVersionPinWins(t *testing.T) {
	a, project := newTestApp(t)
	gtk4 := metadatatest.Gtk()
	gtk4.Version = "4.0"
	gtk4.Symbols = gtk4.Symbols[:1]
	require.NoError(t, metadatatest.WriteDir(a.CurrentConfig().Metadata.Path, gtk4))
	require.NoError(t, a.Reload(a.CurrentConfig()))

	pinned := filepath.Join(project, "a_pin.py")
	writeFile(t, pinned, "import gi\ngi.require_version('Gtk', '3.0')\nfrom gi.repository import Gtk\n")
	writeFile(t, filepath.Join(project, "b_pin.py"), "import gi\ngi.require_version('Gtk', '4.0')\nfrom gi.repository import Gtk\n")

	svc := a.AnalysisService()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		res, err := svc.RunScan(ctx, ports.ScanRequest{})
		require.NoError(t, err)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "already pinned to version 3.0")
		assert.Equal(t, []plugin.Pin{{Namespace: "Gtk", Version: "3.0", File: pinned, Line: 2}}, a.Plugin().Pins())

		got, err := svc.ResolveType(ctx, "gi.repository.Gtk.Window")
		require.NoError(t, err)
		assert.Equal(t, resolver.Resolved, got.Outcome)
	}

	require.NoError(t, a.Reload(a.CurrentConfig()))
	assert.Equal(t, []plugin.Pin{{Namespace: "Gtk", Version: "3.0", File: pinned, Line: 2}}, a.Plugin().Pins())
	got, err := svc.ResolveType(ctx, "gi.repository.Gtk.Window")
	require.NoError(t, err)
	assert.Equal(t, resolver.Resolved, got.Outcome, "reload keeps reading the pinned version")

	require.NoError(t, os.Remove(pinned))
	a.HandleChanges([]string{pinned}, []string{project})
	assert.Empty(t, a.Plugin().Pins())
	_, cached := a.Graph.Lookup("gi.repository.Gtk.Window")
	assert.False(t, cached)
}

func TestServiceResolve(t *testing.T) {
	a, _ := newTestApp(t)
	svc := a.AnalysisService()
	ctx := context.Background()

	res, err := svc.ResolveType(ctx, "gi.repository.Gtk.Window")
	require.NoError(t, err)
	assert.Equal(t, resolver.Resolved, res.Outcome)
	assert.Equal(t, "Type[gi.repository.Gtk.Window]", res.Type.String())

	cached, ok := a.Graph.Lookup("gi.repository.Gtk.Window")
	require.True(t, ok)
	assert.Equal(t, res, cached)

	res, err = svc.ResolveSignature(ctx, "gi.repository.Gdk.Screen.get_default")
	require.NoError(t, err)
	assert.Equal(t, "def () -> Optional[gi.repository.Gdk.Screen]", res.Type.String())

	res, err = svc.ResolveAttribute(ctx, "gi.repository.Gtk.Window", "get_title")
	require.NoError(t, err)
	assert.Equal(t, resolver.Resolved, res.Outcome)

	res, err = svc.ResolveAttribute(ctx, "gi.repository.Gtk.Window", "nope")
	require.NoError(t, err)
	assert.Equal(t, resolver.NoSuchAttribute, res.Outcome)

	res, err = svc.ResolveType(ctx, "os.path")
	require.NoError(t, err)
	assert.Equal(t, resolver.NotClaimed, res.Outcome)

	res, err = svc.ResolveType(ctx, "gi.repository.Pango.Layout")
	require.NoError(t, err)
	assert.Equal(t, resolver.Deferred, res.Outcome)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.ResolveType(cancelled, "gi.repository.Gtk.Window")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNamespaces(t *testing.T) {
	a, _ := newTestApp(t)
	got, err := a.AnalysisService().Namespaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"GObject", "Gdk", "Gtk"}, got)
}

func TestHandleChanges(t *testing.T) {
	a, project := newTestApp(t)
	roots := []string{project}
	_, err := a.AnalysisService().RunScan(context.Background(), ports.ScanRequest{})
	require.NoError(t, err)

	window := filepath.Join(project, "pkg", "window.py")
	app := filepath.Join(project, "app.py")
	require.NoError(t, os.Remove(window))
	writeFile(t, app, "from gi.repository import GObject\n")

	update := a.HandleChanges([]string{window, app, filepath.Join(project, "README.md")}, roots)
	assert.Equal(t, 1, update.Result.FilesScanned)
	assert.Equal(t, []string{"gi.repository.GObject"}, update.Result.Modules)
	assert.False(t, a.Graph.HasModule("pkg.window"))
	assert.False(t, a.Graph.HasModule("gi.repository.Gtk"))
}

func TestHealth(t *testing.T) {
	a, _ := newTestApp(t)
	status := a.Health(context.Background())
	assert.Equal(t, "up", status.Status)
	assert.Equal(t, 3, status.Namespaces)

	cfg := config.Default()
	cfg.Metadata.Path = t.TempDir()
	empty, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "degraded", empty.Health(context.Background()).Status)
}

func TestIndexMetadataAndSQLiteSource(t *testing.T) {
	metaDir := t.TempDir()
	require.NoError(t, metadatatest.WriteDir(metaDir, metadatatest.Documents()...))
	dbPath := filepath.Join(t.TempDir(), "state", "gi.db")

	n, err := IndexMetadata(context.Background(), dbPath, metaDir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	cfg := config.Default()
	cfg.Metadata.Source = config.SourceSQLite
	cfg.Metadata.Path = dbPath
	a, err := New(cfg)
	require.NoError(t, err)
	defer a.Close()

	res, err := a.AnalysisService().ResolveAttribute(context.Background(), "gi.repository.Gtk.Window", "title")
	require.NoError(t, err)
	assert.Equal(t, resolver.Resolved, res.Outcome)
	assert.Equal(t, "builtins.str", res.Type.String())
}

func TestReloadKeepsRunningConfigOnFailure(t *testing.T) {
	a, _ := newTestApp(t)
	before := a.Plugin()

	bad := *a.Config
	bad.Bridge.DefaultPriority = 0
	require.Error(t, a.Reload(&bad))
	assert.Same(t, before, a.Plugin())

	good := *a.Config
	good.Bridge.DefaultPriority = 20
	require.NoError(t, a.Reload(&good))
	assert.Equal(t, 20, a.Plugin().Config().DefaultPriority)
}

func TestWatch(t *testing.T) {
	a, project := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan ports.WatchUpdate, 8)
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, nil, func(u ports.WatchUpdate) { updates <- u })
	}()

	select {
	case u := <-updates:
		assert.Equal(t, 2, u.Result.FilesScanned)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial scan")
	}

	// Give the watcher time to register the tree.
	time.Sleep(200 * time.Millisecond)
	added := filepath.Join(project, "pkg", "dialog.py")
	writeFile(t, added, "from gi.repository import GObject\n")

	deadline := time.After(5 * time.Second)
	for found := false; !found; {
		select {
		case u := <-updates:
			for _, p := range u.Changed {
				found = found || p == added
			}
		case <-deadline:
			t.Fatal("timed out waiting for change update")
		}
	}
	assert.True(t, a.Graph.HasModule("gi.repository.GObject"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
