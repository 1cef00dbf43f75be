package metadata_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"gibridge/internal/core/errors"
	"gibridge/internal/engine/metadata"
	"gibridge/internal/engine/metadata/metadatatest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*metadata.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meta", "index.db")
	store, err := metadata.OpenStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestStoreImportAndRead(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	for _, doc := range metadatatest.Documents() {
		require.NoError(t, store.Import(ctx, doc))
	}

	assert.Equal(t, []string{"GObject", "Gdk", "Gtk"}, store.Namespaces())
	assert.True(t, store.IsLoaded("Gtk"))
	assert.False(t, store.IsLoaded("Pango"))

	syms, err := store.Symbols("Gtk")
	require.NoError(t, err)
	window := syms["Window"]
	assert.Equal(t, metadata.KindClass, window.Kind)
	assert.Equal(t, []string{"Bin"}, window.Parents)
	prop, ok := window.Property("default_width")
	require.True(t, ok)
	assert.Equal(t, "gint", prop.Type.Name)

	_, err = store.Symbols("Pango")
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestStoreReimportReplacesSymbols(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Import(ctx, metadatatest.Gdk()))
	_, err := store.Symbols("Gdk")
	require.NoError(t, err)

	smaller := metadatatest.Gdk()
	smaller.Symbols = nil
	require.NoError(t, store.Import(ctx, smaller))

	syms, err := store.Symbols("Gdk")
	require.NoError(t, err)
	assert.Empty(t, syms)
}

func TestStoreVersionPins(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	gtk4 := metadatatest.Gtk()
	gtk4.Version = "4.0"
	gtk4.Symbols = gtk4.Symbols[:2]
	gtk4.Dependencies = []string{"GObject-2.0", "Gdk-4.0"}
	require.NoError(t, store.Import(ctx, metadatatest.Gtk()))
	require.NoError(t, store.Import(ctx, gtk4))

	syms, err := store.Symbols("Gtk")
	require.NoError(t, err)
	assert.Len(t, syms, 2)

	require.NoError(t, store.Require("Gtk", "3.0"))
	syms, err = store.Symbols("Gtk")
	require.NoError(t, err)
	assert.Contains(t, syms, "WindowType")
	assert.Equal(t, []string{"GObject-2.0", "Gdk-3.0"}, store.Dependencies("Gtk"))

	assert.True(t, errors.IsCode(store.Require("Gtk", "1.0"), errors.CodeNotFound))

	require.NoError(t, store.Require("Gtk", ""))
	syms, err = store.Symbols("Gtk")
	require.NoError(t, err)
	assert.Len(t, syms, 2)
	assert.Equal(t, []string{"GObject-2.0", "Gdk-4.0"}, store.Dependencies("Gtk"))
	assert.Nil(t, store.Dependencies("Pango"))
}

func TestStoreImportDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, metadatatest.WriteDir(dir, metadatatest.Documents()...))

	store, _ := openTestStore(t)
	n, err := store.ImportDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, store.Namespaces(), 3)
}

func TestStoreRejectsInvalidDocuments(t *testing.T) {
	store, _ := openTestStore(t)
	err := store.Import(context.Background(), &metadata.Document{Format: 1, Namespace: "Bad", Symbols: []metadata.Symbol{{Name: "x", Kind: "union"}}})
	assert.True(t, errors.IsCode(err, errors.CodeMalformedMetadata))
	assert.Empty(t, store.Namespaces())
}

func TestStoreCorruptPayloadIsMalformed(t *testing.T) {
	store, path := openTestStore(t)
	require.NoError(t, store.Import(context.Background(), metadatatest.Gdk()))

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`UPDATE symbols SET payload = '{"name":' WHERE namespace = 'Gdk'`)
	require.NoError(t, err)

	assert.True(t, store.IsLoaded("Gdk"))
	_, err = store.Symbols("Gdk")
	assert.True(t, errors.IsCode(err, errors.CodeMalformedMetadata))
}

func TestOpenStoreValidation(t *testing.T) {
	_, err := metadata.OpenStore("  ")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = metadata.OpenStore(t.TempDir())
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}
