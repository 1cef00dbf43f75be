package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gibridge/internal/core/errors"
	"gibridge/internal/engine/metadata/metadatatest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProject(t *testing.T) (string, string) {
	t.Helper()
	metaDir := t.TempDir()
	require.NoError(t, metadatatest.WriteDir(metaDir, metadatatest.Documents()...))

	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, "main.py"),
		[]byte("import os\nfrom gi.repository import Gtk, GObject\n"), 0o644))

	cfgPath := filepath.Join(t.TempDir(), "gibridge.toml")
	body := fmt.Sprintf("version = 1\n\n[metadata]\npath = %q\n\n[scan]\npaths = [%q]\n", metaDir, project)
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	return cfgPath, project
}

func runCmd(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfgPath, args, &out)
	return out.String(), err
}

func TestRunDeps(t *testing.T) {
	cfgPath, project := setupProject(t)
	out, err := runCmd(t, cfgPath, "deps")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(project, "main.py")+"\n"+
		"  (10, gi.repository.Gtk, 2)\n"+
		"  (10, gi.repository.GObject, 2)\n", out)
}

func TestRunResolveCommands(t *testing.T) {
	cfgPath, _ := setupProject(t)

	out, err := runCmd(t, cfgPath, "resolve", "gi.repository.Gtk.Window")
	require.NoError(t, err)
	assert.Equal(t, "resolved gi.repository.Gtk.Window: Type[gi.repository.Gtk.Window]\n", out)

	out, err = runCmd(t, cfgPath, "signature", "gi.repository.Gdk.Screen.get_default")
	require.NoError(t, err)
	assert.Contains(t, out, "def () -> Optional[gi.repository.Gdk.Screen]")

	out, err = runCmd(t, cfgPath, "attr", "gi.repository.Gtk.Window", "missing_attr")
	require.NoError(t, err)
	assert.Contains(t, out, "no-such-attribute")
	assert.Contains(t, out, "missing_attr")

	out, err = runCmd(t, cfgPath, "resolve", "os.path")
	require.NoError(t, err)
	assert.Contains(t, out, "not-claimed os.path")
}

func TestRunNamespacesAndVersion(t *testing.T) {
	cfgPath, _ := setupProject(t)

	out, err := runCmd(t, cfgPath, "namespaces")
	require.NoError(t, err)
	assert.Equal(t, "GObject\nGdk\nGtk\n", out)

	out, err = runCmd(t, cfgPath, "version")
	require.NoError(t, err)
	assert.Equal(t, "gibridge v"+VERSION+"\n", out)
}

func TestRunIndex(t *testing.T) {
	metaDir := t.TempDir()
	require.NoError(t, metadatatest.WriteDir(metaDir, metadatatest.Documents()...))
	db := filepath.Join(t.TempDir(), "gi.db")

	out, err := runCmd(t, "", "index", db, metaDir)
	require.NoError(t, err)
	assert.Equal(t, "indexed 3 namespaces into "+db+"\n", out)
}

func TestRunErrors(t *testing.T) {
	cfgPath, _ := setupProject(t)

	_, err := runCmd(t, cfgPath)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = runCmd(t, cfgPath, "resolve")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = runCmd(t, cfgPath, "frobnicate")
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}
