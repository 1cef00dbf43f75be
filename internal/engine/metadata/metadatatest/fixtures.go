// Package metadatatest provides small GTK-shaped namespace documents for tests.
package metadatatest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gibridge/internal/engine/metadata"
)

func ref(name string) metadata.TypeRef { return metadata.TypeRef{Name: name} }

func refp(name string) *metadata.TypeRef { return &metadata.TypeRef{Name: name} }

func in(name, typ string) metadata.Param { return metadata.Param{Name: name, Type: ref(typ)} }

func out(name, typ string) metadata.Param {
	return metadata.Param{Name: name, Type: ref(typ), Direction: metadata.DirectionOut}
}

// GObject returns a GObject-2.0 document with Object and InitiallyUnowned.
func GObject() *metadata.Document {
	return &metadata.Document{
		Format:    metadata.FormatVersion,
		Namespace: "GObject",
		Version:   "2.0",
		Symbols: []metadata.Symbol{
			{
				Name: "Object",
				Kind: metadata.KindClass,
				Methods: []metadata.Callable{
					{Name: "new", Constructor: true, Static: true, Returns: refp("Object")},
					{Name: "notify", Params: []metadata.Param{in("property_name", "utf8")}},
					{Name: "freeze_notify"},
					{Name: "get_data", Params: []metadata.Param{in("key", "utf8")}, Returns: &metadata.TypeRef{Name: "gpointer", Nullable: true}},
				},
				Signals: []metadata.Signal{{Name: "notify"}},
			},
			{
				Name:    "InitiallyUnowned",
				Kind:    metadata.KindClass,
				Parents: []string{"Object"},
			},
		},
	}
}

// Gtk returns a Gtk-3.0 document whose widgets inherit from GObject.
func Gtk() *metadata.Document {
	widgetList := metadata.TypeRef{Name: "glist", Element: refp("Widget")}
	return &metadata.Document{
		Format:       metadata.FormatVersion,
		Namespace:    "Gtk",
		Version:      "3.0",
		Dependencies: []string{"GObject-2.0", "Gdk-3.0"},
		Symbols: []metadata.Symbol{
			{
				Name:    "Buildable",
				Kind:    metadata.KindInterface,
				Methods: []metadata.Callable{{Name: "get_buildable_id", Returns: refp("utf8")}},
			},
			{
				Name:       "Widget",
				Kind:       metadata.KindClass,
				Parents:    []string{"GObject.InitiallyUnowned"},
				Implements: []string{"Buildable"},
				Methods: []metadata.Callable{
					{Name: "show"},
					{Name: "get_name", Returns: refp("utf8")},
					{Name: "set_size_request", Params: []metadata.Param{in("width", "gint"), in("height", "gint")}},
					{Name: "get_size_request", Params: []metadata.Param{out("width", "gint"), out("height", "gint")}},
					{Name: "get_preferred_size", Params: []metadata.Param{out("minimum_size", "Requisition")}},
					{Name: "get_screen", Returns: refp("Gdk.Screen")},
				},
				Properties: []metadata.Property{
					{Name: "can-focus", Type: ref("gboolean"), Readable: true, Writable: true},
					{Name: "name", Type: ref("utf8"), Readable: true, Writable: true},
					{Name: "parent", Type: ref("Container"), Readable: true},
				},
				Signals: []metadata.Signal{{Name: "destroy"}},
			},
			{
				Name:    "Container",
				Kind:    metadata.KindClass,
				Parents: []string{"Widget"},
				Methods: []metadata.Callable{
					{Name: "add", Params: []metadata.Param{in("widget", "Widget")}},
					{Name: "get_children", Returns: &widgetList},
				},
				Properties: []metadata.Property{
					{Name: "border-width", Type: ref("guint"), Readable: true, Writable: true},
				},
			},
			{
				Name:    "Bin",
				Kind:    metadata.KindClass,
				Parents: []string{"Container"},
			},
			{
				Name:    "Window",
				Kind:    metadata.KindClass,
				Parents: []string{"Bin"},
				Methods: []metadata.Callable{
					{Name: "new", Constructor: true, Static: true, Params: []metadata.Param{in("type", "WindowType")}, Returns: refp("Window")},
					{Name: "set_title", Params: []metadata.Param{in("title", "utf8")}},
					{Name: "get_title", Returns: &metadata.TypeRef{Name: "utf8", Nullable: true}},
					{Name: "get_size", Params: []metadata.Param{out("width", "gint"), out("height", "gint")}},
					{Name: "set_icon_from_file", Params: []metadata.Param{{Name: "filename", Type: ref("filename")}}, Returns: refp("gboolean"), Throws: true},
					{Name: "set_transient_for", Params: []metadata.Param{{Name: "parent", Type: ref("Window"), Nullable: true}}},
					{Name: "list_toplevels", Static: true, Returns: &widgetList},
				},
				Properties: []metadata.Property{
					{Name: "title", Type: ref("utf8"), Readable: true, Writable: true},
					{Name: "modal", Type: ref("gboolean"), Readable: true, Writable: true},
					{Name: "default-width", Type: ref("gint"), Readable: true, Writable: true},
					{Name: "is-active", Type: ref("gboolean"), Readable: true},
				},
			},
			{
				Name: "WindowType",
				Kind: metadata.KindEnum,
				Values: []metadata.EnumValue{
					{Name: "TOPLEVEL", Value: 0},
					{Name: "POPUP", Value: 1},
				},
			},
			{
				Name: "Requisition",
				Kind: metadata.KindStruct,
				Fields: []metadata.Field{
					{Name: "width", Type: ref("gint"), Writable: true},
					{Name: "height", Type: ref("gint"), Writable: true},
				},
			},
			{
				Name:     "main",
				Kind:     metadata.KindFunction,
				Function: &metadata.Callable{Name: "main"},
			},
			{
				Name:     "check_version",
				Kind:     metadata.KindFunction,
				Function: &metadata.Callable{
					Name:    "check_version",
					Params:  []metadata.Param{in("required_major", "guint"), in("required_minor", "guint"), in("required_micro", "guint")},
					Returns: &metadata.TypeRef{Name: "utf8", Nullable: true},
				},
			},
			{
				Name:     "show_uri",
				Kind:     metadata.KindFunction,
				Function: &metadata.Callable{
					Name: "show_uri",
					Params: []metadata.Param{
						{Name: "screen", Type: ref("Gdk.Screen"), Nullable: true},
						in("uri", "utf8"),
						{Name: "timestamp", Type: ref("guint32"), Optional: true},
					},
					Returns: refp("gboolean"),
					Throws:  true,
				},
			},
			{
				Name:     "Callback",
				Kind:     metadata.KindCallback,
				Function: &metadata.Callable{
					Name:   "Callback",
					Params: []metadata.Param{in("widget", "Widget"), {Name: "data", Type: ref("gpointer"), Nullable: true}},
				},
			},
			{
				Name: "MAJOR_VERSION",
				Kind: metadata.KindConstant,
				Type: refp("gint"),
			},
		},
	}
}

// Gdk returns a Gdk-3.0 document with Screen.
func Gdk() *metadata.Document {
	return &metadata.Document{
		Format:       metadata.FormatVersion,
		Namespace:    "Gdk",
		Version:      "3.0",
		Dependencies: []string{"GObject-2.0"},
		Symbols: []metadata.Symbol{
			{
				Name:    "Screen",
				Kind:    metadata.KindClass,
				Parents: []string{"GObject.Object"},
				Methods: []metadata.Callable{
					{Name: "get_default", Static: true, Returns: &metadata.TypeRef{Name: "Screen", Nullable: true}},
					{Name: "get_width", Returns: refp("gint")},
				},
			},
		},
	}
}

// Documents returns GObject, Gtk and Gdk.
func Documents() []*metadata.Document {
	return []*metadata.Document{GObject(), Gtk(), Gdk()}
}

// Snapshot loads docs (all fixtures when none are given) into a Snapshot.
func Snapshot(docs ...*metadata.Document) *metadata.Snapshot {
	if len(docs) == 0 {
		docs = Documents()
	}
	snap, err := metadata.NewSnapshot(docs...)
	if err != nil {
		panic(fmt.Sprintf("metadatatest: %v", err))
	}
	return snap
}

// WriteDir stores each document as "<Namespace>-<Version>.json" in dir.
func WriteDir(dir string, docs ...*metadata.Document) error {
	for _, doc := range docs {
		name := doc.Namespace
		if doc.Version != "" {
			name += "-" + doc.Version
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
