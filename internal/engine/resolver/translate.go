package resolver

import (
	"gibridge/internal/engine/metadata"
	"gibridge/internal/engine/typesys"
)

// maxTypeDepth bounds callback expansion inside callback parameters.
const maxTypeDepth = 3

var scalarTypes = map[string]string{
	"gboolean": typesys.Bool,
	"gchar":    typesys.Int,
	"guchar":   typesys.Int,
	"gint8":    typesys.Int,
	"guint8":   typesys.Int,
	"gint16":   typesys.Int,
	"guint16":  typesys.Int,
	"gshort":   typesys.Int,
	"gushort":  typesys.Int,
	"gint":     typesys.Int,
	"guint":    typesys.Int,
	"gint32":   typesys.Int,
	"guint32":  typesys.Int,
	"glong":    typesys.Int,
	"gulong":   typesys.Int,
	"gint64":   typesys.Int,
	"guint64":  typesys.Int,
	"gsize":    typesys.Int,
	"gssize":   typesys.Int,
	"goffset":  typesys.Int,
	"gfloat":   typesys.Float,
	"gdouble":  typesys.Float,
	"utf8":     typesys.Str,
	"filename": typesys.Str,
	"gunichar": typesys.Str,
	"gpointer": typesys.Object,

	"gconstpointer": typesys.Object,
	"bytearray":     typesys.Bytes,
}

// translate maps a GI type reference to the host's type expression. Interface
// names are qualified against the namespace that mentions them.
func (r *Resolver) translate(ns string, ref *metadata.TypeRef) typesys.Expr {
	return r.translateDepth(ns, ref, 0)
}

func (r *Resolver) translateDepth(ns string, ref *metadata.TypeRef, depth int) typesys.Expr {
	if ref == nil {
		return typesys.None()
	}
	t := r.baseType(ns, ref, depth)
	if ref.Nullable {
		return typesys.Optional(t)
	}
	return t
}

func (r *Resolver) baseType(ns string, ref *metadata.TypeRef, depth int) typesys.Expr {
	if name, ok := scalarTypes[ref.Name]; ok {
		return typesys.Instance(name)
	}
	switch ref.Name {
	case "", "none", "void":
		return typesys.None()
	case "GType", "gtype":
		return typesys.Instance(r.qualified("GObject", "GType"))
	case "GError", "gerror":
		return typesys.Instance(r.qualified("GLib", "Error"))
	case "array", "glist", "gslist", "gptrarray":
		return typesys.Instance(typesys.List, r.elementType(ns, ref.Element, depth))
	case "ghash":
		return typesys.Instance(typesys.Dict, r.elementType(ns, ref.Key, depth), r.elementType(ns, ref.Value, depth))
	}

	tns, name := r.splitRef(ns, ref.Name)
	fq := r.qualified(tns, name)
	if depth < maxTypeDepth && r.provider.IsLoaded(tns) {
		if syms, err := r.provider.Symbols(tns); err == nil {
			if sym, ok := syms[name]; ok && sym.Kind == metadata.KindCallback && sym.Function != nil {
				return typesys.Callable(r.plainSignature(tns, fq, *sym.Function, depth+1))
			}
		}
	}
	return typesys.Instance(fq)
}

func (r *Resolver) elementType(ns string, ref *metadata.TypeRef, depth int) typesys.Expr {
	if ref == nil {
		return typesys.Any()
	}
	return r.translateDepth(ns, ref, depth)
}
