package typesys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func windowConstructor() Signature {
	return Signature{
		Name: "gi.repository.Gtk.Window",
		Args: []Arg{
			{Name: "type", Type: Instance("gi.repository.Gtk.WindowType"), Kind: ArgOptional},
			{Name: "title", Type: Instance(Str), Kind: ArgNamedOptional},
			{Name: "modal", Type: Instance(Bool), Kind: ArgNamedOptional},
		},
		Ret: Instance("gi.repository.Gtk.Window"),
	}
}

func TestSignatureString(t *testing.T) {
	assert.Equal(t,
		"def (type: gi.repository.Gtk.WindowType = ..., *, title: builtins.str = ..., modal: builtins.bool = ...) -> gi.repository.Gtk.Window",
		windowConstructor().String())

	variadic := Signature{
		Args: []Arg{
			{Name: "fmt", Type: Instance(Str), Kind: ArgPositional},
			{Name: "args", Type: Any(), Kind: ArgStar},
			{Name: "sep", Type: Instance(Str), Kind: ArgNamedOptional},
			{Name: "kwargs", Type: Any(), Kind: ArgStar2},
		},
		Ret: None(),
	}
	assert.Equal(t, "def (fmt: builtins.str, *args: Any, sep: builtins.str = ..., **kwargs: Any) -> None", variadic.String())
}

func TestCheckCall(t *testing.T) {
	sig := windowConstructor()

	require.NoError(t, sig.CheckCall(0, nil))
	require.NoError(t, sig.CheckCall(1, []string{"title"}))
	require.NoError(t, sig.CheckCall(0, []string{"type", "modal"}))

	err := sig.CheckCall(2, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many positional arguments")

	err = sig.CheckCall(0, []string{"icon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unexpected keyword argument "icon"`)

	err = sig.CheckCall(1, []string{"type"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `multiple values for argument "type"`)
}

func TestCheckCallMissingArguments(t *testing.T) {
	sig := Signature{
		Name: "f",
		Args: []Arg{
			{Name: "a", Type: Instance(Int), Kind: ArgPositional},
			{Name: "b", Type: Instance(Int), Kind: ArgNamed},
		},
		Ret: None(),
	}

	err := sig.CheckCall(0, []string{"b"})
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, `f: missing positional argument "a"`, callErr.Error())

	err = sig.CheckCall(1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing named argument "b"`)

	require.NoError(t, sig.CheckCall(0, []string{"a", "b"}))
}

func TestStarArgsAreUnbounded(t *testing.T) {
	sig := Signature{
		Args: []Arg{
			{Name: "first", Type: Any(), Kind: ArgPositional},
			{Name: "rest", Type: Any(), Kind: ArgStar},
			{Name: "extra", Type: Any(), Kind: ArgStar2},
		},
		Ret: None(),
	}
	max, bounded := sig.MaxPositional()
	assert.False(t, bounded)
	assert.Equal(t, 1, max)
	assert.Equal(t, 1, sig.MinPositional())
	require.NoError(t, sig.CheckCall(7, []string{"anything"}))
}

func TestBindDropsSelf(t *testing.T) {
	method := Signature{
		Name: "get_title",
		Args: []Arg{{Name: "self", Type: Instance("gi.repository.Gtk.Window"), Kind: ArgPositional}},
		Ret:  Optional(Instance(Str)),
	}
	bound := method.Bind()
	assert.Empty(t, bound.Args)
	assert.Len(t, method.Args, 1)
	assert.Equal(t, "def () -> Optional[builtins.str]", bound.String())
}
