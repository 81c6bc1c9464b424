package pipeline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	goplugin "plugin"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModule stands in for *plugin.Plugin: it resolves exactly the two
// symbol names the loader looks up, by name, against whatever functions the
// test wired in. This lets loader and engine tests exercise real .so-shaped
// resolution and type-assertion logic without ever building a shared
// object.
type fakeModule struct {
	info   interface{}
	create interface{}
}

func (m fakeModule) Lookup(symName string) (goplugin.Symbol, error) {
	switch symName {
	case "Info":
		if m.info == nil {
			return nil, errors.New("symbol not found: Info")
		}
		return m.info, nil
	case "Create":
		if m.create == nil {
			return nil, errors.New("symbol not found: Create")
		}
		return m.create, nil
	default:
		return nil, errors.New("symbol not found: " + symName)
	}
}

// fakeOpener maps a path to a prebuilt module, so a directory scan can be
// driven by a fixed set of file names without touching the filesystem for
// anything but NewLoader's initial os.ReadDir call.
type fakeOpener struct {
	byPath map[string]fakeModule
	err    map[string]error
}

func (o fakeOpener) Open(path string) (module, error) {
	if err, ok := o.err[path]; ok {
		return nil, err
	}
	mod, ok := o.byPath[path]
	if !ok {
		return nil, errors.New("no fake module registered for " + path)
	}
	return mod, nil
}

// newPluginHandle builds the (Info, Create) pair the loader expects, from a
// real plugin package's exported Descriptor/Create functions, so fake
// modules exercise the genuine plugin implementations instead of stubs.
func newPluginHandle(info func() Descriptor, create func(json.RawMessage) (interface{}, error)) fakeModule {
	return fakeModule{info: info, create: create}
}

func TestLoader_SkipsUnreadableAndMismatchedFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"good.so", "badversion.so", "badsymbol.so", "unopenable.so", "notaplugin.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("stub"), 0o644))
	}

	goodDesc := Descriptor{APIVersion: APIVersion, Name: "good", Kind: KindTransform}
	badVersionDesc := Descriptor{APIVersion: APIVersion + 1, Name: "badversion", Kind: KindTransform}

	op := fakeOpener{
		byPath: map[string]fakeModule{
			filepath.Join(dir, "good.so"): newPluginHandle(
				func() Descriptor { return goodDesc },
				func(json.RawMessage) (interface{}, error) { return struct{}{}, nil },
			),
			filepath.Join(dir, "badversion.so"): newPluginHandle(
				func() Descriptor { return badVersionDesc },
				func(json.RawMessage) (interface{}, error) { return struct{}{}, nil },
			),
			filepath.Join(dir, "badsymbol.so"): {info: func() Descriptor { return goodDesc }, create: "not a function"},
		},
		err: map[string]error{
			filepath.Join(dir, "unopenable.so"): errors.New("boom"),
		},
	}

	l, err := newLoaderWithOpener(dir, op)
	require.NoError(t, err)

	assert.True(t, l.Registered("good"))
	assert.False(t, l.Registered("badversion"))
	assert.False(t, l.Registered("badsymbol"))
	assert.False(t, l.Registered("unopenable"))
	assert.False(t, l.Registered("notaplugin"), "non-.so files are never even opened")
}

func TestLoader_Create_KindMismatchAndNotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thing.so"), []byte("stub"), 0o644))

	desc := Descriptor{APIVersion: APIVersion, Name: "thing", Kind: KindTransform}
	op := fakeOpener{byPath: map[string]fakeModule{
		filepath.Join(dir, "thing.so"): newPluginHandle(
			func() Descriptor { return desc },
			func(json.RawMessage) (interface{}, error) { return struct{}{}, nil },
		),
	}}

	l, err := newLoaderWithOpener(dir, op)
	require.NoError(t, err)

	_, err = l.Create("p", "thing", KindInput, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a Input")

	_, err = l.Create("p", "missing", KindInput, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin not found")
}

func TestLoader_ConstructorError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thing.so"), []byte("stub"), 0o644))

	desc := Descriptor{APIVersion: APIVersion, Name: "thing", Kind: KindTransform}
	op := fakeOpener{byPath: map[string]fakeModule{
		filepath.Join(dir, "thing.so"): newPluginHandle(
			func() Descriptor { return desc },
			func(json.RawMessage) (interface{}, error) { return nil, errors.New("bad config") },
		),
	}}

	l, err := newLoaderWithOpener(dir, op)
	require.NoError(t, err)

	_, err = l.Create("p", "thing", KindTransform, nil)
	require.Error(t, err)
	var pipeErr *Error
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, ErrPluginConstruction, pipeErr.Kind)
}

func TestNewLoader_UnreadableDirectory(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	var pipeErr *Error
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, ErrConfig, pipeErr.Kind)
}
