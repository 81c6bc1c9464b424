/***** BEGIN LICENSE BLOCK *****
# This Source Code Form is subject to the terms of the Mozilla Public
# License, v. 2.0. If a copy of the MPL was not distributed with this file,
# You can obtain one at http://mozilla.org/MPL/2.0/.
#
# The Initial Developer of the Original Code is the Mozilla Foundation.
# Portions created by the Initial Developer are Copyright (C) 2012
# the Initial Developer. All Rights Reserved.
#
# ***** END LICENSE BLOCK *****/

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	goplugin "plugin"

	"github.com/sirupsen/logrus"
)

// pluginExt is the platform-native shared library extension the loader scans
// for. Go's plugin package only supports ELF shared objects, so this is not
// actually platform-conditional the way the spec's general "platform-native
// extension" language allows — it's a known limitation of the host
// toolchain, not a design choice (see DESIGN.md).
const pluginExt = ".so"

// module is the subset of *plugin.Plugin the loader depends on. Abstracting
// it lets tests exercise directory-scan and symbol-resolution failure modes
// (§4.2) without building real .so files.
type module interface {
	Lookup(symName string) (goplugin.Symbol, error)
}

// opener abstracts dlopen so it can be faked in tests.
type opener interface {
	Open(path string) (module, error)
}

type osOpener struct{}

func (osOpener) Open(path string) (module, error) {
	return goplugin.Open(path)
}

// handle is what the loader caches per plugin name: its descriptor, resolved
// Create entry point and file path. The module itself is kept alive in
// Loader.modules for the lifetime of the engine (§4.2/§5).
type handle struct {
	descriptor Descriptor
	create     CreateFunc
	path       string
}

// Loader discovers plugin module files in a directory, resolves their info()
// once, and caches name -> handle for later construction (§4.2). It must
// outlive every plugin instance it produced.
type Loader struct {
	dir     string
	opener  opener
	modules []module // kept alive; never released before engine shutdown
	byName  map[string]*handle
	log     *logrus.Entry
}

// NewLoader scans dir for candidate plugin files and builds the name lookup
// table. A directory that cannot be read is a fatal startup error; a
// candidate file that cannot be opened as a module, or whose info() can't be
// resolved to the expected shape, is skipped with a diagnostic rather than
// aborting the whole scan (§4.2).
func NewLoader(dir string) (*Loader, error) {
	return newLoaderWithOpener(dir, osOpener{})
}

func newLoaderWithOpener(dir string, op opener) (*Loader, error) {
	l := &Loader{
		dir:    dir,
		opener: op,
		byName: make(map[string]*handle),
		log:    logrus.WithField("component", "loader"),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, configErrorf("", "cannot read plugins directory %q: %s", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != pluginExt {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := l.load(path); err != nil {
			l.log.WithField("file", path).WithError(err).Warn("skipping unusable plugin file")
			continue
		}
	}

	return l, nil
}

func (l *Loader) load(path string) error {
	mod, err := l.opener.Open(path)
	if err != nil {
		return fmt.Errorf("opening module: %w", err)
	}

	infoSym, err := mod.Lookup("Info")
	if err != nil {
		return fmt.Errorf("resolving Info: %w", err)
	}
	infoFn, ok := infoSym.(func() Descriptor)
	if !ok {
		return fmt.Errorf("Info has unexpected type %T", infoSym)
	}
	desc := infoFn()

	if desc.APIVersion != APIVersion {
		return fmt.Errorf("plugin %q api_version %d does not match engine api_version %d",
			desc.Name, desc.APIVersion, APIVersion)
	}

	createSym, err := mod.Lookup("Create")
	if err != nil {
		return fmt.Errorf("resolving Create: %w", err)
	}
	createFn, ok := createSym.(func(json.RawMessage) (interface{}, error))
	if !ok {
		return fmt.Errorf("Create has unexpected type %T", createSym)
	}

	l.modules = append(l.modules, mod)
	l.byName[desc.Name] = &handle{descriptor: desc, create: createFn, path: path}
	return nil
}

// lookup returns the cached handle for name, or a "plugin not found" error.
func (l *Loader) lookup(name string) (*handle, error) {
	h, ok := l.byName[name]
	if !ok {
		return nil, fmt.Errorf("plugin not found: %q", name)
	}
	return h, nil
}

// Create resolves name, checks it matches wantKind, and constructs an
// instance from config. A missing plugin and a kind mismatch both surface as
// configuration errors naming the pipeline (§7); a config rejected by the
// plugin's constructor is a plugin-construction error.
func (l *Loader) Create(pipelineName, name string, wantKind PluginKind, config json.RawMessage) (interface{}, error) {
	h, err := l.lookup(name)
	if err != nil {
		return nil, configErrorf(pipelineName, "%s", err)
	}
	if h.descriptor.Kind != wantKind {
		return nil, configErrorf(pipelineName,
			"plugin %q is a %s, expected a %s", name, h.descriptor.Kind, wantKind)
	}

	instance, err := h.create(config)
	if err != nil {
		return nil, constructionErrorf(pipelineName, name, err)
	}
	return instance, nil
}

// Registered reports whether a plugin name is known to the loader, mostly
// useful for diagnostics and tests.
func (l *Loader) Registered(name string) bool {
	_, ok := l.byName[name]
	return ok
}
