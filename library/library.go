// Package library loads type libraries: documents that bundle define bodies
// so a set of types can be shared and installed into an engine in one step.
//
//	name: shapes
//	engine: ">= 1.0.0"
//	types:
//	  - name: box
//	    properties:
//	      x: {required: true}
//	      size: 10
//	    implementation:
//	      type: rectangle
//	      x: "{{x}}"
//	      width: "{{size}}"
package library

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/devize/define"
	"github.com/teranos/devize/engine"
	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/logger"
	"github.com/teranos/devize/schema"
	"github.com/teranos/devize/spec"
	"github.com/teranos/devize/version"
)

// Document keys.
const (
	KeyName        = "name"
	KeyDescription = "description"
	KeyEngine      = "engine"
	KeyTypes       = "types"
	KeySource      = "source"
)

// Library is a decoded, schema-checked type library.
type Library struct {
	Name        string
	Description string

	// Engine is a semver constraint the running engine must satisfy.
	Engine string

	// Path is the file the library came from, empty for in-memory documents.
	Path string

	// Types are define bodies in document order.
	Types []spec.Spec
}

// Parse builds a library from a decoded document.
func Parse(doc any, path string) (*Library, error) {
	if err := schema.ValidateLibrary(doc); err != nil {
		return nil, withPath(err, path)
	}
	m, _ := spec.Normalize(doc).(map[string]any)
	s := spec.Spec(m)

	lib := &Library{Path: path}
	lib.Name, _ = s.String(KeyName)
	lib.Description, _ = s.String(KeyDescription)
	lib.Engine, _ = s.String(KeyEngine)
	if lib.Name == "" && path != "" {
		lib.Name = trimExt(filepath.Base(path))
	}
	lib.Types = spec.AsSpecs(s[KeyTypes])
	return lib, nil
}

// LoadFile reads, validates and checks the engine constraint of a library.
func LoadFile(path string) (*Library, error) {
	doc, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	lib, err := Parse(doc, path)
	if err != nil {
		return nil, err
	}
	if err := lib.CheckCompatible(version.Semver()); err != nil {
		return nil, err
	}
	return lib, nil
}

// LoadDir loads every library document directly inside dir, in file name
// order. Files with unknown extensions are skipped.
func LoadDir(dir string) ([]*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read library directory %s", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatFor(e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	libs := make([]*Library, 0, len(names))
	for _, name := range names {
		lib, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

// LoadPaths loads each path as a file or a directory of libraries.
func LoadPaths(paths []string) ([]*Library, error) {
	var libs []*Library
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrapf(err, "library path %s", p)
		}
		if info.IsDir() {
			dirLibs, err := LoadDir(p)
			if err != nil {
				return nil, err
			}
			libs = append(libs, dirLibs...)
			continue
		}
		lib, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

// CheckCompatible reports ErrIncompatibleLibrary when v does not satisfy
// the library's engine constraint. Libraries without one are compatible.
func (l *Library) CheckCompatible(v *semver.Version) error {
	if l.Engine == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(l.Engine)
	if err != nil {
		return errors.Mark(
			errors.Wrapf(err, "library %s: invalid engine constraint %q", l.Name, l.Engine),
			errors.ErrIncompatibleLibrary)
	}
	if !constraint.Check(v) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrIncompatibleLibrary, "library %s requires engine %s, running %s", l.Name, l.Engine, v),
			"upgrade devize or pin an older release of %s", l.Name)
	}
	return nil
}

// Install resolves every type entry as a define spec, in document order, so
// an entry may extend an earlier one. It stops at the first failure and
// returns the names registered so far.
func (l *Library) Install(e *engine.Engine) ([]string, error) {
	e.Bootstrap()

	source := l.Path
	if source == "" {
		source = "library:" + l.Name
	}

	names := make([]string, 0, len(l.Types))
	for i, t := range l.Types {
		body := t.With(spec.KeyType, define.TypeName)
		if !body.Has(KeySource) {
			body[KeySource] = source
		}
		res, err := e.Resolve(body)
		if err != nil {
			name, _ := t.String(KeyName)
			return names, errors.Wrapf(err, "library %s: types[%d] (%s)", l.Name, i, name)
		}
		names = append(names, res.Defined...)
	}

	logger.DefineInfow("Installed library",
		logger.FieldLibrary, l.Name,
		logger.FieldFile, l.Path,
		logger.FieldCount, len(names))
	return names, nil
}

func withPath(err error, path string) error {
	if path == "" {
		return err
	}
	return errors.Wrap(err, path)
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
