// Package registry loads the engine definition files from an archive and
// indexes their records by name.
package registry

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"

	"gitgub.com/cam-per/cultures/cultures/cif"
	"gitgub.com/cam-per/cultures/internal/archive"
	"golang.org/x/text/encoding/charmap"
)

const (
	PalettesPath    = `data\engine2d\inis\palettes\palettes.cif`
	PatternsPath    = `data\engine2d\inis\patterns\pattern.cif`
	TransitionsPath = `data\engine2d\inis\patterntransitions\transitions.cif`
	LandscapesPath  = `data\engine2d\inis\landscapes\landscapes.cif`
)

type Registry struct {
	Palettes    map[string]*cif.Palette256
	Patterns    map[string]*cif.Pattern
	Transitions map[string]*cif.Transition
	Landscapes  map[string]*cif.Landscape
}

type loader struct {
	fsys     fs.FS
	encoding *charmap.Charmap
	logger   *slog.Logger
}

// Load reads the four definition files. Any missing or malformed file fails
// the whole load. A nil logger logs to slog.Default().
func Load(fsys fs.FS, encoding *charmap.Charmap, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &loader{fsys: fsys, encoding: encoding, logger: logger}
	registry := &Registry{
		Palettes:    make(map[string]*cif.Palette256),
		Patterns:    make(map[string]*cif.Pattern),
		Transitions: make(map[string]*cif.Transition),
		Landscapes:  make(map[string]*cif.Landscape),
	}

	files := []struct {
		path string
		add  func(cif.Record)
	}{
		{PalettesPath, func(record cif.Record) {
			if r, ok := record.(*cif.Palette256); ok {
				index(registry.Palettes, r.EditName, r)
			}
		}},
		{PatternsPath, func(record cif.Record) {
			if r, ok := record.(*cif.Pattern); ok {
				index(registry.Patterns, r.EditName, r)
			}
		}},
		{TransitionsPath, func(record cif.Record) {
			if r, ok := record.(*cif.Transition); ok {
				index(registry.Transitions, r.Name, r)
			}
		}},
		{LandscapesPath, func(record cif.Record) {
			if r, ok := record.(*cif.Landscape); ok {
				index(registry.Landscapes, r.EditName, r)
			}
		}},
	}
	for _, file := range files {
		if err := l.each(file.path, file.add); err != nil {
			return nil, err
		}
	}

	logger.Info("registry loaded",
		"palettes", len(registry.Palettes),
		"patterns", len(registry.Patterns),
		"transitions", len(registry.Transitions),
		"landscapes", len(registry.Landscapes))
	return registry, nil
}

// index keeps the first record defined under a name.
func index[T any](m map[string]T, name string, record T) {
	if _, ok := m[name]; !ok {
		m[name] = record
	}
}

func (l *loader) each(name string, fn func(cif.Record)) error {
	data, err := fs.ReadFile(l.fsys, archive.Key(name))
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	decoder, err := cif.NewDecoder(bytes.NewReader(data), l.encoding)
	if err != nil {
		return fmt.Errorf("registry %s: %w", name, err)
	}
	records, err := decoder.Records()
	if err != nil {
		return fmt.Errorf("registry %s: %w", name, err)
	}
	if n := decoder.Dropped(); n > 0 {
		l.logger.Debug("dropped unparsed lines", "file", name, "lines", n)
	}
	for _, record := range records {
		if u, ok := record.(*cif.Unknown); ok {
			l.logger.Debug("skipped unknown section", "file", name, "section", u.Section.Name)
			continue
		}
		fn(record)
	}
	return nil
}

func (registry *Registry) Palette(name string) (*cif.Palette256, error) {
	return lookup(registry.Palettes, "palette", name)
}

func (registry *Registry) Pattern(name string) (*cif.Pattern, error) {
	return lookup(registry.Patterns, "pattern", name)
}

func (registry *Registry) Transition(name string) (*cif.Transition, error) {
	return lookup(registry.Transitions, "transition", name)
}

func (registry *Registry) Landscape(name string) (*cif.Landscape, error) {
	return lookup(registry.Landscapes, "landscape", name)
}

func lookup[T any](m map[string]T, kind, name string) (T, error) {
	r, ok := m[name]
	if !ok {
		return r, fmt.Errorf("%w: %s %q", fs.ErrNotExist, kind, name)
	}
	return r, nil
}
