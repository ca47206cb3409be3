package cif

import (
	"strings"

	"gitgub.com/cam-per/cultures/cultures/errs"
)

// Record is one typed section: *Text, *Landscape, *Palette256, *Pattern,
// *Transition or *Unknown.
type Record interface {
	Schema() string
	record()
}

// Unknown keeps a section whose name matches no schema.
type Unknown struct {
	Section Section
}

func (u *Unknown) Schema() string { return u.Section.Name }
func (*Unknown) record()          {}

type builder func(Section) (Record, error)

var schemas = map[string]builder{
	"text":          buildText,
	"gfxlandscape":  buildLandscape,
	"gfxpalette256": buildPalette256,
	"gfxpattern":    buildPattern,
	"transition":    buildTransition,
}

const (
	SchemaText       = "text"
	SchemaLandscape  = "GfxLandscape"
	SchemaPalette256 = "GfxPalette256"
	SchemaPattern    = "GfxPattern"
	SchemaTransition = "transition"
)

// Build dispatches a section by its case-insensitive name. Unknown names
// are boxed, never rejected.
func Build(section Section) (Record, error) {
	build, ok := schemas[lower(section.Name)]
	if !ok {
		return &Unknown{Section: section}, nil
	}
	return build(section)
}

func lower(s string) string { return strings.ToLower(s) }

func missingFields(schema string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	return &errs.MissingError{What: schema + " required field", Names: names}
}
