package mapfile

import (
	"gitgub.com/cam-per/cultures/cultures/channel"
	"gitgub.com/cam-per/cultures/cultures/errs"
)

// MapData is the terrain of one map. Channels hold Width*Height cells in
// row-major order unless their section says otherwise.
type MapData struct {
	Width, Height uint32

	Elevation []byte
	Lighting  []byte

	TilesIndex []string
	TilesA     []uint16
	TilesB     []uint16

	TransitionsIndex []string
	TransA1, TransB1 []byte
	TransA2, TransB2 []byte

	LandscapeIndex    []string
	LandscapeLevels   []byte
	LandscapeTypes    []byte
	LandscapeJobTypes []byte
}

// Mandatory lists the sections MapData is assembled from.
var Mandatory = []Tag{
	TagSize,
	TagElevation, TagLighting,
	TagTilesIndex, TagTilesA, TagTilesB,
	TagTransitionsIndex, TagTransA1, TagTransB1, TagTransA2, TagTransB2,
	TagLandscapeIndex, TagLandscapeJobTypes, TagLandscapeTypes, TagLandscapeLevels,
}

type assembler struct {
	decoder *Decoder
	missing []string
}

func (a *assembler) get(tag Tag) channel.Payload {
	p, ok := a.decoder.payloads[tag]
	if !ok {
		a.missing = append(a.missing, string(tag))
	}
	return p
}

func (a *assembler) bytes(tag Tag) []byte {
	if p, ok := a.get(tag).(*channel.Bytes); ok {
		return p.Data
	}
	return nil
}

func (a *assembler) words(tag Tag) []uint16 {
	if p, ok := a.get(tag).(*channel.Words); ok {
		return p.Data
	}
	return nil
}

func (a *assembler) strings(tag Tag) []string {
	if p, ok := a.get(tag).(*channel.Dictionary); ok {
		return p.Entries
	}
	return nil
}

// MapData assembles the terrain. Every absent mandatory section is named
// in the returned *errs.MissingError.
func (decoder *Decoder) MapData() (*MapData, error) {
	a := &assembler{decoder: decoder}
	m := &MapData{}
	if size, ok := decoder.Size(); ok {
		m.Width, m.Height = size.Width, size.Height
	} else {
		a.missing = append(a.missing, string(TagSize))
	}

	m.Elevation = a.bytes(TagElevation)
	m.Lighting = a.bytes(TagLighting)
	m.TilesIndex = a.strings(TagTilesIndex)
	m.TilesA = a.words(TagTilesA)
	m.TilesB = a.words(TagTilesB)
	m.TransitionsIndex = a.strings(TagTransitionsIndex)
	m.TransA1 = a.bytes(TagTransA1)
	m.TransB1 = a.bytes(TagTransB1)
	m.TransA2 = a.bytes(TagTransA2)
	m.TransB2 = a.bytes(TagTransB2)
	m.LandscapeIndex = a.strings(TagLandscapeIndex)
	m.LandscapeJobTypes = a.bytes(TagLandscapeJobTypes)
	m.LandscapeTypes = a.bytes(TagLandscapeTypes)
	m.LandscapeLevels = a.bytes(TagLandscapeLevels)

	if len(a.missing) > 0 {
		return nil, &errs.MissingError{What: "map section", Names: a.missing}
	}
	return m, nil
}
