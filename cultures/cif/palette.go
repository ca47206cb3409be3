package cif

// Palette256 names a palette and the image file holding its colors.
type Palette256 struct {
	EditName            string
	GfxFile             string
	GfxPreShade         bool
	GfxRemapToPreshaded string
}

func (*Palette256) Schema() string { return SchemaPalette256 }
func (*Palette256) record()        {}

func buildPalette256(section Section) (Record, error) {
	p := &Palette256{}
	set := fieldSet{}
	for _, item := range section.Items {
		key := lower(item.Key)
		var err error
		switch key {
		case "editname":
			p.EditName, err = parseString(item.Key, item.Value)
		case "gfxfile":
			p.GfxFile, err = parseString(item.Key, item.Value)
		case "gfxpreshade":
			p.GfxPreShade, err = parseBool(item.Key, item.Value)
		case "gfxremaptopreshaded":
			p.GfxRemapToPreshaded, err = parseString(item.Key, item.Value)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		set[key] = true
	}
	if err := missingFields(SchemaPalette256, set.missing("editname", "gfxfile")); err != nil {
		return nil, err
	}
	return p, nil
}
