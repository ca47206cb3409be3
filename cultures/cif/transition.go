package cif

// Transition blends two ground types through a masked texture. Every
// GfxCoordsA/GfxCoordsB line adds one more triangle.
type Transition struct {
	Name            string
	PointType       string
	GfxTexture      string
	GfxTextureAlpha string
	GfxCoordsA      [][]uint8
	GfxCoordsB      [][]uint8
}

func (*Transition) Schema() string { return SchemaTransition }
func (*Transition) record()        {}

func buildTransition(section Section) (Record, error) {
	tr := &Transition{}
	set := fieldSet{}
	for _, item := range section.Items {
		key := lower(item.Key)
		var err error
		switch key {
		case "name":
			tr.Name, err = parseString(item.Key, item.Value)
		case "pointtype":
			tr.PointType, err = parseString(item.Key, item.Value)
		case "gfxtexture":
			tr.GfxTexture, err = parseString(item.Key, item.Value)
		case "gfxtexturealpha":
			tr.GfxTextureAlpha, err = parseString(item.Key, item.Value)
		case "gfxcoordsa", "gfxcoordsb":
			var coords []uint8
			if coords, err = parseUint8s(item.Key, item.Value); err != nil {
				break
			}
			if key == "gfxcoordsa" {
				tr.GfxCoordsA = append(tr.GfxCoordsA, coords)
			} else {
				tr.GfxCoordsB = append(tr.GfxCoordsB, coords)
			}
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		set[key] = true
	}
	if err := missingFields(SchemaTransition, set.missing("name", "GfxTexture")); err != nil {
		return nil, err
	}
	return tr, nil
}
