package cif

// Pattern is a ground texture cut from a shared atlas.
type Pattern struct {
	EditName   string
	EditGroups []string
	LogicType  uint8
	GfxTexture string
	GfxCoordsA []uint8
	GfxCoordsB []uint8
}

func (*Pattern) Schema() string { return SchemaPattern }
func (*Pattern) record()        {}

func buildPattern(section Section) (Record, error) {
	p := &Pattern{}
	set := fieldSet{}
	for _, item := range section.Items {
		key := lower(item.Key)
		var err error
		switch key {
		case "editname":
			p.EditName, err = parseString(item.Key, item.Value)
		case "editgroups":
			var groups []string
			if groups, err = parseStrings(item.Key, item.Value); err == nil {
				p.EditGroups = appendUnique(p.EditGroups, groups...)
			}
		case "logictype":
			p.LogicType, err = parseUint8(item.Key, item.Value)
		case "gfxtexture":
			p.GfxTexture, err = parseString(item.Key, item.Value)
		case "gfxcoordsa":
			p.GfxCoordsA, err = parseUint8s(item.Key, item.Value)
		case "gfxcoordsb":
			p.GfxCoordsB, err = parseUint8s(item.Key, item.Value)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		set[key] = true
	}
	if err := missingFields(SchemaPattern, set.missing("EditName", "GfxTexture")); err != nil {
		return nil, err
	}
	return p, nil
}

func appendUnique(set []string, values ...string) []string {
next:
	for _, v := range values {
		for _, have := range set {
			if have == v {
				continue next
			}
		}
		set = append(set, v)
	}
	return set
}
