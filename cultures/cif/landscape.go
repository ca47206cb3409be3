package cif

import "fmt"

// Landscape is a placeable map object: trees, stones, signs.
//
//	[GfxLandscape]
//	EditName "player01 sign 01"
//	GfxBobLibs "data\engine2d\bin\bobs\ls_temp.bmd" "data\engine2d\bin\bobs\ls_temp_s.bmd"
//	GfxPalette "human_Player01"
//	GfxFrames 1 33
//	GfxTransition 3 "tree trunk 01"
type Landscape struct {
	EditName             string
	EditGroups           string
	LogicType            uint8
	LogicMaximumValency  uint8
	LogicIsWorkable      bool
	LogicIsPileableOnMap bool
	LogicWalkBlockArea   *Area
	LogicBuildBlockArea  *Area
	LogicWorkArea        *Area
	GfxBobLibs           BobLibs
	GfxPalette           []string
	// GfxFrames maps a frame group id to the frame indices of that group.
	// Only the first line for an id counts.
	GfxFrames            map[uint8][]uint16
	GfxStatic            bool
	GfxLoopAnimation     bool
	GfxShadingFactor     float32
	GfxUserFXMatrix      uint8
	GfxDynamicBackground bool
	GfxDrawVoidEver      bool
	// GfxTransition maps a state id to the landscape it turns into.
	// Only the first line for an id counts.
	GfxTransition map[uint8]string
}

// BobLibs names the sprite file of a landscape and its optional shadow sprite file.
type BobLibs struct {
	BMD    string
	Shadow string
}

func (*Landscape) Schema() string { return SchemaLandscape }
func (*Landscape) record()        {}

// landscapeBuilder accumulates lines; finish validates once at the end.
type landscapeBuilder struct {
	Landscape
	set fieldSet
}

func buildLandscape(section Section) (Record, error) {
	b := &landscapeBuilder{
		Landscape: Landscape{
			GfxFrames:     make(map[uint8][]uint16),
			GfxTransition: make(map[uint8]string),
		},
		set: fieldSet{},
	}
	for _, item := range section.Items {
		if err := b.apply(item); err != nil {
			return nil, err
		}
	}
	return b.finish()
}

func (b *landscapeBuilder) apply(item Item) error {
	key := lower(item.Key)
	l := &b.Landscape
	var err error
	switch key {
	case "editname":
		l.EditName, err = parseString(item.Key, item.Value)
	case "editgroups":
		l.EditGroups, err = parseString(item.Key, item.Value)
	case "logictype":
		l.LogicType, err = parseUint8(item.Key, item.Value)
	case "logicmaximumvalency":
		l.LogicMaximumValency, err = parseUint8(item.Key, item.Value)
	case "logicisworkable":
		l.LogicIsWorkable, err = parseBool(item.Key, item.Value)
	case "logicispileableonmap":
		l.LogicIsPileableOnMap, err = parseBool(item.Key, item.Value)
	case "logicwalkblockarea":
		l.LogicWalkBlockArea, err = parseAreaPtr(item)
	case "logicbuildblockarea":
		l.LogicBuildBlockArea, err = parseAreaPtr(item)
	case "logicworkarea":
		l.LogicWorkArea, err = parseAreaPtr(item)
	case "gfxboblibs":
		l.GfxBobLibs, err = parseBobLibs(item)
	case "gfxpalette":
		l.GfxPalette, err = parseStrings(item.Key, item.Value)
	case "gfxframes":
		err = b.addFrames(item)
	case "gfxstatic":
		l.GfxStatic, err = parseBool(item.Key, item.Value)
	case "gfxloopanimation":
		l.GfxLoopAnimation, err = parseBool(item.Key, item.Value)
	case "gfxshadingfactor":
		l.GfxShadingFactor, err = parseFloat32(item.Key, item.Value)
	case "gfxuserfxmatrix":
		l.GfxUserFXMatrix, err = parseUint8(item.Key, item.Value)
	case "gfxdynamicbackground":
		l.GfxDynamicBackground, err = parseBool(item.Key, item.Value)
	case "gfxdrawvoidever":
		l.GfxDrawVoidEver, err = parseBool(item.Key, item.Value)
	case "gfxtransition":
		err = b.addTransition(item)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	b.set[key] = true
	return nil
}

func (b *landscapeBuilder) addFrames(item Item) error {
	id, rest, err := keyed(item.Key, item.Value)
	if err != nil {
		return err
	}
	frames := make([]uint16, 0, len(rest))
	for _, t := range rest {
		v, err := uintToken(item.Key, t, 16)
		if err != nil {
			return err
		}
		frames = append(frames, uint16(v))
	}
	if _, ok := b.GfxFrames[id]; !ok {
		b.GfxFrames[id] = frames
	}
	return nil
}

func (b *landscapeBuilder) addTransition(item Item) error {
	id, rest, err := keyed(item.Key, item.Value)
	if err != nil {
		return err
	}
	if len(rest) != 1 || !rest[0].quoted {
		return invalid(item.Key, item.Value, "want id and quoted name")
	}
	if _, ok := b.GfxTransition[id]; !ok {
		b.GfxTransition[id] = rest[0].text
	}
	return nil
}

func (b *landscapeBuilder) finish() (Record, error) {
	if err := missingFields(SchemaLandscape, b.set.missing("EditName", "GfxBobLibs")); err != nil {
		return nil, err
	}
	l := b.Landscape
	return &l, nil
}

func parseAreaPtr(item Item) (*Area, error) {
	a, err := parseArea(item.Key, item.Value)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func parseBobLibs(item Item) (BobLibs, error) {
	libs, err := parseStrings(item.Key, item.Value)
	if err != nil {
		return BobLibs{}, err
	}
	switch len(libs) {
	case 1:
		return BobLibs{BMD: libs[0]}, nil
	case 2:
		return BobLibs{BMD: libs[0], Shadow: libs[1]}, nil
	}
	return BobLibs{}, invalid(item.Key, item.Value, fmt.Sprintf("want 1 or 2 files, got %d", len(libs)))
}
