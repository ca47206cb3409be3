package cif

import (
	"errors"
	"reflect"
	"testing"

	"gitgub.com/cam-per/cultures/cultures/errs"
)

func section(name string, lines ...string) Section {
	s := Section{Name: name}
	for _, line := range lines {
		item, ok := ParseItem(line)
		if !ok {
			panic("bad fixture line: " + line)
		}
		s.Items = append(s.Items, item)
	}
	return s
}

func TestBuildLandscape(t *testing.T) {
	record, err := Build(section("gfxlandscape",
		`EditName "player01 sign 01"`,
		`EditGroups "misc_signs"`,
		`LogicType 1`,
		`LogicIsWorkable 0`,
		`logicispileableonmap 1`,
		`LogicWalkBlockArea -1 -2 1 2`,
		`GfxBobLibs "data\engine2d\bin\bobs\ls_temp.bmd" "data\engine2d\bin\bobs\ls_temp_s.bmd"`,
		`GfxPalette "human_Player01"`,
		`GfxFrames 1 33 34 300`,
		`GfxFrames 1 99`,
		`GfxFrames 2`,
		`GfxShadingFactor 0.5`,
		`GfxTransition 3 "tree trunk 01"`,
		`GfxTransition 2 "tree debris small"`,
		`SomethingNew 5`,
		`LogicType 4`,
	))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	l, ok := record.(*Landscape)
	if !ok {
		t.Fatalf("record is %T, want *Landscape", record)
	}
	if l.EditName != "player01 sign 01" || l.EditGroups != "misc_signs" {
		t.Errorf("names = %q / %q", l.EditName, l.EditGroups)
	}
	if l.LogicType != 4 {
		t.Errorf("LogicType = %d, want 4 (last wins)", l.LogicType)
	}
	if l.LogicIsWorkable || !l.LogicIsPileableOnMap {
		t.Errorf("bools = %v %v", l.LogicIsWorkable, l.LogicIsPileableOnMap)
	}
	wantArea := &Area{From: Coord{-1, -2}, To: Coord{1, 2}}
	if !reflect.DeepEqual(l.LogicWalkBlockArea, wantArea) {
		t.Errorf("LogicWalkBlockArea = %+v, want %+v", l.LogicWalkBlockArea, wantArea)
	}
	if l.LogicWorkArea != nil {
		t.Errorf("LogicWorkArea = %+v, want nil", l.LogicWorkArea)
	}
	if l.GfxBobLibs.Shadow != `data\engine2d\bin\bobs\ls_temp_s.bmd` {
		t.Errorf("GfxBobLibs = %+v", l.GfxBobLibs)
	}
	wantFrames := map[uint8][]uint16{1: {33, 34, 300}, 2: {}}
	if !reflect.DeepEqual(l.GfxFrames, wantFrames) {
		t.Errorf("GfxFrames = %v, want %v", l.GfxFrames, wantFrames)
	}
	if l.GfxShadingFactor != 0.5 {
		t.Errorf("GfxShadingFactor = %v", l.GfxShadingFactor)
	}
	if l.GfxTransition[3] != "tree trunk 01" || l.GfxTransition[2] != "tree debris small" {
		t.Errorf("GfxTransition = %v", l.GfxTransition)
	}
}

func TestLandscapeTransitionFirstWins(t *testing.T) {
	record, err := Build(section("GfxLandscape",
		`EditName "tree"`,
		`GfxBobLibs "tree.bmd"`,
		`GfxTransition 3 "a"`,
		`GfxTransition 3 "b"`,
	))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := record.(*Landscape).GfxTransition
	if !reflect.DeepEqual(got, map[uint8]string{3: "a"}) {
		t.Errorf("GfxTransition = %v, want map[3:a]", got)
	}
}

func TestLandscapeMissingRequired(t *testing.T) {
	_, err := Build(section("GfxLandscape", `LogicType 1`))
	if !errors.Is(err, errs.ErrMissing) {
		t.Fatalf("err = %v, want missing", err)
	}
	var missing *errs.MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("err %T is not *errs.MissingError", err)
	}
	if !reflect.DeepEqual(missing.Names, []string{"EditName", "GfxBobLibs"}) {
		t.Errorf("Names = %v", missing.Names)
	}
}

func TestBuildRejectsInvalidValues(t *testing.T) {
	tests := []Section{
		section("GfxLandscape", `EditName "x"`, `GfxBobLibs "a" "b" "c"`),
		section("GfxLandscape", `EditName "x"`, `GfxBobLibs "a"`, `LogicIsWorkable 2`),
		section("GfxLandscape", `EditName "x"`, `GfxBobLibs "a"`, `LogicWorkArea 1 2 3`),
		section("GfxLandscape", `EditName "x"`, `GfxBobLibs "a"`, `LogicWorkArea 1 2 3 200`),
		section("GfxLandscape", `EditName "x"`, `GfxBobLibs "a"`, `GfxTransition 3 4`),
		section("GfxLandscape", `EditName "x"`, `GfxBobLibs "a"`, `LogicType 256`),
		section("GfxPattern", `EditName "x"`, `GfxTexture "t.pcx"`, `GfxCoordsA "a"`),
		section("text", `stringn "x"`),
	}
	for _, s := range tests {
		if _, err := Build(s); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Build(%v) err = %v, want ErrInvalidValue", s.Items, err)
		}
	}
}

func TestBuildText(t *testing.T) {
	record, err := Build(section("TEXT",
		`stringn 1 "Small nourishing potion"`,
		`string "Big nourishing potion"`,
		`stringn 10 "Ten"`,
		`string "Eleven"`,
		`stringn 1 "ignored"`,
	))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := map[uint32]string{
		1:  "Small nourishing potion",
		2:  "Big nourishing potion",
		10: "Ten",
		11: "Eleven",
	}
	if got := record.(*Text).Strings; !reflect.DeepEqual(got, want) {
		t.Errorf("Strings = %v, want %v", got, want)
	}
}

func TestBuildPatternAndTransition(t *testing.T) {
	record, err := Build(section("GfxPattern",
		`EditName "block mountain 00 01 02"`,
		`EditGroups "mountain 3x3" "mountain all"`,
		`EditGroups "mountain all"`,
		`LogicType 3`,
		`GfxTexture "data\engine2d\bin\textures\text_200.pcx"`,
		`GfxCoordsA 64 128 127 191 64 191`,
		`GfxCoordsB 64 128 127 128 127 191`,
	))
	if err != nil {
		t.Fatalf("Build pattern: %v", err)
	}
	p := record.(*Pattern)
	if !reflect.DeepEqual(p.EditGroups, []string{"mountain 3x3", "mountain all"}) {
		t.Errorf("EditGroups = %q", p.EditGroups)
	}
	if !reflect.DeepEqual(p.GfxCoordsA, []uint8{64, 128, 127, 191, 64, 191}) {
		t.Errorf("GfxCoordsA = %v", p.GfxCoordsA)
	}

	record, err = Build(section("Transition",
		`name "coast 2"`,
		`pointtype "meadow"`,
		`GfxTexture "tran_water_coast.pcx"`,
		`GfxTextureAlpha "tran_water_coast_a.pcx"`,
		`GfxCoordsA 0 128 63 191 0 191`,
		`GfxCoordsB 0 128 63 128 63 191`,
		`GfxCoordsA 64 128 127 191 64 191`,
	))
	if err != nil {
		t.Fatalf("Build transition: %v", err)
	}
	tr := record.(*Transition)
	if len(tr.GfxCoordsA) != 2 || len(tr.GfxCoordsB) != 1 {
		t.Errorf("coords = %d/%d, want 2/1", len(tr.GfxCoordsA), len(tr.GfxCoordsB))
	}
	if tr.GfxTextureAlpha != "tran_water_coast_a.pcx" || tr.PointType != "meadow" {
		t.Errorf("transition = %+v", tr)
	}
}

func TestBuildPalette256(t *testing.T) {
	record, err := Build(section("gfxPALETTE256",
		`editname "Ship_house"`,
		`gfxfile "Ship_house.pcx"`,
		`gfxpreshade 1`,
	))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := record.(*Palette256)
	if p.EditName != "Ship_house" || p.GfxFile != "Ship_house.pcx" || !p.GfxPreShade {
		t.Errorf("palette = %+v", p)
	}

	_, err = Build(section("GfxPalette256", `editname "x"`))
	var missing *errs.MissingError
	if !errors.As(err, &missing) || !reflect.DeepEqual(missing.Names, []string{"gfxfile"}) {
		t.Errorf("err = %v, want missing gfxfile", err)
	}
}

func TestBuildUnknown(t *testing.T) {
	s := section("GfxBuilding", `EditName "hut"`)
	record, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	u, ok := record.(*Unknown)
	if !ok {
		t.Fatalf("record is %T, want *Unknown", record)
	}
	if !reflect.DeepEqual(u.Section, s) || u.Schema() != "GfxBuilding" {
		t.Errorf("Unknown = %+v", u)
	}
}
