package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitgub.com/cam-per/cultures/cultures/bmd"
	"gitgub.com/cam-per/cultures/cultures/cif"
	"gitgub.com/cam-per/cultures/internal/registry"
	"github.com/tidwall/gjson"
	"golang.org/x/image/bmp"
)

// run executes the command line and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{stderr: io.Discard}
	cmd := a.command()
	var out bytes.Buffer
	cmd.Writer = &out
	cmd.ErrWriter = io.Discard
	err := cmd.Run(context.Background(), append([]string{"cultures"}, args...))
	return out.String(), err
}

func write(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func libFile(files map[string][]byte, order ...string) []byte {
	var table bytes.Buffer
	u32 := func(v uint32) { binary.Write(&table, binary.LittleEndian, v) }
	u32(1)
	u32(0)
	u32(uint32(len(order)))
	size := 12
	for _, name := range order {
		size += 4 + len(name) + 8
	}
	offset := uint32(size)
	for _, name := range order {
		u32(uint32(len(name)))
		table.WriteString(name)
		u32(offset)
		u32(uint32(len(files[name])))
		offset += uint32(len(files[name]))
	}
	for _, name := range order {
		table.Write(files[name])
	}
	return table.Bytes()
}

func mapFile() []byte {
	var buf bytes.Buffer
	rec := func(tag string, payload []byte) {
		var t [8]byte
		copy(t[:], tag)
		buf.Write(t[:])
		binary.Write(&buf, binary.LittleEndian, []uint32{0, uint32(len(payload)), 0, 0, 0, 0})
		buf.Write(payload)
	}
	rec("hoixzisl", []byte{2, 0, 0, 0, 2, 0, 0, 0})
	rec("hoixzzzz", []byte{9, 9, 9})

	body := []byte{0x84, 7}
	var ch bytes.Buffer
	length := uint32(len(body)) + 16
	ch.WriteByte(1)
	binary.Write(&ch, binary.LittleEndian, length)
	ch.WriteString("hoixehml")
	binary.Write(&ch, binary.LittleEndian, []uint32{4, length})
	ch.Write(body)
	rec("hoixehml", ch.Bytes())
	return buf.Bytes()
}

func bmdFile() []byte {
	var buf bytes.Buffer
	words := func(v ...uint32) { binary.Write(&buf, binary.LittleEndian, v) }
	words(0x25, 0, 0, 2, 4, 2, 0, 0, 0)
	words(0x3E9, 0, 12)
	buf.Write([]byte{1, 0, 0, 2, 1, 0, 4, 3, 4, 1, 1, 1})
	words(0x3E9, 0, 4)
	buf.Write([]byte{0x02, 10, 20, 0x00})
	words(0x3E9, 0, 8)
	words(0, 0)
	return buf.Bytes()
}

// oneFrame is a sprite with a single 2x1 normal frame of indices 10 and 20.
func oneFrame() []byte {
	var buf bytes.Buffer
	words := func(v ...uint32) { binary.Write(&buf, binary.LittleEndian, v) }
	words(0x25, 0, 0, 1, 4, 1, 0, 0, 0)
	words(0x3E9, 0, 6)
	buf.Write([]byte{1, 0, 0, 2, 1, 0})
	words(0x3E9, 0, 4)
	buf.Write([]byte{0x02, 10, 20, 0x00})
	words(0x3E9, 0, 4)
	words(0)
	return buf.Bytes()
}

func pcxFile(withPalette bool) []byte {
	hdr := make([]byte, 128)
	hdr[0], hdr[1], hdr[2], hdr[3] = 0x0A, 5, 1, 8
	hdr[8], hdr[10] = 1, 1
	buf := bytes.NewBuffer(hdr)
	buf.Write([]byte{0xC4, 0x80})
	if withPalette {
		buf.WriteByte(0x0C)
		for i := 0; i < 256; i++ {
			buf.Write([]byte{byte(i), 0, 0})
		}
	}
	return buf.Bytes()
}

func TestLs(t *testing.T) {
	files := map[string][]byte{
		`data\maps\m1.dat`:    bytes.Repeat([]byte{1}, 2048),
		`data\engine2d\a.pcx`: {1, 2, 3},
	}
	lib := write(t, "data.lib", libFile(files, `data\maps\m1.dat`, `data\engine2d\a.pcx`))

	out, err := run(t, "--archive", lib, "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.Contains(out, "data/maps/m1.dat") || !strings.Contains(out, "2.0 KiB") {
		t.Errorf("ls output:\n%s", out)
	}
	if !strings.Contains(out, "2 files") {
		t.Errorf("ls summary missing:\n%s", out)
	}

	out, err = run(t, "--archive", lib, "ls", `DATA\ENGINE2D`)
	if err != nil {
		t.Fatalf("ls prefix: %v", err)
	}
	if strings.Contains(out, "m1.dat") || !strings.Contains(out, "1 files") {
		t.Errorf("ls prefix output:\n%s", out)
	}

	out, err = run(t, "--archive", lib, "cat", `data\engine2d\A.PCX`)
	if err != nil || out != "\x01\x02\x03" {
		t.Errorf("cat = %q, %v", out, err)
	}
}

func TestHexdump(t *testing.T) {
	p := write(t, "x.bin", []byte("0123456789abcdefXYZ"))
	out, err := run(t, "--local", "hexdump", p, "0x10")
	if err != nil {
		t.Fatalf("hexdump: %v", err)
	}
	if !strings.HasPrefix(out, "00000010") || !strings.Contains(out, "58 59 5a") {
		t.Errorf("hexdump output:\n%s", out)
	}
}

func TestMapJSON(t *testing.T) {
	p := write(t, "map.dat", mapFile())
	out, err := run(t, "--local", "map", "--json", p)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if w := gjson.Get(out, "width").Int(); w != 2 {
		t.Errorf("width = %d, want 2", w)
	}
	if gjson.Get(out, "complete").Bool() {
		t.Error("complete = true for a map without tiles")
	}
	if n := gjson.Get(out, "sections.#").Int(); n != 3 {
		t.Errorf("sections = %d, want 3", n)
	}
	if gjson.Get(out, "sections.1.known").Bool() || gjson.Get(out, "sections.1.tag").String() != "hoixzzzz" {
		t.Errorf("section 1 = %s", gjson.Get(out, "sections.1").Raw)
	}
	if e := gjson.Get(out, "sections.2.elements").Int(); e != 4 {
		t.Errorf("elevation elements = %d, want 4", e)
	}
	missing := gjson.Get(out, "missing").Array()
	if len(missing) == 0 || missing[0].String() != "hoixrbme" {
		t.Errorf("missing = %v", missing)
	}
}

func TestCif(t *testing.T) {
	var buf bytes.Buffer
	err := cif.Encode(&buf, []cif.Section{
		{Name: "GfxPalette256", Items: []cif.Item{
			{Key: "editname", Value: `"tree"`},
			{Key: "gfxfile", Value: `"data\pal\tree.pcx"`},
		}},
		{Name: "GfxPalette256", Items: []cif.Item{
			{Key: "editname", Value: `"rock"`},
			{Key: "gfxfile", Value: `"data\pal\rock.pcx"`},
		}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	p := write(t, "palettes.cif", buf.Bytes())

	out, err := run(t, "--local", "cif", p)
	if err != nil {
		t.Fatalf("cif: %v", err)
	}
	if !strings.Contains(out, "tree file=data\\pal\\tree.pcx") || !strings.Contains(out, "rock") {
		t.Errorf("cif output:\n%s", out)
	}

	out, err = run(t, "--local", "cif", "--ini", p)
	if err != nil {
		t.Fatalf("cif --ini: %v", err)
	}
	if strings.Count(out, "[GfxPalette256]") != 2 {
		t.Errorf("cif --ini output:\n%s", out)
	}

	out, err = run(t, "--local", "cif", "--raw", p)
	if err != nil {
		t.Fatalf("cif --raw: %v", err)
	}
	if !strings.Contains(out, `editname "rock"`) {
		t.Errorf("cif --raw output:\n%s", out)
	}
}

func TestBmd(t *testing.T) {
	p := write(t, "tree.bmd", bmdFile())
	out, err := run(t, "--local", "bmd", "--json", p)
	if err != nil {
		t.Fatalf("bmd --json: %v", err)
	}
	if n := gjson.Get(out, "frames.#").Int(); n != 2 {
		t.Fatalf("frames = %d, want 2", n)
	}
	if k := gjson.Get(out, "frames.1.kind").String(); k != "extended" {
		t.Errorf("frames.1.kind = %q", k)
	}
	if w := gjson.Get(out, "frames.0.width").Int(); w != 2 {
		t.Errorf("frames.0.width = %d", w)
	}

	dir := filepath.Join(t.TempDir(), "frames")
	if _, err := run(t, "--local", "bmd", "--out", dir, p); err == nil {
		t.Error("export of an extended frame overrunning its width succeeded")
	}
}

func TestBmdExport(t *testing.T) {
	p := write(t, "one.bmd", oneFrame())
	palette := write(t, "pal.pcx", pcxFile(true))

	dir := filepath.Join(t.TempDir(), "frames")
	if _, err := run(t, "--local", "bmd", "--out", dir, "--palette", palette, p); err != nil {
		t.Fatalf("bmd --out: %v", err)
	}
	f, err := os.Open(filepath.Join(dir, "frame_0000.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if r, _, _, _ := img.At(1, 0).RGBA(); r>>8 != 20 {
		t.Errorf("pixel red = %d, want 20", r>>8)
	}
	if _, err := os.Stat(filepath.Join(dir, "sheet.png")); err != nil {
		t.Errorf("sheet: %v", err)
	}
}

func TestPcxConvert(t *testing.T) {
	p := write(t, "tex.pcx", pcxFile(true))
	out := filepath.Join(t.TempDir(), "tex.bmp")
	if _, err := run(t, "--local", "pcx", "--scale", "3", p, out); err != nil {
		t.Fatalf("pcx: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("bmp.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 6 {
		t.Errorf("bounds = %v, want 6x6", b)
	}
	if r, _, _, _ := img.At(5, 5).RGBA(); r>>8 != 0x80 {
		t.Errorf("pixel red = %d, want 0x80", r>>8)
	}

	if _, err := run(t, "--local", "pcx", write(t, "nopal.pcx", pcxFile(false)), out); err == nil {
		t.Error("pcx without palette converted")
	}
	if _, err := run(t, "--local", "pcx", "--scale", "0", p, out); err == nil {
		t.Error("scale 0 accepted")
	}
}

func TestPcxIndexed(t *testing.T) {
	p := write(t, "tex.pcx", pcxFile(true))
	out := filepath.Join(t.TempDir(), "tex.png")
	if _, err := run(t, "--local", "pcx", "--indexed", "--scale", "2", p, out); err != nil {
		t.Fatalf("pcx --indexed: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	paletted, ok := img.(*image.Paletted)
	if !ok {
		t.Fatalf("decoded %T, want *image.Paletted", img)
	}
	if b := paletted.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("bounds = %v, want 4x4", b)
	}
	if i := paletted.ColorIndexAt(3, 3); i != 0x80 {
		t.Errorf("index = %#x, want 0x80", i)
	}

	if _, err := run(t, "--local", "pcx", "--indexed", "--mask", p, p, out); err == nil {
		t.Error("--indexed with --mask accepted")
	}
}

func cifFile(t *testing.T, sections ...cif.Section) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := cif.Encode(&buf, sections, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return buf.Bytes()
}

func TestTextureAndLandscape(t *testing.T) {
	item := func(k, v string) cif.Item { return cif.Item{Key: k, Value: v} }
	files := map[string][]byte{
		registry.PalettesPath: cifFile(t, cif.Section{Name: "GfxPalette256", Items: []cif.Item{
			item("editname", `"tree"`), item("gfxfile", `"data\pal\tree.pcx"`),
		}}),
		registry.PatternsPath: cifFile(t, cif.Section{Name: "GfxPattern", Items: []cif.Item{
			item("EditName", `"grass"`), item("GfxTexture", `"data\tex\grass.pcx"`),
		}}),
		registry.TransitionsPath: cifFile(t),
		registry.LandscapesPath: cifFile(t, cif.Section{Name: "GfxLandscape", Items: []cif.Item{
			item("EditName", `"oak"`), item("GfxBobLibs", `"data\bob\oak.bmd"`), item("GfxPalette", `"tree"`),
		}}),
		`data\pal\tree.pcx`:  pcxFile(true),
		`data\tex\grass.pcx`: pcxFile(true),
		`data\bob\oak.bmd`:   oneFrame(),
	}
	order := []string{
		registry.PalettesPath, registry.PatternsPath, registry.TransitionsPath, registry.LandscapesPath,
		`data\pal\tree.pcx`, `data\tex\grass.pcx`, `data\bob\oak.bmd`,
	}
	lib := write(t, "data.lib", libFile(files, order...))

	out := filepath.Join(t.TempDir(), "grass.png")
	if _, err := run(t, "--archive", lib, "texture", "pattern", "grass", out); err != nil {
		t.Fatalf("texture: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if r, _, _, _ := img.At(1, 1).RGBA(); r>>8 != 0x80 {
		t.Errorf("texture red = %d, want 0x80", r>>8)
	}
	if _, err := run(t, "--archive", lib, "texture", "transition", "grass", out); err == nil {
		t.Error("unknown transition exported")
	}
	if _, err := run(t, "--archive", lib, "texture", "bob", "grass", out); err == nil {
		t.Error("unknown texture kind accepted")
	}

	dir := filepath.Join(t.TempDir(), "oak")
	if _, err := run(t, "--archive", lib, "landscape", "oak", dir); err != nil {
		t.Fatalf("landscape: %v", err)
	}
	g, err := os.Open(filepath.Join(dir, "frame_0000.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	frame, err := png.Decode(g)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if r, _, _, _ := frame.At(1, 0).RGBA(); r>>8 != 20 {
		t.Errorf("frame red = %d, want 20", r>>8)
	}
}

func TestSheetKeepsOffsets(t *testing.T) {
	info := []bmd.Frame{
		{Dx: 0, Dy: 0, Width: 2, Rows: 1},
		{Dx: 1, Dy: 1, Width: 1, Rows: 1},
	}
	a := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	b := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	b.SetNRGBA(0, 0, color.NRGBA{R: 9, A: 0xFF})

	out := sheet(info, []*image.NRGBA{a, b})
	if r := out.Bounds(); r != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds = %v, want 4x2", r)
	}
	// cell is 2x2; the second frame sits one pixel right and down in its cell
	if c := out.NRGBAAt(3, 1); c.R != 9 {
		t.Errorf("(3,1) = %v, want the second frame", c)
	}
}
