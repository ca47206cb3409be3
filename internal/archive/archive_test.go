package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"gitgub.com/cam-per/cultures/cultures/errs"
	"golang.org/x/text/encoding/charmap"
)

type file struct {
	path string
	data []byte
}

func build(dirs []string, files []file) []byte {
	var table bytes.Buffer
	str := func(s string) {
		binary.Write(&table, binary.LittleEndian, uint32(len(s)))
		table.WriteString(s)
	}
	binary.Write(&table, binary.LittleEndian, header{Version: 1, Dirs: uint32(len(dirs)), Files: uint32(len(files))})
	for i, d := range dirs {
		str(d)
		binary.Write(&table, binary.LittleEndian, uint32(i))
	}
	size := table.Len()
	for _, f := range files {
		size += 4 + len(f.path) + 8
	}
	offset := uint32(size)
	for _, f := range files {
		str(f.path)
		binary.Write(&table, binary.LittleEndian, offset)
		binary.Write(&table, binary.LittleEndian, uint32(len(f.data)))
		offset += uint32(len(f.data))
	}
	for _, f := range files {
		table.Write(f.data)
	}
	return table.Bytes()
}

func sample(t *testing.T) *Archive {
	t.Helper()
	data := build(
		[]string{`data\`, `data\engine2d\`},
		[]file{
			{`data\engine2d\Palettes.cif`, []byte("palettes")},
			{`data\maps\m1\map.dat`, []byte{1, 2, 3}},
			{`readme.txt`, []byte("hi")},
		},
	)
	archive, err := New(bytes.NewReader(data), int64(len(data)), charmap.Windows1252)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return archive
}

func TestReadFileCaseInsensitive(t *testing.T) {
	archive := sample(t)
	for _, name := range []string{
		"data/engine2d/palettes.cif",
		`DATA\ENGINE2D\PALETTES.CIF`,
		"Data/Engine2d/Palettes.cif",
	} {
		got, err := fs.ReadFile(archive, name)
		if err != nil {
			t.Fatalf("ReadFile(%q): %v", name, err)
		}
		if string(got) != "palettes" {
			t.Errorf("ReadFile(%q) = %q", name, got)
		}
	}
}

func TestStat(t *testing.T) {
	archive := sample(t)
	info, err := archive.Stat(`data\maps\m1\map.dat`)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	e := info.(*Entry)
	if e.Size() != 3 || e.IsDir() || e.Name() != "map.dat" {
		t.Errorf("entry = %+v", e)
	}
	if e.Path() != "data/maps/m1/map.dat" {
		t.Errorf("Path = %q", e.Path())
	}
	got, err := archive.ReadRange(e.Offset(), e.Size())
	if err != nil || !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("ReadRange = %v, %v", got, err)
	}
}

func TestNotFound(t *testing.T) {
	archive := sample(t)
	_, err := archive.Open("data/missing.bin")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
	if _, err := archive.Open("/data"); !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("err = %v, want fs.ErrInvalid", err)
	}
}

func TestWalk(t *testing.T) {
	archive := sample(t)
	var files []string
	err := fs.WalkDir(archive, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir: %v", err)
	}
	sort.Strings(files)
	want := []string{"data/engine2d/Palettes.cif", "data/maps/m1/map.dat", "readme.txt"}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
	if len(archive.Files()) != 3 || len(archive.Dirs()) != 2 || archive.Version() != 1 {
		t.Errorf("files/dirs/version = %d/%d/%d", len(archive.Files()), len(archive.Dirs()), archive.Version())
	}
}

func TestReadDirPaging(t *testing.T) {
	archive := sample(t)
	f, err := archive.Open("data")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	dir := f.(fs.ReadDirFile)
	first, err := dir.ReadDir(1)
	if err != nil || len(first) != 1 {
		t.Fatalf("ReadDir(1) = %v, %v", first, err)
	}
	rest, err := dir.ReadDir(5)
	if err != nil || len(rest) != 1 {
		t.Fatalf("ReadDir(5) = %v, %v", rest, err)
	}
	if _, err := dir.ReadDir(1); err != io.EOF {
		t.Errorf("ReadDir at end err = %v, want io.EOF", err)
	}
}

func TestDuplicatePathFirstWins(t *testing.T) {
	data := build(nil, []file{{"a.txt", []byte("one")}, {"A.TXT", []byte("two")}})
	archive, err := New(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, _ := archive.ReadFile("a.txt")
	if string(got) != "one" {
		t.Errorf("ReadFile = %q, want one", got)
	}
}

func TestStructuralFailures(t *testing.T) {
	data := build(nil, []file{{"a.txt", []byte("payload")}})
	tests := []struct {
		name string
		data []byte
	}{
		{"header", data[:6]},
		{"table", data[:20]},
		{"span beyond source", data[:len(data)-3]},
	}
	for _, tt := range tests {
		_, err := New(bytes.NewReader(tt.data), int64(len(tt.data)), nil)
		if !errors.Is(err, errs.ErrStructural) {
			t.Errorf("%s: err = %v, want structural", tt.name, err)
		}
	}
}

func TestReadRangeBounds(t *testing.T) {
	archive := sample(t)
	if _, err := archive.ReadRange(archive.size-1, 2); !errors.Is(err, ErrRange) {
		t.Errorf("err = %v, want ErrRange", err)
	}
}

func TestOpenFile(t *testing.T) {
	data := build(nil, []file{{"x.bin", []byte{9}}})
	name := filepath.Join(t.TempDir(), "data.lib")
	if err := os.WriteFile(name, data, 0o600); err != nil {
		t.Fatal(err)
	}
	archive, err := Open(name, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer archive.Close()
	got, err := archive.ReadFile("x.bin")
	if err != nil || !bytes.Equal(got, []byte{9}) {
		t.Errorf("ReadFile = %v, %v", got, err)
	}
}
