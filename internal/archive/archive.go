// Package archive reads the game's .lib data archive: a directory table
// followed by the concatenated file contents. The archive is exposed as an
// fs.FS with case-insensitive paths.
package archive

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"gitgub.com/cam-per/cultures/cultures/errs"
	"gitgub.com/cam-per/cultures/utils"
	"golang.org/x/text/encoding/charmap"
)

// maxPath bounds stored path lengths so a corrupt table cannot request
// arbitrary allocations.
const maxPath = 1 << 12

var ErrRange = errors.New("archive: byte range exceeds source")

type header struct {
	Version uint32
	Dirs    uint32
	Files   uint32
}

// Dir is a directory record of the table.
type Dir struct {
	Path  string
	Depth uint32
}

type Archive struct {
	header header
	r      io.ReaderAt
	size   int64
	closer io.Closer
	dirs   []Dir
	files  []*Entry
	fm     map[string]*Entry
	root   *Entry
}

// New parses the directory table of an archive of size bytes. Stored paths
// are decoded with enc; nil keeps them as raw bytes.
func New(r io.ReaderAt, size int64, enc *charmap.Charmap) (*Archive, error) {
	archive := &Archive{
		r:    r,
		size: size,
		root: newDirEntry(".", "."),
	}
	archive.fm = map[string]*Entry{".": archive.root}
	if err := archive.readTable(enc); err != nil {
		return nil, err
	}
	return archive, nil
}

// Open opens an archive file from the local file system.
func Open(name string, enc *charmap.Charmap) (*Archive, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	archive, err := New(f, info.Size(), enc)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	archive.closer = f
	return archive, nil
}

func (archive *Archive) Close() error {
	if archive.closer == nil {
		return nil
	}
	return archive.closer.Close()
}

func (archive *Archive) readTable(enc *charmap.Charmap) error {
	r := bufio.NewReader(io.NewSectionReader(archive.r, 0, archive.size))
	if err := binary.Read(r, binary.LittleEndian, &archive.header); err != nil {
		return errs.Truncated("archive header", err)
	}

	for i := uint32(0); i < archive.header.Dirs; i++ {
		name, err := readPath(r, enc)
		if err != nil {
			return fmt.Errorf("archive directory %d: %w", i, err)
		}
		var depth uint32
		if err := binary.Read(r, binary.LittleEndian, &depth); err != nil {
			return errs.Truncated("archive directory record", err)
		}
		archive.dirs = append(archive.dirs, Dir{Path: name, Depth: depth})
		if name != "" {
			archive.makeDirs(name)
		}
	}

	for i := uint32(0); i < archive.header.Files; i++ {
		name, err := readPath(r, enc)
		if err != nil {
			return fmt.Errorf("archive file %d: %w", i, err)
		}
		var span struct{ Offset, Length uint32 }
		if err := binary.Read(r, binary.LittleEndian, &span); err != nil {
			return errs.Truncated("archive file record", err)
		}
		if int64(span.Offset)+int64(span.Length) > archive.size {
			return errs.Structuralf("archive file %s spans [%d, %d) beyond %d bytes",
				name, span.Offset, int64(span.Offset)+int64(span.Length), archive.size)
		}
		archive.createFile(name, span.Offset, span.Length)
	}
	return nil
}

func readPath(r io.Reader, enc *charmap.Charmap) (string, error) {
	name, err := utils.ReadLongString(r, maxPath)
	switch {
	case errors.Is(err, utils.ErrStringTooLong):
		return "", errs.Structuralf("archive path: %v", err)
	case err != nil:
		return "", errs.Truncated("archive path", err)
	}
	return strings.Trim(strings.ReplaceAll(name.Decode(enc), "\\", "/"), "/"), nil
}

// Key folds a path to its lookup form: forward slashes, lower case.
func Key(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
}

func (archive *Archive) makeDirs(p string) *Entry {
	pwd := archive.root
	key := ""
	for _, part := range strings.Split(p, "/") {
		if part == "" {
			continue
		}
		key = path.Join(key, strings.ToLower(part))
		pwd = pwd.makeDir(strings.ToLower(part), part)
		archive.fm[key] = pwd
	}
	return pwd
}

// createFile registers a file. A later record for an existing path is
// ignored.
func (archive *Archive) createFile(p string, offset, length uint32) {
	dir, name := path.Split(p)
	if name == "" {
		return
	}
	parent := archive.root
	if dir != "" {
		parent = archive.makeDirs(strings.TrimSuffix(dir, "/"))
	}
	e := newFileEntry(p, name, offset, length)
	if parent.add(strings.ToLower(name), e) {
		archive.fm[Key(p)] = e
		archive.files = append(archive.files, e)
	}
}

func (archive *Archive) lookup(op, name string) (*Entry, error) {
	key := Key(name)
	if !fs.ValidPath(key) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	e, ok := archive.fm[key]
	if !ok {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return e, nil
}

// Open implements fs.FS. Names may use either separator and any case but
// must otherwise be valid fs paths.
func (archive *Archive) Open(name string) (fs.File, error) {
	e, err := archive.lookup("open", name)
	if err != nil {
		return nil, err
	}
	if e.isDir {
		return &openedDir{Entry: e}, nil
	}
	return &openedFile{
		entry:         e,
		SectionReader: io.NewSectionReader(archive.r, int64(e.offset), int64(e.length)),
	}, nil
}

func (archive *Archive) Stat(name string) (fs.FileInfo, error) {
	e, err := archive.lookup("stat", name)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (archive *Archive) ReadFile(name string) ([]byte, error) {
	e, err := archive.lookup("readfile", name)
	if err != nil {
		return nil, err
	}
	if e.isDir {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	return archive.ReadRange(e.Offset(), e.Size())
}

func (archive *Archive) ReadDir(name string) ([]fs.DirEntry, error) {
	e, err := archive.lookup("readdir", name)
	if err != nil {
		return nil, err
	}
	if !e.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	out := make([]fs.DirEntry, len(e.entries))
	copy(out, e.entries)
	return out, nil
}

// ReadRange reads length bytes at offset of the archive source.
func (archive *Archive) ReadRange(offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > archive.size {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrRange, offset, offset+length, archive.size)
	}
	buf := make([]byte, length)
	n, err := archive.r.ReadAt(buf, offset)
	if n == len(buf) {
		return buf, nil
	}
	return nil, err
}

// Files lists file entries in table order.
func (archive *Archive) Files() []*Entry { return archive.files }
func (archive *Archive) Dirs() []Dir     { return archive.dirs }
func (archive *Archive) Version() uint32 { return archive.header.Version }
