package archive

import (
	"io"
	"io/fs"
	"path"
	"time"
)

// Entry is a file or directory of the archive. It serves both as
// fs.DirEntry and fs.FileInfo.
type Entry struct {
	path    string
	name    string
	isDir   bool
	offset  uint32
	length  uint32
	entries []fs.DirEntry
	m       map[string]*Entry
}

func newDirEntry(p, name string) *Entry {
	return &Entry{path: p, name: name, isDir: true, m: make(map[string]*Entry)}
}

func newFileEntry(p, name string, offset, length uint32) *Entry {
	return &Entry{path: p, name: name, offset: offset, length: length}
}

func (e *Entry) Name() string               { return e.name }
func (e *Entry) IsDir() bool                { return e.isDir }
func (e *Entry) Info() (fs.FileInfo, error) { return e, nil }
func (e *Entry) Type() fs.FileMode          { return e.Mode().Type() }
func (e *Entry) ModTime() time.Time         { return time.Time{} }
func (e *Entry) Sys() any                   { return nil }

// Path is the archive path with forward slashes, in its stored case.
func (e *Entry) Path() string  { return e.path }
func (e *Entry) Offset() int64 { return int64(e.offset) }
func (e *Entry) Size() int64   { return int64(e.length) }

func (e *Entry) Mode() fs.FileMode {
	if e.isDir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

func (e *Entry) makeDir(key, name string) *Entry {
	if v, ok := e.m[key]; ok {
		return v
	}
	v := newDirEntry(path.Join(e.path, name), name)
	e.add(key, v)
	return v
}

// add keeps the first entry stored under a key.
func (e *Entry) add(key string, item *Entry) bool {
	if _, ok := e.m[key]; ok {
		return false
	}
	e.entries = append(e.entries, item)
	e.m[key] = item
	return true
}

type openedDir struct {
	*Entry
	pos int
}

func (d *openedDir) Stat() (fs.FileInfo, error) { return d.Entry, nil }
func (d *openedDir) Close() error               { return nil }

func (d *openedDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.path, Err: fs.ErrInvalid}
}

func (d *openedDir) ReadDir(n int) ([]fs.DirEntry, error) {
	rest := d.entries[d.pos:]
	if n <= 0 {
		d.pos = len(d.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	if n > len(rest) {
		n = len(rest)
	}
	d.pos += n
	return rest[:n], nil
}

// openedFile reads one file's byte range from the archive source.
type openedFile struct {
	entry *Entry
	*io.SectionReader
}

func (f *openedFile) Stat() (fs.FileInfo, error) { return f.entry, nil }
func (f *openedFile) Close() error               { return nil }
