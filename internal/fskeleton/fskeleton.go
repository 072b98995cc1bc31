// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package fskeleton factors out the common and error-prone code in different [io/fs.FS] implementations.
//
// The tree is populated with the Create*() functions, possibly from another goroutine,
// while lookups proceed concurrently. A lookup that cannot yet be satisfied
// blocks until the missing name is created or until [FS.NoMore] is called.
package fskeleton

import (
	"io/fs"
	"slices"
	"strings"
)

var (
	_ fs.FS        = new(FS)
	_ fs.StatFS    = new(FS)
	_ fs.ReadDirFS = new(FS)
)

// FS is safe for concurrent use from multiple goroutines. It should not be copied after creation.
type FS struct {
	root *dirent
	walkstuff
}

func New() *FS {
	fsys := &FS{root: newDir(".")}
	fsys.walkstuff.init()
	return fsys
}

// Open opens the named file.
// Directories satisfy [fs.ReadDirFile], and regular files are opened lazily on the first Read.
func (fsys *FS) Open(name string) (f fs.File, err error) {
	defer func() {
		if err != nil {
			err = &fs.PathError{Op: "open", Path: name, Err: err}
		}
	}()

	n, err := fsys.lookup(name)
	if err != nil {
		return nil, err
	}
	return n.open()
}

// Stat returns a FileInfo describing the named file.
func (fsys *FS) Stat(name string) (info fs.FileInfo, err error) {
	defer func() {
		if err != nil {
			err = &fs.PathError{Op: "stat", Path: name, Err: err}
		}
	}()

	n, err := fsys.lookup(name)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ReadDir lists the named directory sorted by name, blocking until the directory is complete.
func (fsys *FS) ReadDir(name string) (list []fs.DirEntry, err error) {
	defer func() {
		if err != nil {
			err = &fs.PathError{Op: "readdir", Path: name, Err: err}
		}
	}()

	n, err := fsys.lookup(name)
	if err != nil {
		return nil, err
	}
	d, ok := n.(*dirent)
	if !ok {
		return nil, fs.ErrInvalid
	}
	list, err = (&dir{ent: d}).ReadDir(-1)
	slices.SortFunc(list, func(a, b fs.DirEntry) int { return strings.Compare(a.Name(), b.Name()) })
	return list, err
}

func (fsys *FS) lookup(name string) (node, error) {
	if !fs.ValidPath(name) {
		return nil, fs.ErrInvalid
	}
	var at node = fsys.root
	if name == "." {
		return at, nil
	}
	for c := range strings.SplitSeq(name, "/") {
		d, ok := at.(*dirent)
		if !ok {
			return nil, fs.ErrNotExist
		}
		var err error
		at, err = d.lookup(c)
		if err != nil {
			return nil, err
		}
	}
	return at, nil
}
