// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"io/fs"
	gopath "path"
	"slices"
	"strings"
)

// A generalisation of a "file path"
// - specifies the public containing *FS, the hidden sub-FS, and the path within that FS
// - suitable for use as a map key
// - common operations are fast (Open, Stat, ReadDir)
// - rarer operations are possible (specifically String to get full path)
type path struct {
	container *FS
	fsys      fs.FS
	name      string
}

// ShallowJoin returns a path with some elements added. Caution! It is only a lexical operation,
// and will return an unusable path if passed a Special character
func (o path) ShallowJoin(p string) path { o.name = gopath.Join(o.name, p); return o }

// Open opens the raw file (no archive-browsing decorations)
func (o path) Open() (fs.File, error) { return o.fsys.Open(o.name) }

func (o path) Stat() (fs.FileInfo, error) { return fs.Stat(o.fsys, o.name) }

// String returns the full path to the file (at some small cost)
func (o path) String() string {
	o.container.rMu.RLock()
	defer o.container.rMu.RUnlock()
	warps := []string{o.name}
	fsys := o.fsys
	for fsys != o.container.root {
		outer, ok := o.container.reverse[fsys]
		if !ok {
			break
		}
		warps = append(warps, outer.name+Special)
		fsys = outer.fsys
	}
	slices.Reverse(warps)
	return gopath.Join(warps...)
}

// mountOf returns the archive file that fsys was mounted from
func (fsys *FS) mountOf(sub fs.FS) (path, bool) {
	fsys.rMu.RLock()
	defer fsys.rMu.RUnlock()
	o, ok := fsys.reverse[sub]
	return o, ok
}

// path turns a string into our internal path representation,
// descending into an archive at each component that ends in Special.
//
// Nonexistent paths might, but won't always, return fs.ErrNotExist
func (fsys *FS) path(name string) (path, error) {
	p := path{fsys, fsys.root, "."}
	for {
		at := specialComponent(name)
		if at == 0 {
			return p.ShallowJoin(name), nil
		}
		left, right := pcut(name, at)
		isar, mnt := p.ShallowJoin(strings.TrimSuffix(left, Special)).getArchive(true)
		if !isar {
			return path{}, fs.ErrNotExist
		}
		p, name = mnt, right
	}
}

// specialComponent returns the number of leading components up to and including
// the first that names a mountpoint, or 0 if there is none
func specialComponent(name string) int {
	for i := 1; i <= plen(name); i++ {
		_, right := pcut(name, i-1)
		first, _, _ := strings.Cut(right, "/")
		if len(first) > len(Special) && strings.HasSuffix(first, Special) {
			return i
		}
	}
	return 0
}
