// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"cmp"
	"io"
	"io/fs"
	"slices"
)

func (d *dir) ReadDir(count int) ([]fs.DirEntry, error) {
	if !d.read {
		listing, err := d.path.cookedReadDir()
		if err != nil {
			return nil, err
		}
		d.list, d.read = listing, true
	}

	// Implement those tricky partial-listing semantics
	n := len(d.list) - d.lseek
	if n == 0 && count > 0 {
		return nil, io.EOF
	}
	if count > 0 && n > count {
		n = count
	}
	list := make([]fs.DirEntry, n)
	copy(list, d.list[d.lseek:][:n])
	d.lseek += n
	return list, nil
}

func (fsys *FS) ReadDir(name string) (l []fs.DirEntry, err error) {
	defer func() {
		if err != nil {
			err = &fs.PathError{Op: "readdir", Path: name, Err: err}
		}
	}()

	if !fs.ValidPath(name) {
		return nil, fs.ErrInvalid
	}

	o, err := fsys.path(name)
	if err != nil {
		return nil, err
	}
	return o.cookedReadDir()
}

// cookedReadDir lists a directory with a mountpoint next to every archive
func (o path) cookedReadDir() ([]fs.DirEntry, error) {
	listing, err := fs.ReadDir(o.fsys, o.name)
	if err != nil {
		return nil, err
	}

	answers := make(chan fs.DirEntry)
	n := 0
	for _, l := range listing {
		if !l.Type().IsRegular() {
			continue
		}
		go func() {
			image := o.ShallowJoin(l.Name())
			isar, _ := image.getArchive(false)
			if !isar {
				answers <- nil
				return
			}
			stat, err := image.Stat()
			if err != nil {
				answers <- nil
				return
			}
			answers <- mountPointEntry{diskImageStat: stat, name: l.Name() + Special}
		}()
		n++
	}

	for range n {
		if l := <-answers; l != nil {
			listing = append(listing, l)
		}
	}

	slices.SortFunc(listing, func(a, b fs.DirEntry) int {
		return cmp.Compare(a.Name(), b.Name())
	})
	return listing, nil
}
