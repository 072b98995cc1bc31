// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"io"
	"io/fs"
)

var (
	_ fs.FS        = new(FS)
	_ fs.StatFS    = new(FS)
	_ fs.ReadDirFS = new(FS)
)

func (fsys *FS) Open(name string) (f fs.File, err error) {
	defer func() {
		if err != nil {
			err = &fs.PathError{Op: "open", Path: name, Err: err}
		}
	}()

	if !fs.ValidPath(name) {
		return nil, fs.ErrInvalid
	}

	o, err := fsys.path(name)
	if err != nil {
		return nil, err
	}
	return o.cookedOpen()
}

// cookedOpen decorates directories so that their listings include mountpoints
func (o path) cookedOpen() (fs.File, error) {
	f, err := o.Open()
	if err != nil {
		return nil, err
	}
	rd, ok := f.(fs.ReadDirFile)
	if !ok {
		return f, nil
	}
	s, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !s.IsDir() {
		return f, nil
	}
	return &dir{path: o, obj: rd}, nil
}

type dir struct {
	path  path
	obj   fs.ReadDirFile
	list  []fs.DirEntry
	lseek int
	read  bool
}

func (d *dir) Stat() (fs.FileInfo, error) { return d.path.cookedStat() }
func (d *dir) Close() error               { return d.obj.Close() }
func (d *dir) Read(p []byte) (int, error) { return 0, io.EOF }
