// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"io/fs"
	gopath "path"
)

func (fsys *FS) Stat(name string) (_ fs.FileInfo, err error) {
	defer func() {
		if err != nil {
			err = &fs.PathError{Op: "stat", Path: name, Err: err}
		}
	}()

	if !fs.ValidPath(name) {
		return nil, fs.ErrInvalid
	}

	o, err := fsys.path(name)
	if err != nil {
		return nil, err
	}
	return o.cookedStat()
}

// cookedStat gives the root of a mount the name and metadata of its archive file
func (o path) cookedStat() (fs.FileInfo, error) {
	if o.name == "." && o.fsys != o.container.root {
		image, ok := o.container.mountOf(o.fsys)
		if !ok {
			return nil, fs.ErrNotExist
		}
		imgStat, err := image.Stat()
		if err != nil {
			return nil, err
		}
		return mountPointEntry{diskImageStat: imgStat, name: gopath.Base(image.name) + Special}, nil
	}
	return o.Stat()
}
