// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package fskeleton

import (
	"io"
	"io/fs"
	"strings"
	"time"
)

// SizeUnknown may be passed to the Create*File functions when the size of a file
// can only be learned by reading it. The first call to Size will then read the whole file.
const SizeUnknown = -1

// CreateDir creates a directory at the specified path.
//
// In common with the other Create*() functions, any missing parent directories will be created implicitly.
// Implicit directories can later be made explicit (only once) with [FS.CreateDir].
//
// mode, mtime and sys are returned by the corresponding methods of [fs.FileInfo].
func (fsys *FS) CreateDir(name string, mode fs.FileMode, mtime time.Time, sys any) error {
	if !fs.ValidPath(name) {
		return fs.ErrInvalid
	}
	nu := newDir(name)
	nu.mode, nu.modtime, nu.sys = mode&^fs.ModeType, mtime, sys
	return fsys.create(name, nu)
}

// createFile validates everything for one of the exported Create*() functions
func (fsys *FS) createFile(name string, order int64, data any, size int64, mode fs.FileMode, mtime time.Time, sys any) error {
	if !fs.ValidPath(name) || name == "." {
		return fs.ErrInvalid
	}
	nu := &fileent{name: baseName(name),
		order:   order,
		size:    size,
		mode:    mode &^ fs.ModeType,
		modtime: mtime,
		sys:     sys,
		data:    data,
	}
	err := fsys.create(name, nu)
	if err != nil {
		return err
	}
	fsys.walkstuff.put(name, order)
	return nil
}

// CreateErrorFile creates a regular file at the specified path,
// which always returns the error of your choice on Read (but not on Close).
//
// order is an arbitrary sort key reported by [FS.Walk], such as an offset into the underlying storage.
func (fsys *FS) CreateErrorFile(name string, order int64, err error, mode fs.FileMode, mtime time.Time, sys any) error {
	return fsys.createFile(name, order, err, 0, mode, mtime, sys)
}

// CreateReaderFile creates a regular file at the specified path, which implements the bare minimum of [fs.File].
// The function r is called on the first Read of each opened instance of the file,
// and the result is closed with the file if it implements [io.Closer].
//
// size may be [SizeUnknown].
func (fsys *FS) CreateReaderFile(name string, order int64, r func() (io.Reader, error), size int64, mode fs.FileMode, mtime time.Time, sys any) error {
	return fsys.createFile(name, order, r, size, mode, mtime, sys)
}

// CreateReaderAtFile creates a regular file at the specified path, which additionally implements [io.ReaderAt] and [io.Seeker].
func (fsys *FS) CreateReaderAtFile(name string, order int64, r io.ReaderAt, size int64, mode fs.FileMode, mtime time.Time, sys any) error {
	if size < 0 {
		return fs.ErrInvalid
	}
	return fsys.createFile(name, order, r, size, mode, mtime, sys)
}

// NoMoreChildren prevents future Create*() calls from adding immediate children to the specified directory.
// Future Create*() calls on this directory will fail with an error wrapping [fs.ErrPermission].
//
// NoMoreChildren unblocks any blocked [fs.ReadDirFile.ReadDir] calls on the specified directory.
func (fsys *FS) NoMoreChildren(name string) error {
	if !fs.ValidPath(name) {
		return fs.ErrInvalid
	}

	at := fsys.root
	for _, c := range components(name) {
		var err error
		at, err = at.implicitSubdir(c)
		if err != nil {
			return err
		}
	}
	at.noMore(false)
	return nil
}

// NoMore prevents all future Create*() calls, which will fail with an error wrapping [fs.ErrPermission].
//
// NoMore unblocks any blocked lookups and [fs.ReadDirFile.ReadDir] calls.
func (fsys *FS) NoMore() {
	fsys.walkstuff.done()
	fsys.root.makeExplicit()
	fsys.root.noMore(true)
}

type node interface {
	fs.DirEntry
	fs.FileInfo
	open() (fs.File, error)
}

func (fsys *FS) create(name string, n node) error {
	comps := components(name)
	if len(comps) == 0 {
		if dir, ok := n.(*dirent); ok {
			return fsys.root.replace(dir)
		}
		return fs.ErrExist
	}

	at := fsys.root
	for _, c := range comps[:len(comps)-1] {
		var err error
		at, err = at.implicitSubdir(c)
		if err != nil {
			return err
		}
	}
	return at.put(n)
}

func components(name string) []string {
	if name == "." {
		return nil
	}
	return strings.Split(name, "/")
}

func baseName(name string) string {
	return name[strings.LastIndexByte(name, '/')+1:]
}
