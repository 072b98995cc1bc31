// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package fskeleton

import (
	"io"
	"io/fs"
	"sync"
	"testing/iotest"
	"time"
)

var _ node = new(fileent)

type fileent struct {
	name    string
	order   int64
	mode    fs.FileMode
	modtime time.Time
	sys     any

	sizeOnce sync.Once
	size     int64

	data any // io.ReaderAt
	// or func() (io.Reader, error)
	// or error
}

func (f *fileent) open() (fs.File, error) {
	switch d := f.data.(type) {
	case io.ReaderAt:
		return &rafile{ent: f, SectionReader: io.NewSectionReader(d, 0, f.size)}, nil
	default:
		return &file{ent: f}, nil
	}
}

// reader returns a fresh stream of the file contents
func (f *fileent) reader() (io.Reader, error) {
	switch d := f.data.(type) {
	case func() (io.Reader, error):
		return d()
	case error:
		return iotest.ErrReader(d), nil
	case io.ReaderAt:
		return io.NewSectionReader(d, 0, f.size), nil
	default:
		panic("fileent.data is not any of our known types")
	}
}

// Order returns the sort key passed at creation.
func (f *fileent) Order() int64 { return f.order }

// common to fs.DirEntry and fs.FileInfo
func (f *fileent) Name() string { return f.name }
func (f *fileent) IsDir() bool  { return false }

// fs.DirEntry
func (f *fileent) Type() fs.FileMode          { return 0 }
func (f *fileent) Info() (fs.FileInfo, error) { return f, nil }

// fs.FileInfo
func (f *fileent) Mode() fs.FileMode  { return f.mode }
func (f *fileent) ModTime() time.Time { return f.modtime }
func (f *fileent) Sys() any           { return f.sys }

// Size reads the whole file if it was created with [SizeUnknown].
// A file that cannot be read has size zero.
func (f *fileent) Size() int64 {
	f.sizeOnce.Do(func() {
		if f.size != SizeUnknown {
			return
		}
		r, err := f.reader()
		if err != nil {
			f.size = 0
			return
		}
		n, err := io.Copy(io.Discard, r)
		if c, ok := r.(io.Closer); ok {
			c.Close()
		}
		if err != nil {
			n = 0
		}
		f.size = n
	})
	return f.size
}

// An Open()ed regular file
type file struct {
	ent *fileent
	rd  io.Reader
}

func (f *file) Stat() (fs.FileInfo, error) { return f.ent, nil }

func (f *file) Read(p []byte) (n int, err error) {
	if f.rd == nil {
		f.rd, err = f.ent.reader()
		if err != nil {
			f.rd = iotest.ErrReader(err)
			return 0, err
		}
	}
	return f.rd.Read(p)
}

func (f *file) Close() error {
	if c, ok := f.rd.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type rafile struct {
	ent *fileent
	*io.SectionReader
}

func (f *rafile) Close() error               { return nil }
func (f *rafile) Stat() (fs.FileInfo, error) { return f.ent, nil }
