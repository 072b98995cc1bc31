// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"encoding/binary"
	"io"
	"io/fs"
	"log/slog"
	gopath "path"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/elliotnunn/isfs/internal/fileid"
	"github.com/elliotnunn/isfs/internal/fskeleton"
	"github.com/elliotnunn/isfs/internal/installshield"
	"github.com/therootcompany/xz"
)

const probeSize = 8

func (o path) probeArchive() (fsysGenerator, error) {
	f, err := o.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, probeSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	header = header[:n]
	matchAt := func(s string, offset int) bool {
		return len(header) >= offset+len(s) && string(header[offset:][:len(s)]) == s
	}

	switch {
	case installshield.Sniff(header):
		return o.installShieldGenerator, nil
	case matchAt("\x1f\x8b", 0): // gzip
		return o.wrapperGenerator(".gz .gzip .tgz=.tar", func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		}), nil
	case matchAt("BZh", 0): // bzip2
		return o.wrapperGenerator(".bz .bz2 .bzip2 .tbz=.tar .tb2=.tar", func(r io.Reader) (io.Reader, error) {
			return bzip2.NewReader(r), nil
		}), nil
	case matchAt("\xfd7zXZ\x00", 0): // xz
		return o.wrapperGenerator(".xz .txz=.tar", func(r io.Reader) (io.Reader, error) {
			return xz.NewReader(r, xz.DefaultDictMax)
		}), nil
	}
	return nil, nil
}

func (o path) installShieldGenerator() (fs.FS, error) {
	ra, err := o.readerAt()
	if err != nil {
		return nil, err
	}
	if o.container.cache == nil {
		return installshield.New(ra)
	}
	return installshield.NewCached(ra, o.container.cache, o.identity())
}

// readerAt gives random access to the archive file, reading it into memory if it is only sequential.
// An open handle is kept for the life of the mount.
func (o path) readerAt() (io.ReaderAt, error) {
	f, err := o.Open()
	if err != nil {
		return nil, err
	}
	if ra, ok := f.(io.ReaderAt); ok {
		if s, err := f.Stat(); err == nil {
			return io.NewSectionReader(ra, 0, s.Size()), nil
		}
		return ra, nil
	}
	defer f.Close()
	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	slog.Debug("archiveSlurped", "path", o, "size", len(buf))
	return bytes.NewReader(buf), nil
}

// identity namespaces the cache: by inode and birth time for files on disk, otherwise by path and size
func (o path) identity() uint64 {
	if o.fsys == o.container.root {
		id, err := fileid.Get(o.fsys, o.name)
		if err == nil {
			return id.Sum64()
		}
	}
	h := xxhash.New()
	h.WriteString(o.String())
	if s, err := o.Stat(); err == nil {
		binary.Write(h, binary.LittleEndian, s.Size())
		binary.Write(h, binary.LittleEndian, s.ModTime().UnixNano())
	}
	return h.Sum64()
}

// wrapperGenerator mounts a single-file compression format as a directory containing the decompressed file
func (o path) wrapperGenerator(suffixes string, decompressor func(io.Reader) (io.Reader, error)) fsysGenerator {
	return func() (fs.FS, error) {
		stat, err := o.Stat()
		if err != nil {
			return nil, err
		}
		innerName := changeSuffix(gopath.Base(o.name), suffixes)
		opener := func() (io.Reader, error) {
			f, err := o.Open()
			if err != nil {
				return nil, err
			}
			r, err := decompressor(f)
			if err != nil {
				f.Close()
				return nil, err
			}
			return readCloser{r, f}, nil
		}
		fsys := fskeleton.New()
		fsys.CreateReaderFile(innerName, 0, opener, fskeleton.SizeUnknown, stat.Mode().Perm(), stat.ModTime(), nil)
		fsys.NoMore()
		return fsys, nil
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

func changeSuffix(s string, suffixes string) string {
	for _, rule := range strings.Split(suffixes, " ") {
		from, to, _ := strings.Cut(rule, "=")
		if strings.HasSuffix(s, from) && len(s) > len(from) {
			return s[:len(s)-len(from)] + to
		}
	}
	return s
}
