// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package installshield

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/elliotnunn/isfs/internal/blast"
	"github.com/elliotnunn/isfs/internal/fskeleton"
	"golang.org/x/sync/singleflight"
)

// Cache holds decompressed entries between opens.
type Cache interface {
	Get(key uint64) ([]byte, bool)
	Put(key uint64, data []byte)
}

// New exposes a package as a read-only filesystem,
// with backslashes in entry names turned into slashes.
// Every open decompresses independently, so the result is safe for concurrent use.
func New(disk io.ReaderAt) (fs.FS, error) {
	return NewCached(disk, nil, 0)
}

// NewCached is like [New], but keeps decompressed entries in c,
// keyed by a hash of id and the entry name. id should identify the package file.
func NewCached(disk io.ReaderAt, c Cache, id uint64) (fs.FS, error) {
	size := int64(math.MaxInt64)
	if s, ok := disk.(interface{ Size() int64 }); ok {
		size = s.Size()
	}
	_, idx, err := ParseIndex(io.NewSectionReader(disk, 0, size))
	if err != nil {
		return nil, err
	}

	fsys := fskeleton.New()
	group := new(singleflight.Group)
	for _, name := range idx.names {
		e := idx.entries[name]
		slash, ok := SlashName(name)
		if !ok {
			slog.Warn("installshieldBadName", "name", name)
			continue
		}
		opener := entryOpener(disk, e, c, group, cacheKey(id, name))
		err := fsys.CreateReaderFile(slash, e.ByteOffset(), opener, fskeleton.SizeUnknown, 0o444, time.Time{}, e)
		if errors.Is(err, fs.ErrExist) {
			slog.Warn("installshieldNameClash", "name", name)
		} else if err != nil {
			return nil, err
		}
	}
	fsys.NoMore()
	return fsys, nil
}

// entryOpener streams the entry, or with a cache, decompresses it once for all concurrent openers
func entryOpener(disk io.ReaderAt, e Entry, c Cache, group *singleflight.Group, key uint64) func() (io.Reader, error) {
	return func() (io.Reader, error) {
		src := io.NewSectionReader(disk, e.ByteOffset(), math.MaxInt64-e.ByteOffset())
		if c == nil {
			return blast.NewReader(src), nil
		}

		if got, ok := c.Get(key); ok {
			return bytes.NewReader(got), nil
		}
		got, err, _ := group.Do(strconv.FormatUint(key, 16), func() (any, error) {
			if got, ok := c.Get(key); ok {
				return got, nil
			}
			var out bytes.Buffer
			if err := blast.Decompress(bufio.NewReaderSize(src, 4096), &out); err != nil {
				return nil, err
			}
			c.Put(key, out.Bytes())
			return out.Bytes(), nil
		})
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(got.([]byte)), nil
	}
}

// SlashName converts `DIR\SUB\FILE` to "DIR/SUB/FILE", dropping empty elements.
// It reports false if the result is not a valid [fs.ValidPath] name.
func SlashName(name string) (string, bool) {
	var parts []string
	for p := range strings.SplitSeq(name, `\`) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	s := strings.Join(parts, "/")
	return s, s != "" && fs.ValidPath(s)
}

func cacheKey(id uint64, name string) uint64 {
	h := xxhash.New()
	binary.Write(h, binary.LittleEndian, id)
	h.WriteString(name)
	return h.Sum64()
}
