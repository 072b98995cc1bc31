// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package installshield

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
)

// DataStart is the position of the first entry's compressed bytes.
const DataStart = 255

// Entry locates one file's compressed data.
type Entry struct {
	Offset uint32 // relative to DataStart
	Length uint32 // compressed size as recorded in the table of contents
}

// ByteOffset returns the absolute position of the compressed data in the package.
func (e Entry) ByteOffset() int64 { return DataStart + int64(e.Offset) }

// Header is the fixed structure at the start of a package.
type Header struct {
	Signature   uint32
	_           [8]byte
	FileCount   uint16
	_           [4]byte
	ArchiveSize uint32
	_           [19]byte
	TOCAddress  int32
	_           [4]byte
	DirCount    uint16
}

type dirRecord struct {
	FileCount uint16
	ChunkSize uint16
	NameLen   uint16
}

const dirRecordSize = 6

type fileRecord struct {
	_         [7]byte
	CompSize  uint32
	_         [12]byte
	ChunkSize uint16
	_         [4]byte
	NameLen   uint8
}

const fileRecordSize = 30

// Index maps backslash-separated names to entries.
// Names keep the position where they first appeared, but a repeated name takes the later entry.
type Index struct {
	names   []string
	entries map[string]Entry
}

func (x *Index) set(name string, e Entry) {
	if _, ok := x.entries[name]; !ok {
		x.names = append(x.names, name)
	}
	x.entries[name] = e
}

// Lookup returns the entry for a name such as `PROGRAM\SETUP.EXE`.
func (x *Index) Lookup(name string) (Entry, bool) {
	e, ok := x.entries[name]
	return e, ok
}

// Names lists every name in table-of-contents order.
func (x *Index) Names() []string { return slices.Clone(x.names) }

func (x *Index) Len() int { return len(x.names) }

// maxIndexHint caps preallocation, because the counts come from the file
const maxIndexHint = 4096

type directory struct {
	name  string
	files int
}

// ParseIndex reads the header and table of contents.
// The position of r afterwards is unspecified.
func ParseIndex(r io.ReadSeeker) (Header, *Index, error) {
	var hdr Header
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return hdr, nil, err
	}
	if err := readRecord(r, &hdr); err != nil {
		return hdr, nil, fmt.Errorf("read header: %w", err)
	}
	if hdr.TOCAddress < 0 {
		return hdr, nil, fmt.Errorf("%w: table of contents at %d", ErrFormat, hdr.TOCAddress)
	}
	if _, err := r.Seek(int64(hdr.TOCAddress), io.SeekStart); err != nil {
		return hdr, nil, fmt.Errorf("seek to table of contents: %w", err)
	}

	dirs := make([]directory, 0, hdr.DirCount)
	seen := make(map[string]bool, hdr.DirCount)
	total := 0
	for i := range int(hdr.DirCount) {
		var rec dirRecord
		if err := readRecord(r, &rec); err != nil {
			return hdr, nil, fmt.Errorf("read directory %d: %w", i, err)
		}
		name, err := readASCII(r, int(rec.NameLen))
		if err != nil {
			return hdr, nil, fmt.Errorf("read directory %d name: %w", i, err)
		}
		if err := skip(r, int64(rec.ChunkSize)-int64(rec.NameLen)-dirRecordSize); err != nil {
			return hdr, nil, fmt.Errorf("directory %q: %w", name, err)
		}
		if seen[name] {
			return hdr, nil, fmt.Errorf("%w: directory %q listed twice", ErrFormat, name)
		}
		seen[name] = true
		dirs = append(dirs, directory{name, int(rec.FileCount)})
		total += int(rec.FileCount)
	}

	if err := checkRoom(r, int64(total)*fileRecordSize); err != nil {
		return hdr, nil, fmt.Errorf("%d file records: %w", total, err)
	}
	hint := min(total, maxIndexHint)
	idx := &Index{
		names:   make([]string, 0, hint),
		entries: make(map[string]Entry, hint),
	}
	var running uint32
	for _, d := range dirs {
		for i := range d.files {
			var rec fileRecord
			if err := readRecord(r, &rec); err != nil {
				return hdr, nil, fmt.Errorf("read file %d of %q: %w", i, d.name, err)
			}
			name, err := readASCII(r, int(rec.NameLen))
			if err != nil {
				return hdr, nil, fmt.Errorf("read file %d name of %q: %w", i, d.name, err)
			}
			key := d.name + `\` + name
			idx.set(key, Entry{Offset: running, Length: rec.CompSize})
			running += rec.CompSize
			if err := skip(r, int64(rec.ChunkSize)-int64(rec.NameLen)-fileRecordSize); err != nil {
				return hdr, nil, fmt.Errorf("file %q: %w", key, err)
			}
		}
	}

	if idx.Len() != total {
		slog.Debug("installshieldDuplicateNames", "records", total, "names", idx.Len())
	}
	if int(hdr.FileCount) != total {
		slog.Debug("installshieldFileCountMismatch", "header", hdr.FileCount, "records", total)
	}
	return hdr, idx, nil
}
