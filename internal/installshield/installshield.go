// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package installshield reads InstallShield 3 packages (the setup.z or data.z files on
// installation media), whose entries are compressed with the PKWare DCL implode format.
package installshield

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/elliotnunn/isfs/internal/blast"
)

// Magic is the usual Signature field of a package header. [Open] does not insist on it.
const Magic = 0x8C655D13

var ErrFormat = errors.New("not an InstallShield package")

// Sniff reports whether the start of a file looks like a package.
func Sniff(head []byte) bool {
	return len(head) >= 4 && binary.LittleEndian.Uint32(head) == Magic
}

// A Package is an open InstallShield package.
// Its methods are safe for concurrent use, but calls that touch the stream are serialized.
type Package struct {
	// Strict makes Stream fail when an entry consumes more compressed bytes than the
	// table of contents records for it. Otherwise the overrun is only logged.
	Strict bool

	// Name identifies the package in log events. OpenFile sets it to the path.
	Name string

	mu  sync.Mutex
	r   io.ReadSeeker
	hdr Header
	idx *Index
}

// Open parses the table of contents of a package.
// The Package takes ownership of r: it is closed by [Package.Close],
// or immediately if Open fails, provided that it implements [io.Closer].
func Open(r io.ReadSeeker) (*Package, error) {
	hdr, idx, err := ParseIndex(r)
	if err != nil {
		if c, ok := r.(io.Closer); ok {
			c.Close()
		}
		return nil, err
	}
	slog.Debug("installshieldOpen", "dirs", hdr.DirCount, "files", idx.Len(), "toc", hdr.TOCAddress)
	return &Package{r: r, hdr: hdr, idx: idx}, nil
}

// OpenFile opens a package on disk.
func OpenFile(name string) (*Package, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	p, err := Open(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	p.Name = name
	return p, nil
}

// Close releases the underlying stream.
func (p *Package) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *Package) Header() Header { return p.hdr }

// Contains reports whether a backslash-separated name is present.
func (p *Package) Contains(name string) bool {
	_, ok := p.idx.Lookup(name)
	return ok
}

// Names lists every entry in table-of-contents order.
func (p *Package) Names() []string { return p.idx.Names() }

func (p *Package) Entry(name string) (Entry, bool) { return p.idx.Lookup(name) }

// Stream decompresses one entry into memory.
// An unknown name returns an error wrapping [fs.ErrNotExist], without touching the stream.
func (p *Package) Stream(name string) (*bytes.Reader, error) {
	e, ok := p.idx.Lookup(name)
	if !ok {
		return nil, &fs.PathError{Op: "stream", Path: name, Err: fs.ErrNotExist}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.r.Seek(e.ByteOffset(), io.SeekStart); err != nil {
		return nil, &fs.PathError{Op: "stream", Path: name, Err: err}
	}

	src := &countingReader{r: bufio.NewReaderSize(p.r, 4096)}
	var out bytes.Buffer
	if err := blast.Decompress(src, &out); err != nil {
		return nil, &fs.PathError{Op: "stream", Path: name, Err: err}
	}
	if err := p.checkLength(name, e, src.n); err != nil {
		return nil, &fs.PathError{Op: "stream", Path: name, Err: err}
	}
	return bytes.NewReader(out.Bytes()), nil
}

func (p *Package) checkLength(name string, e Entry, consumed int64) error {
	if consumed <= int64(e.Length) {
		return nil
	}
	if p.Strict {
		return fmt.Errorf("%w: used %d bytes of %d", blast.ErrCorrupt, consumed, e.Length)
	}
	slog.Warn("installshieldOverrun", "package", p.Name, "name", name, "length", e.Length, "consumed", consumed)
	return nil
}

type countingReader struct {
	r io.ByteReader
	n int64
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}
