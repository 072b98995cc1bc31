// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package blast decompresses the PKWare Data Compression Library "implode" format,
// as found inside InstallShield 3 packages.
package blast

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	ErrFormat  = errors.New("blast: invalid format")
	ErrCorrupt = errors.New("blast: corrupt stream")
)

const (
	windowSize = 4096
	endOfData  = 519 // length value that terminates the stream
)

// Code lengths for the fixed tables, in compact form
var (
	litlen = []byte{
		11, 124, 8, 7, 28, 7, 188, 13, 76, 4, 10, 8, 12, 10, 12, 10, 8, 23, 8,
		9, 7, 6, 7, 8, 7, 6, 55, 8, 23, 24, 12, 11, 7, 9, 11, 12, 6, 7, 22, 5,
		7, 24, 6, 11, 9, 6, 7, 22, 7, 11, 38, 7, 9, 8, 25, 11, 8, 11, 9, 12,
		8, 12, 5, 38, 5, 38, 5, 11, 7, 5, 6, 21, 6, 10, 53, 8, 7, 24, 10, 27,
		44, 253, 253, 253, 252, 252, 252, 13, 12, 45, 12, 45, 12, 61, 12, 45,
		44, 173}
	lenlen  = []byte{2, 35, 36, 53, 38, 23}
	distlen = []byte{2, 20, 53, 230, 247, 151, 248}

	lenBase  = [16]int{3, 2, 4, 5, 6, 7, 8, 9, 10, 12, 16, 24, 40, 72, 136, 264}
	lenExtra = [16]uint{0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8}
)

type tables struct {
	lit, length, dist *huffman
}

var fixed = sync.OnceValue(func() tables {
	must := func(h *huffman, err error) *huffman {
		if err != nil {
			panic(err)
		}
		return h
	}
	return tables{
		lit:    must(construct(litlen, 256)),
		length: must(construct(lenlen, 16)),
		dist:   must(construct(distlen, 64)),
	}
})

// Decompress reads one imploded stream from r and writes the output to w.
// It stops after the end-of-data code, leaving any trailing bytes unread.
func Decompress(r io.ByteReader, w io.Writer) error {
	t := fixed()
	br := &bitreader{src: r}

	lit, err := br.ReadBits(8)
	if err != nil {
		return err
	}
	if lit > 1 {
		return fmt.Errorf("%w: literal flag %d", ErrFormat, lit)
	}
	dict, err := br.ReadBits(8)
	if err != nil {
		return err
	}
	if dict < 4 || dict > 6 {
		return fmt.Errorf("%w: dictionary size %d", ErrFormat, dict)
	}

	var (
		window [windowSize]byte
		next   = 0
		first  = true
	)
	flush := func() error {
		_, err := w.Write(window[:next])
		next = 0
		first = false
		return err
	}

	for {
		flag, err := br.ReadBits(1)
		if err != nil {
			return err
		}

		if flag == 0 { // literal
			var sym int
			if lit == 1 {
				sym, err = t.lit.decode(br)
			} else {
				var b uint
				b, err = br.ReadBits(8)
				sym = int(b)
			}
			if err != nil {
				return err
			}
			window[next] = byte(sym)
			next++
			if next == windowSize {
				if err := flush(); err != nil {
					return err
				}
			}
			continue
		}

		sym, err := t.length.decode(br)
		if err != nil {
			return err
		}
		extra, err := br.ReadBits(lenExtra[sym])
		if err != nil {
			return err
		}
		n := lenBase[sym] + int(extra)
		if n == endOfData {
			if next > 0 {
				_, err := w.Write(window[:next])
				return err
			}
			return nil
		}

		dbits := dict
		if n == 2 {
			dbits = 2
		}
		dsym, err := t.dist.decode(br)
		if err != nil {
			return err
		}
		low, err := br.ReadBits(dbits)
		if err != nil {
			return err
		}
		dist := dsym<<dbits + int(low) + 1
		if first && dist > next {
			return fmt.Errorf("%w: distance %d too far back", ErrCorrupt, dist)
		}

		from := next - dist
		for range n {
			window[next] = window[from&(windowSize-1)]
			next++
			from++
			if next == windowSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

// NewReader returns a reader that decompresses one imploded stream from r.
// Errors in the stream are returned from Read.
func NewReader(r io.Reader) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		br, ok := r.(io.ByteReader)
		if !ok {
			br = bufio.NewReaderSize(r, 4096)
		}
		bw := bufio.NewWriterSize(pw, 4096)
		err := Decompress(br, bw)
		if err == nil {
			err = bw.Flush()
		}
		pw.CloseWithError(err)
	}()
	return pr
}
