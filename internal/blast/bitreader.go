// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package blast

import (
	"fmt"
	"io"
)

// bitreader hands out bits least-significant first,
// pulling a byte from the source only when the buffer runs dry.
type bitreader struct {
	src  io.ByteReader
	buf  uint32
	nbuf uint
}

// ReadBits returns the next n bits (n <= 16) as an integer, first bit in the low position.
func (br *bitreader) ReadBits(n uint) (uint, error) {
	for br.nbuf < n {
		b, err := br.src.ReadByte()
		if err == io.EOF {
			return 0, fmt.Errorf("%w: %w", ErrCorrupt, io.ErrUnexpectedEOF)
		} else if err != nil {
			return 0, err
		}
		br.buf |= uint32(b) << br.nbuf
		br.nbuf += 8
	}
	v := br.buf & (1<<n - 1)
	br.buf >>= n
	br.nbuf -= n
	return uint(v), nil
}
