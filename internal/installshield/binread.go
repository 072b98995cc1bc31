// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package installshield

import (
	"encoding/binary"
	"fmt"
	"io"
)

// readRecord fills a fixed-layout little-endian struct, skipping blank fields.
func readRecord(r io.Reader, v any) error {
	err := binary.Read(r, binary.LittleEndian, v)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// readASCII reads an n-byte name, replacing anything outside 7-bit ASCII with '?'.
func readASCII(r io.Reader, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", err
	}
	for i, c := range buf {
		if c >= 0x80 {
			buf[i] = '?'
		}
	}
	return string(buf), nil
}

// skip moves forward over padding. Moving backward would mean the record overlaps itself.
func skip(r io.Seeker, n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: record shorter than its own name (%d)", ErrFormat, n)
	}
	if n == 0 {
		return nil
	}
	_, err := r.Seek(n, io.SeekCurrent)
	return err
}

// checkRoom fails if fewer than n bytes remain after the current position.
// The position is left unchanged.
func checkRoom(r io.Seeker, n int64) error {
	here, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if _, err := r.Seek(here, io.SeekStart); err != nil {
		return err
	}
	if end-here < n {
		return fmt.Errorf("%w: need %d bytes, %d remain", ErrFormat, n, max(end-here, 0))
	}
	return nil
}
