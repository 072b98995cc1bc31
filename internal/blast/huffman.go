// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package blast

import "fmt"

const maxbits = 13 // longest code

// huffman is a canonical code described by the number of codes of each length
// and the symbols ordered by (length, value).
type huffman struct {
	count  [maxbits + 1]uint16
	symbol []uint16
}

// construct expands the compact representation used by the implode format:
// each byte is (repeat-1)<<4 | length, covering repeat consecutive symbols.
func construct(rep []byte, n int) (*huffman, error) {
	length := make([]uint8, 0, n)
	for _, b := range rep {
		l := b & 15
		for range int(b>>4) + 1 {
			if len(length) == n {
				return nil, fmt.Errorf("%w: code lengths overrun %d symbols", ErrFormat, n)
			}
			length = append(length, l)
		}
	}
	for len(length) < n {
		length = append(length, 0)
	}

	h := &huffman{symbol: make([]uint16, n)}
	for _, l := range length {
		h.count[l]++
	}
	if int(h.count[0]) == n {
		return h, nil // no codes, never decoded from
	}

	left := 1
	for l := 1; l <= maxbits; l++ {
		left <<= 1
		left -= int(h.count[l])
		if left < 0 {
			return nil, fmt.Errorf("%w: over-subscribed code", ErrFormat)
		}
	}

	var offs [maxbits + 1]uint16
	for l := 1; l < maxbits; l++ {
		offs[l+1] = offs[l] + h.count[l]
	}
	for sym, l := range length {
		if l != 0 {
			h.symbol[offs[l]] = uint16(sym)
			offs[l]++
		}
	}
	return h, nil
}

// decode reads one symbol. Codes are stored bit-inverted in the stream.
func (h *huffman) decode(br *bitreader) (int, error) {
	code, first, index := 0, 0, 0
	for l := 1; l <= maxbits; l++ {
		bit, err := br.ReadBits(1)
		if err != nil {
			return 0, err
		}
		code |= int(bit) ^ 1
		count := int(h.count[l])
		if code < first+count {
			return int(h.symbol[index+code-first]), nil
		}
		index += count
		first += count
		first <<= 1
		code <<= 1
	}
	return 0, fmt.Errorf("%w: ran out of codes", ErrCorrupt)
}
