// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package fileid gives files on disk an identity that survives renames of their parent directories
// but changes when the file is replaced.
package fileid

import (
	"errors"

	"github.com/cespare/xxhash/v2"
)

// ID = (64 bits of inode number) + (32 bits of hash of whatever else the platform offers)
type ID [12]byte

var ErrNotOS = errors.New("not an operating system file")

// Sum64 condenses the ID into a cache namespace.
func (id ID) Sum64() uint64 { return xxhash.Sum64(id[:]) }
