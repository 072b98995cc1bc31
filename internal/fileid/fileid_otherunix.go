// Copyright (c) Elliot Nunn
// Licensed under the MIT license

//go:build unix && !linux && !darwin

package fileid

import (
	"encoding/binary"
	"io/fs"
	"path"
	"syscall"

	"github.com/cespare/xxhash/v2"
)

func Get(fsys fs.FS, pathname string) (ID, error) {
	inf, err := fs.Lstat(fsys, pathname)
	if err != nil {
		return ID{}, err
	}
	stat, ok := inf.Sys().(*syscall.Stat_t)
	if !ok {
		return ID{}, ErrNotOS
	}

	var id ID
	binary.BigEndian.PutUint64(id[:], uint64(stat.Ino))
	h := xxhash.New()
	binary.Write(h, binary.BigEndian, inf.ModTime().UnixNano())
	binary.Write(h, binary.BigEndian, inf.Size())
	h.WriteString(path.Base(pathname))
	binary.BigEndian.PutUint32(id[8:], uint32(h.Sum64()))
	return id, nil
}
