// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package fileid

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path"
	"syscall"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sys/unix"
)

func Get(fsys fs.FS, pathname string) (ID, error) {
	// Use statx to get access to the birth time of the file
	// unfortunately this forces us into some awkward interactions with io/fs
	// specifically to make sure we don't try to retrieve a symlink
	inf, err := fs.Lstat(fsys, pathname)
	if err != nil {
		return ID{}, err
	}
	if inf.Mode().Type() == fs.ModeSymlink {
		return ID{}, errors.New("is a symlink")
	}
	if _, isos := inf.Sys().(*syscall.Stat_t); !isos {
		return ID{}, ErrNotOS
	}

	f, err := fsys.Open(pathname)
	if err != nil {
		return ID{}, err
	}
	defer f.Close()

	osf, ok := f.(*os.File)
	if !ok {
		return ID{}, ErrNotOS
	}
	conn, err := osf.SyscallConn()
	if err != nil {
		return ID{}, err
	}

	var stat unix.Statx_t
	var inerr error
	err = conn.Control(func(fd uintptr) {
		inerr = unix.Statx(int(fd), "",
			unix.AT_EMPTY_PATH|unix.AT_STATX_SYNC_AS_STAT,
			unix.STATX_BTIME|unix.STATX_MTIME|unix.STATX_INO|unix.STATX_SIZE,
			&stat)
	})
	if err != nil {
		return ID{}, err
	} else if inerr != nil {
		return ID{}, inerr
	}

	var id ID
	binary.BigEndian.PutUint64(id[:], stat.Ino)
	h := xxhash.New()
	if stat.Mask&unix.STATX_BTIME != 0 {
		binary.Write(h, binary.BigEndian, stat.Btime.Sec)
		binary.Write(h, binary.BigEndian, stat.Btime.Nsec)
	}
	binary.Write(h, binary.BigEndian, stat.Mtime.Sec)
	binary.Write(h, binary.BigEndian, stat.Mtime.Nsec)
	binary.Write(h, binary.BigEndian, stat.Size)
	h.WriteString(path.Base(pathname))
	binary.BigEndian.PutUint32(id[8:], uint32(h.Sum64()))
	return id, nil
}
