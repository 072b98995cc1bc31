// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"io/fs"
	"log/slog"
	gopath "path"
	"sync"

	"github.com/elliotnunn/isfs/internal/entrycache"
)

// Special is appended to the name of an archive to get the name of its mountpoint.
const Special = "◆"

// FS presents a filesystem with every recognised archive also browsable as a directory.
// FS is safe for concurrent use by multiple goroutines.
type FS struct {
	mMu    sync.RWMutex
	mounts map[path]*mount // nonexistent or nil or pointer

	rMu     sync.RWMutex
	reverse map[fs.FS]path

	root  fs.FS
	cache *entrycache.Cache // may be nil
}

// if not present in the map, the file has not yet been scanned
// if nil pointer, the file has been scanned and is not an archive (common)
// if non-nil pointer, meaning depends on data as below...
type mount struct {
	lock sync.Mutex
	data any
	// nil           = not sure yet (temporary state)
	// fsysGenerator = archive creator-function
	// fs.FS         = FS
	// notArchive    = lost a race with notAnArchive
}

type notArchive struct{}

type fsysGenerator func() (fs.FS, error)

func Wrapper(fsys fs.FS, cache *entrycache.Cache) *FS {
	return &FS{
		root:    fsys,
		mounts:  make(map[path]*mount),
		reverse: make(map[fs.FS]path),
		cache:   cache,
	}
}

// getArchive reports whether the file is an archive, and if needFS is set, returns the root of its mount.
func (o path) getArchive(needFS bool) (bool, path) {
	if o.fsys == o.container.root { // Undercooked files, do not touch
		switch gopath.Ext(o.name) {
		case ".crdownload", ".part":
			return false, path{}
		}
	}

	o.container.mMu.RLock()
	b, ok := o.container.mounts[o]
	o.container.mMu.RUnlock()
	if !ok {
		o.container.mMu.Lock()
		b, ok = o.container.mounts[o]
		if !ok {
			b = new(mount)
			o.container.mounts[o] = b
		}
		o.container.mMu.Unlock()
	}
	if b == nil {
		return false, path{} // known NOT to be a mount
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	for {
		switch t := b.data.(type) {
		case nil: // not yet decided
			gen, err := o.probeArchive()
			if err != nil {
				slog.Warn("archiveProbeError", "path", o, "err", err)
			}
			if err != nil || gen == nil {
				b.data = notArchive{}
				o.notAnArchive()
				return false, path{}
			}
			b.data = gen
		case fs.FS:
			return true, path{o.container, t, "."}
		case fsysGenerator:
			if !needFS {
				return true, path{}
			}
			fsys2, err := t()
			if err != nil {
				slog.Warn("archiveInstantiateError", "path", o, "err", err)
				b.data = notArchive{}
				o.notAnArchive()
				return false, path{}
			}
			o.container.rMu.Lock()
			o.container.reverse[fsys2] = o
			o.container.rMu.Unlock()
			b.data = fsys2
		case notArchive:
			return false, path{}
		}
	}
}

func (o path) notAnArchive() {
	o.container.mMu.Lock()
	o.container.mounts[o] = nil
	o.container.mMu.Unlock()
}
