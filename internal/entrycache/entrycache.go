// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package entrycache keeps decompressed archive entries,
// in memory under a TinyLFU admission policy and optionally on disk.
package entrycache

import (
	"encoding/binary"
	"errors"
	"hash/maphash"
	"log/slog"
	"sync"

	"github.com/cockroachdb/pebble/v2"
	"github.com/dgryski/go-tinylfu"
)

// A Cache is safe for concurrent use by multiple goroutines.
type Cache struct {
	mu  sync.Mutex
	mem *tinylfu.T[uint64, []byte]
	db  *pebble.DB
}

var seed = maphash.MakeSeed()

func hasher(k uint64) uint64 { return maphash.Comparable(seed, k) }

// New creates a cache holding up to entries items in memory.
// If dir is not empty, entries are also persisted in a database there.
func New(entries int, dir string) (*Cache, error) {
	if entries < 1 {
		return nil, errors.New("entrycache: need room for at least one entry")
	}
	c := &Cache{mem: tinylfu.New[uint64, []byte](entries, entries*10, hasher)}
	if dir != "" {
		db, err := pebble.Open(dir, &pebble.Options{})
		if err != nil {
			return nil, err
		}
		c.db = db
	}
	return c, nil
}

func dbKey(k uint64) []byte { return binary.BigEndian.AppendUint64([]byte("entry/"), k) }

// Get returns a cached entry, which must not be modified.
func (c *Cache) Get(k uint64) ([]byte, bool) {
	c.mu.Lock()
	got, ok := c.mem.Get(k)
	c.mu.Unlock()
	if ok {
		slog.Debug("cacheHit", "key", k)
		return got, true
	}
	if c.db == nil {
		return nil, false
	}

	val, closer, err := c.db.Get(dbKey(k))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false
	} else if err != nil {
		slog.Warn("cacheReadError", "key", k, "err", err)
		return nil, false
	}
	got = append([]byte(nil), val...)
	closer.Close()

	slog.Debug("cacheDiskHit", "key", k)
	c.mu.Lock()
	c.mem.Add(k, got)
	c.mu.Unlock()
	return got, true
}

// Put stores an entry. The cache keeps a reference to data, so it must not be modified afterwards.
func (c *Cache) Put(k uint64, data []byte) {
	c.mu.Lock()
	c.mem.Add(k, data)
	c.mu.Unlock()
	if c.db == nil {
		return
	}
	if err := c.db.Set(dbKey(k), data, pebble.NoSync); err != nil {
		slog.Warn("cacheWriteError", "key", k, "err", err)
	}
}

// Close flushes and closes the disk database, if any.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
