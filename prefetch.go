// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/elliotnunn/isfs/internal/walk"
)

// Prefetch mounts every archive and reads every file inside, warming the cache.
func (fsys *FS) Prefetch() {
	slog.Info("prefetchStart")
	t := time.Now()
	o, _ := fsys.path(".")
	o.prefetch(runtime.NumCPU(), false)
	slog.Info("prefetchStop", "duration", time.Since(t).Truncate(time.Millisecond).String())
}

// prefetch probes every file below o, and reads the contents if readAll is set
func (o path) prefetch(concurrency int, readAll bool) {
	waysort, files := walk.FilesInDiskOrder(o.fsys)
	slog.Debug("prefetchDir", "path", o.String(), "sortorder", waysort)

	wg := new(sync.WaitGroup)
	wg.Add(concurrency)
	for range concurrency {
		go func() {
			defer wg.Done()
			for name := range files {
				file := o.ShallowJoin(name)
				if readAll {
					file.warm()
				}
				isar, mnt := file.getArchive(true)
				if isar {
					mnt.prefetch(1, true)
				}
			}
		}()
	}
	wg.Wait()
}

func (o path) warm() {
	f, err := o.Open()
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		slog.Warn("prefetchReadError", "path", o, "err", err)
	}
}
