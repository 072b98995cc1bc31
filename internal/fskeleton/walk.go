// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package fskeleton

import (
	"iter"
	"sync"
)

type walkstuff struct {
	wCond  *sync.Cond
	wNames []string
	wOrder []int64
	wDone  bool
}

func (w *walkstuff) init() { w.wCond = sync.NewCond(new(sync.Mutex)) }

func (w *walkstuff) put(name string, order int64) {
	w.wCond.L.Lock()
	w.wNames = append(w.wNames, name)
	w.wOrder = append(w.wOrder, order)
	w.wCond.Broadcast()
	w.wCond.L.Unlock()
}

func (w *walkstuff) done() {
	w.wCond.L.Lock()
	w.wDone = true
	w.wCond.Broadcast()
	w.wCond.L.Unlock()
}

// Walk iterates through the regular files in the filesystem, in the order they were created,
// yielding each path with the order key passed to the Create*File function.
//
// It is optional to block until a call to [FS.NoMore].
func (fsys *FS) Walk(waitFull bool) iter.Seq2[string, int64] {
	return func(yield func(string, int64) bool) {
		w := &fsys.walkstuff
		i := 0
		w.wCond.L.Lock()
		for {
			switch {
			case i < len(w.wNames):
				name, order := w.wNames[i], w.wOrder[i]
				i++
				w.wCond.L.Unlock()
				if !yield(name, order) {
					return
				}
				w.wCond.L.Lock()
			case !waitFull || w.wDone:
				w.wCond.L.Unlock()
				return
			default:
				w.wCond.Wait()
			}
		}
	}
}
