// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package walk

import (
	"slices"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/elliotnunn/isfs/internal/fskeleton"
)

type offset int64

func (o offset) ByteOffset() int64 { return int64(o) }

func collect(ch <-chan string) []string {
	var l []string
	for s := range ch {
		l = append(l, s)
	}
	return l
}

func TestByteOffset(t *testing.T) {
	fsys := fstest.MapFS{
		"z":     {Sys: offset(1)},
		"a/b":   {Sys: offset(300)},
		"a/c/d": {Sys: offset(20)},
	}
	how, ch := FilesInDiskOrder(fsys)
	got := collect(ch)
	if want := []string{"z", "a/c/d", "a/b"}; !slices.Equal(got, want) {
		t.Errorf("sorted by %s: expected %q, got %q", how, want, got)
	}
}

func TestSelfWalking(t *testing.T) {
	fsys := fskeleton.New()
	for i, n := range []string{"late", "DIR/early", "DIR/middle"} {
		fsys.CreateReaderAtFile(n, []int64{900, 255, 400}[i], strings.NewReader(""), 0, 0o444, time.Time{}, nil)
	}
	fsys.NoMore()

	_, ch := FilesInDiskOrder(fsys)
	got := collect(ch)
	if want := []string{"DIR/early", "DIR/middle", "late"}; !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEmpty(t *testing.T) {
	how, ch := FilesInDiskOrder(fstest.MapFS{})
	if got := collect(ch); len(got) != 0 || how != "no-files" {
		t.Errorf("expected nothing, got %q by %s", got, how)
	}
}
