// Copyright (c) Elliot Nunn
// Licensed under the MIT license

//go:build unix

package fileid

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestStableAndDistinct(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.z", "b.z"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fsys := os.DirFS(dir)

	a1, err := Get(fsys, "a.z")
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := Get(fsys, "a.z")
	b, _ := Get(fsys, "b.z")
	if a1 != a2 {
		t.Error("same file gave different IDs")
	}
	if a1 == b || a1.Sum64() == b.Sum64() {
		t.Error("different files gave the same ID")
	}
}

func TestNotOS(t *testing.T) {
	fsys := fstest.MapFS{"x": &fstest.MapFile{Data: []byte("x")}}
	if _, err := Get(fsys, "x"); err != ErrNotOS {
		t.Errorf("expected ErrNotOS, got %v", err)
	}
}
