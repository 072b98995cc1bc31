// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package fskeleton

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"
	"testing"
	"testing/fstest"
	"testing/iotest"
	"time"
)

func TestBlockedOpen(t *testing.T) {
	fsys := New()
	mustBlock(t, func() { fsys.Open("fileThatDoesntExist") })
}
func TestBlockedStat(t *testing.T) {
	fsys := New()
	mustBlock(t, func() { fsys.Stat("fileThatDoesntExist") })
}
func TestUnblockedByCreate(t *testing.T) {
	fsys := New()
	done := make(chan error)
	go func() {
		_, err := fsys.Stat("later/file")
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	fsys.CreateReaderFile("later/file", 0, emptyFile, 0, 0, time.Time{}, nil)
	select {
	case err := <-done:
		expectErr(t, nil, err)
	case <-time.After(time.Second):
		t.Error("Stat stayed blocked after the file was created")
	}
}
func TestOpenDir(t *testing.T) {
	fsys := New()
	fsys.CreateDir("dirThatExists", 0, time.Time{}, nil)
	mustNotBlock(t, func() {
		_, err := fsys.Open("dirThatExists")
		expectErr(t, nil, err)
	})
}
func TestIncompleteDir(t *testing.T) {
	fsys := New()
	fsys.CreateReaderFile("a/b/c", 0, emptyFile, 0, 0, time.Time{}, nil)
	expectStr(t, "c...", listDir(fsys, "a/b"))
	fsys.NoMoreChildren("a/b")
	expectStr(t, "c", listDir(fsys, "a/b"))
	expectStr(t, "b...", listDir(fsys, "a"))
	fsys.NoMore()
	expectStr(t, "b", listDir(fsys, "a"))
}
func TestIncompleteRootInfo(t *testing.T) {
	fsys := New()
	stat, err := fs.Stat(fsys, ".")
	expectErr(t, nil, err)
	mustBlock(t, func() { stat.ModTime() })
	fsys.CreateDir(".", 0, time.Time{}, nil)
	mustNotBlock(t, func() { stat.ModTime() })
}
func TestRootInfoWithNoMore(t *testing.T) {
	fsys := New()
	stat, err := fs.Stat(fsys, ".")
	expectErr(t, nil, err)
	mustBlock(t, func() { stat.ModTime() })
	fsys.NoMore()
	mustNotBlock(t, func() { stat.ModTime() })
}
func TestIncompleteDirInfo(t *testing.T) {
	fsys := New()
	err := fsys.CreateReaderFile("d/f", 0, emptyFile, 0, 0, time.Time{}, nil)
	expectErr(t, nil, err)
	fstat, err := fs.Stat(fsys, "d/f")
	expectErr(t, nil, err)
	dstat, err := fs.Stat(fsys, "d")
	expectErr(t, nil, err)
	mustNotBlock(t, func() { fstat.ModTime() })
	mustBlock(t, func() { dstat.ModTime() })
	err = fsys.CreateDir("d", 0, time.Time{}, nil)
	expectErr(t, nil, err)
	mustNotBlock(t, func() { dstat.ModTime() })
}
func TestDirCreation(t *testing.T) {
	fsys := New()
	expectErr(t, nil, fsys.CreateDir("implicit/explicit", 0, time.Time{}, nil))
	expectErr(t, fs.ErrExist, fsys.CreateDir("implicit/explicit", 0, time.Time{}, nil))
	expectErr(t, nil, fsys.CreateDir("implicit", 0, time.Time{}, nil))
	expectErr(t, fs.ErrExist, fsys.CreateDir("implicit", 0, time.Time{}, nil))
	expectErr(t, nil, fsys.CreateDir(".", 0, time.Time{}, nil))
	expectErr(t, fs.ErrExist, fsys.CreateDir(".", 0, time.Time{}, nil))
}
func TestFileCreation(t *testing.T) {
	fsys := New()
	expectErr(t, nil, fsys.CreateReaderFile("x/y", 0, emptyFile, 0, 0, time.Time{}, nil))
	expectErr(t, fs.ErrExist, fsys.CreateReaderFile("x/y", 0, emptyFile, 0, 0, time.Time{}, nil))
	expectErr(t, fs.ErrExist, fsys.CreateReaderFile("x", 0, emptyFile, 0, 0, time.Time{}, nil))
	expectErr(t, fs.ErrExist, fsys.CreateReaderFile("x/y/z", 0, emptyFile, 0, 0, time.Time{}, nil))
	expectErr(t, fs.ErrInvalid, fsys.CreateReaderFile("/abs", 0, emptyFile, 0, 0, time.Time{}, nil))
	expectErr(t, fs.ErrInvalid, fsys.CreateReaderFile(".", 0, emptyFile, 0, 0, time.Time{}, nil))
	fsys.NoMore()
	expectErr(t, fs.ErrPermission, fsys.CreateReaderFile("late", 0, emptyFile, 0, 0, time.Time{}, nil))
}
func TestFullyNonblocking(t *testing.T) {
	fsys := New()
	expectErr(t, nil, fsys.CreateReaderFile("imp/exp", 0, emptyFile, 0, 0, time.Time{}, nil))
	fsys.NoMore()
	fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		mustNotBlock(t, func() { s, _ := fsys.Stat(name); s.Sys() })
		mustNotBlock(t, func() { fs.ReadDir(fsys, name) })
		return nil
	})
}

func TestContents(t *testing.T) {
	fsys := New()
	fsys.CreateReaderFile("known", 0, stringFile("twelve bytes"), 12, 0o444, time.Time{}, nil)
	fsys.CreateReaderFile("dir/unknown", 1, stringFile("size comes later"), SizeUnknown, 0o444, time.Time{}, nil)
	fsys.CreateReaderAtFile("dir/random", 2, strings.NewReader("random access"), 13, 0o444, time.Time{}, nil)
	fsys.NoMore()

	err := fstest.TestFS(fsys, "known", "dir/unknown", "dir/random")
	if err != nil {
		t.Error(err)
	}

	s, err := fs.Stat(fsys, "dir/unknown")
	expectErr(t, nil, err)
	if s.Size() != int64(len("size comes later")) {
		t.Errorf("expected lazy size %d, got %d", len("size comes later"), s.Size())
	}

	f, err := fsys.Open("dir/random")
	expectErr(t, nil, err)
	defer f.Close()
	if err := iotest.TestReader(f.(io.Reader), []byte("random access")); err != nil {
		t.Error(err)
	}

	bad := New()
	bad.CreateErrorFile("broken", 0, io.ErrUnexpectedEOF, 0o444, time.Time{}, nil)
	bad.NoMore()
	_, err = fs.ReadFile(bad, "broken")
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected the stored error, got %v", err)
	}
}

func TestUnreadableSize(t *testing.T) {
	fsys := New()
	partial := func() (io.Reader, error) {
		return io.MultiReader(strings.NewReader("half a file"), iotest.ErrReader(io.ErrUnexpectedEOF)), nil
	}
	fsys.CreateReaderFile("partial", 0, partial, SizeUnknown, 0o444, time.Time{}, nil)
	fsys.NoMore()

	s, err := fs.Stat(fsys, "partial")
	expectErr(t, nil, err)
	if s.Size() != 0 {
		t.Errorf("expected size 0 for a file that fails mid-read, got %d", s.Size())
	}
}

func TestWalkOrder(t *testing.T) {
	fsys := New()
	go func() {
		for i, n := range []string{"b/2", "a/1", "c"} {
			fsys.CreateReaderFile(n, int64(10-i), emptyFile, 0, 0, time.Time{}, nil)
		}
		fsys.NoMore()
	}()
	var got []string
	for name, order := range fsys.Walk(true) {
		got = append(got, fmt.Sprintf("%s:%d", name, order))
	}
	want := []string{"b/2:10", "a/1:9", "c:8"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func mustBlock(t *testing.T, f func()) {
	done := make(chan struct{})
	go func() {
		f()
		close(done)
	}()
	select {
	case <-done:
		t.Error("should have blocked")
	case <-time.After(time.Millisecond * 100):
	}
}

func mustNotBlock(t *testing.T, f func()) {
	done := make(chan struct{})
	go func() {
		f()
		close(done)
	}()
	select {
	case <-time.After(time.Millisecond * 100):
		t.Error("should not have blocked")
	case <-done:
	}
}

func emptyFile() (io.Reader, error) { return strings.NewReader(""), nil }

func stringFile(s string) func() (io.Reader, error) {
	return func() (io.Reader, error) { return strings.NewReader(s), nil }
}

func expectErr(t *testing.T, want, got error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func expectStr(t *testing.T, want, got string) {
	t.Helper()
	if want != got {
		t.Errorf("expected %q, got %q", want, got)
	}
}

// appends "..." if the list function blocked
func listDir(fsys *FS, name string) string {
	f, err := fsys.Open(name)
	if err != nil {
		return "!" + err.Error()
	}
	defer f.Close()

	d, ok := f.(fs.ReadDirFile)
	if !ok {
		return "!expected fs.ReadDirFile but got fs.File only"
	}
	ch := make(chan fs.DirEntry)
	ech := make(chan error)
	go func() {
		for {
			l, err := d.ReadDir(1)
			if len(l) > 0 {
				ch <- l[0]
			}
			if err != nil {
				ech <- err
				break
			}
		}
	}()
	s := ""
	for {
		select {
		case <-time.After(time.Millisecond * 100):
			return s + "..."
		case de := <-ch:
			if len(s) > 0 {
				s += ","
			}
			s += de.Name()
		case err := <-ech:
			if err == io.EOF {
				return s
			} else {
				return s + "!" + err.Error()
			}
		}
	}
}
