// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package entrycache

import (
	"fmt"
	"sync"
	"testing"
)

func TestMemory(t *testing.T) {
	c, err := New(16, "")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, ok := c.Get(1); ok {
		t.Error("empty cache should miss")
	}
	c.Put(1, []byte("one"))
	if got, ok := c.Get(1); !ok || string(got) != "one" {
		t.Errorf("expected hit, got %q, %v", got, ok)
	}
}

func TestBadSize(t *testing.T) {
	if _, err := New(0, ""); err == nil {
		t.Error("expected an error for a zero-sized cache")
	}
}

func TestDiskSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	c, err := New(4, dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := range uint64(100) {
		c.Put(i, fmt.Appendf(nil, "value %d", i))
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	c, err = New(4, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	for _, i := range []uint64{0, 50, 99} {
		got, ok := c.Get(i)
		if want := fmt.Sprintf("value %d", i); !ok || string(got) != want {
			t.Errorf("key %d: expected %q, got %q, %v", i, want, got, ok)
		}
	}
}

func TestConcurrent(t *testing.T) {
	c, err := New(8, "")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				k := uint64(g*1000 + i%20)
				c.Put(k, []byte{byte(i)})
				c.Get(k)
			}
		}()
	}
	wg.Wait()
}
