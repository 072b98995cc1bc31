// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"fmt"
	"testing"
)

func TestPcut(t *testing.T) {
	cases := []struct {
		s    string
		i    int
		l, r string
	}{
		{".", -1, "panic", ""},
		{".", 0, ".", "."},
		{".", 1, "panic", ""},
		{"aaa", -1, "panic", ""},
		{"aaa", 0, ".", "aaa"},
		{"aaa", 1, "aaa", "."},
		{"aaa", 2, "panic", ""},
		{"aaa/bbb", -1, "panic", ""},
		{"aaa/bbb", 0, ".", "aaa/bbb"},
		{"aaa/bbb", 1, "aaa", "bbb"},
		{"aaa/bbb", 2, "aaa/bbb", "."},
		{"aaa/bbb", 3, "panic", ""},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("pcut(%q,%d)", c.s, c.i), func(t *testing.T) {
			if c.l == "panic" {
				defer func() {
					if recover() == nil {
						t.Errorf("Should have panicked but did not")
					}
				}()
			}

			l, r := pcut(c.s, c.i)
			if c.l != l || c.r != r {
				t.Errorf("Expected (%q, %q) but got (%q, %q)", c.l, c.r, l, r)
			}
		})
	}
}

func TestSpecialComponent(t *testing.T) {
	cases := []struct {
		s string
		n int
	}{
		{".", 0},
		{"setup.z", 0},
		{"setup.z◆", 1},
		{"a/setup.z◆/X/Y.BIN", 2},
		{"a.gz◆/a◆/X", 1},
		{"◆/x", 0},
	}
	for _, c := range cases {
		if got := specialComponent(c.s); got != c.n {
			t.Errorf("specialComponent(%q) = %d, expected %d", c.s, got, c.n)
		}
	}
}
