// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"strings"
)

// plen counts the components of a valid io/fs path
func plen(s string) int {
	if s == "" {
		panic("empty path")
	} else if s == "." {
		return 0
	} else {
		return strings.Count(s, "/") + 1
	}
}

// pcut splits a path after the given number of components
func pcut(s string, at int) (string, string) {
	if at < 0 || at > plen(s) {
		panic("component index out of range")
	}
	if s == "." {
		s = ""
	}

	x := 0
	for range at {
		x++ // first byte of the component
		for x < len(s) && s[x] != '/' {
			x++ // subsequent non-slash bytes
		}
		if x < len(s) {
			x++ // terminal slash if any
		}
	}
	return ptrim(s[:x]), ptrim(s[x:])
}

func ptrim(s string) string {
	s = strings.Trim(s, "/")
	if s == "" {
		return "."
	} else {
		return s
	}
}
