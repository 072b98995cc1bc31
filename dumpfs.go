// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/elliotnunn/isfs/internal/installshield"
)

func dumpFS(w io.Writer, fsys fs.FS) {
	const tfmt = "2006-01-02T15:04:05"
	fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		fmt.Fprintf(w, "%#v\n", p)
		if err != nil {
			fmt.Fprintf(w, "    dump error: %s\n", err.Error())
			return nil
		}
		i, err := d.Info()
		if err != nil {
			fmt.Fprintf(w, "    dump error: %s\n", err.Error())
			return fs.SkipDir
		}

		fmt.Fprintf(w, "    %v size=%d modtime=%s\n",
			i.Mode(), i.Size(), i.ModTime().Format(tfmt))

		if e, ok := i.Sys().(installshield.Entry); ok {
			fmt.Fprintf(w, "    offset=%d compressed=%d\n", e.ByteOffset(), e.Length)
		}
		return nil
	})
}
