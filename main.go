// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Command isfs reads InstallShield 3 packages,
// and serves directory trees with every package browsable as a directory.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/elliotnunn/isfs/internal/config"
	"github.com/elliotnunn/isfs/internal/entrycache"
	"github.com/elliotnunn/isfs/internal/installshield"
)

type CLI struct {
	Config  string           `kong:"help='Path to the TOML config file',type='path',default='isfs.toml',short='c'"`
	Debug   bool             `kong:"help='Enable debug output',short='d'"`
	Version kong.VersionFlag `help:"Show version and exit" short:"v" env:"-"`

	Ls      LsCmd      `cmd:"" help:"List the entries of a package"`
	Cat     CatCmd     `cmd:"" help:"Write one decompressed entry to standard output"`
	Extract ExtractCmd `cmd:"" help:"Decompress entries into a directory"`
	Serve   ServeCmd   `cmd:"" help:"Serve a directory over HTTP with packages browsable as directories"`
	Dump    DumpCmd    `cmd:"" help:"Print the tree of a directory with packages expanded"`
}

// Env is passed to every command
type Env struct {
	TOML *config.TOML
	Out  io.Writer
}

func (e *Env) openPackage(name string) (*installshield.Package, error) {
	pkg, err := installshield.OpenFile(name)
	if err != nil {
		return nil, err
	}
	pkg.Strict = e.TOML.Extract.Strict
	return pkg, nil
}

func (e *Env) openCache() (*entrycache.Cache, error) {
	return entrycache.New(e.TOML.Cache.Entries, e.TOML.Cache.Dir)
}

type LsCmd struct {
	Package  string   `arg:"" help:"Package file" type:"existingfile"`
	Patterns []string `arg:"" optional:"" help:"Glob patterns over slash-separated names"`
	Long     bool     `help:"Show compressed offsets and lengths" short:"l"`
}

func (c *LsCmd) Run(env *Env) error {
	pkg, err := env.openPackage(c.Package)
	if err != nil {
		return err
	}
	defer pkg.Close()

	if c.Long {
		h := pkg.Header()
		fmt.Fprintf(env.Out, "signature=%#08x files=%d dirs=%d size=%d toc=%d\n",
			h.Signature, h.FileCount, h.DirCount, h.ArchiveSize, h.TOCAddress)
	}
	names, err := matching(pkg.Names(), c.Patterns)
	if err != nil {
		return err
	}
	for _, n := range names {
		if c.Long {
			e, _ := pkg.Entry(n)
			fmt.Fprintf(env.Out, "%10d %10d %s\n", e.ByteOffset(), e.Length, n)
		} else {
			fmt.Fprintln(env.Out, n)
		}
	}
	return nil
}

type CatCmd struct {
	Package string `arg:"" help:"Package file" type:"existingfile"`
	Name    string `arg:"" help:"Entry name, with backslashes or slashes"`
}

func (c *CatCmd) Run(env *Env) error {
	pkg, err := env.openPackage(c.Package)
	if err != nil {
		return err
	}
	defer pkg.Close()

	r, err := pkg.Stream(resolve(pkg, c.Name))
	if err != nil {
		return err
	}
	_, err = r.WriteTo(env.Out)
	return err
}

// resolve accepts either the stored name or its slash-separated form
func resolve(pkg *installshield.Package, name string) string {
	if pkg.Contains(name) {
		return name
	}
	for _, n := range pkg.Names() {
		if slash, _ := installshield.SlashName(n); slash == name {
			return n
		}
	}
	return name
}

type ExtractCmd struct {
	Package  string   `arg:"" help:"Package file" type:"existingfile"`
	Dest     string   `arg:"" help:"Destination directory" type:"path"`
	Patterns []string `arg:"" optional:"" help:"Glob patterns over slash-separated names"`
}

func (c *ExtractCmd) Run(env *Env) error {
	pkg, err := env.openPackage(c.Package)
	if err != nil {
		return err
	}
	defer pkg.Close()

	names, err := matching(pkg.Names(), c.Patterns)
	if err != nil {
		return err
	}
	failed := 0
	for _, n := range names {
		if err := extractOne(pkg, n, c.Dest); err != nil {
			slog.Error("extractError", "name", n, "err", err)
			failed++
			continue
		}
		slog.Debug("extracted", "name", n)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d entries failed", failed, len(names))
	}
	return nil
}

func extractOne(pkg *installshield.Package, name, dest string) error {
	slash, ok := installshield.SlashName(name)
	if !ok || !filepath.IsLocal(filepath.FromSlash(slash)) {
		return fmt.Errorf("refusing unsafe name %q", name)
	}
	r, err := pkg.Stream(name)
	if err != nil {
		return err
	}
	target := filepath.Join(dest, filepath.FromSlash(slash))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := r.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// matching filters names by doublestar patterns, which apply to the slash-separated form
func matching(names []string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return names, nil
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("bad pattern %q", p)
		}
	}
	var ret []string
	for _, n := range names {
		slash, _ := installshield.SlashName(n)
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, slash); ok {
				ret = append(ret, n)
				break
			}
		}
	}
	return ret, nil
}

type ServeCmd struct {
	Root     string `arg:"" help:"Directory to serve" type:"existingdir"`
	Addr     string `help:"Listen address, overriding the config file"`
	Prefetch bool   `help:"Decompress everything in the background at startup"`
}

func (c *ServeCmd) Run(env *Env) error {
	cache, err := env.openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	addr := c.Addr
	if addr == "" {
		addr = env.TOML.Serve.Addr
	}
	fsys := Wrapper(os.DirFS(c.Root), cache)
	if c.Prefetch || env.TOML.Serve.Prefetch {
		go fsys.Prefetch()
	}
	slog.Info("serving", "root", c.Root, "addr", addr)
	return http.ListenAndServe(addr, http.FileServerFS(fsys))
}

type DumpCmd struct {
	Root string `arg:"" help:"Directory to dump" type:"existingdir"`
}

func (c *DumpCmd) Run(env *Env) error {
	cache, err := env.openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	dumpFS(env.Out, Wrapper(os.DirFS(c.Root), cache))
	return nil
}

func main() {
	config.LoadEnv()

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("isfs"),
		kong.Description("InstallShield 3 package reader"),
		kong.UsageOnError(),
		kong.DefaultEnvars(config.EnvVarPrefix),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"version": config.VERSION,
		})

	toml, err := config.Load(cli.Config)
	ctx.FatalIfErrorf(err)

	level := toml.Level()
	if cli.Debug {
		level = slog.LevelDebug
	}
	slog.SetLogLoggerLevel(level)

	err = ctx.Run(&Env{TOML: toml, Out: os.Stdout})
	ctx.FatalIfErrorf(err)
}
