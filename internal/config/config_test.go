// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "isfs.toml")
	if err := os.WriteFile(name, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestDefaults(t *testing.T) {
	for _, name := range []string{"", filepath.Join(t.TempDir(), "missing.toml")} {
		c, err := Load(name)
		if err != nil {
			t.Fatal(err)
		}
		if c.Cache.Entries != DefaultCacheEntries || c.Serve.Addr != DefaultServeAddr || c.Level() != slog.LevelInfo {
			t.Errorf("unexpected defaults %+v %+v", c.Cache, c.Serve)
		}
		if c.Cache.Dir != "" || c.Extract.Strict {
			t.Error("persistent cache and strict mode should be off by default")
		}
	}
}

func TestFile(t *testing.T) {
	c, err := Load(writeConfig(t, `
log_level = "debug"

[cache]
entries = 1000
dir = "/tmp/isfs-cache"

[serve]
addr = "127.0.0.1:8080"
prefetch = true

[extract]
strict = true
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Level() != slog.LevelDebug || c.Cache.Entries != 1000 || c.Cache.Dir != "/tmp/isfs-cache" {
		t.Errorf("cache settings not loaded: %+v", c.Cache)
	}
	if c.Serve.Addr != "127.0.0.1:8080" || !c.Serve.Prefetch || !c.Extract.Strict {
		t.Errorf("serve/extract settings not loaded: %+v %+v", c.Serve, c.Extract)
	}
}

func TestInvalid(t *testing.T) {
	cases := map[string]string{
		"log_level":  `log_level = "loud"`,
		"entries":    "[cache]\nentries = -5",
		"addr":       "[serve]\naddr = \"no port\"",
		"syntax":     "[cache\n",
		"wrong type": "[cache]\nentries = \"many\"",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			if err == nil {
				t.Errorf("expected an error for %q", body)
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(".env", []byte("ISFS_TEST_VALUE=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ISFS_TEST_VALUE", "")
	os.Unsetenv("ISFS_TEST_VALUE")
	LoadEnv()
	if got := os.Getenv("ISFS_TEST_VALUE"); got != "from-dotenv" {
		t.Errorf("expected .env value, got %q", got)
	}
}
