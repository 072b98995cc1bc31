// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package config loads settings from an optional TOML file,
// after pulling any .env file into the environment.
package config

import (
	"log/slog"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	EnvVarPrefix = "ISFS"

	DefaultCacheEntries = 256
	DefaultServeAddr    = ":1993"
	DefaultLogLevel     = "info"

	MinCacheEntries = 1
	MaxCacheEntries = 1_000_000
)

var (
	// VERSION gets set during build
	VERSION = "0.0.0"

	validLogLevels = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
)

type TOML struct {
	LogLevel string       `toml:"log_level"`
	Cache    *TOMLCache   `toml:"cache"`
	Serve    *TOMLServe   `toml:"serve"`
	Extract  *TOMLExtract `toml:"extract"`
}

type TOMLCache struct {
	Entries int    `toml:"entries"`
	Dir     string `toml:"dir"` // empty for memory only
}

type TOMLServe struct {
	Addr     string `toml:"addr"`
	Prefetch bool   `toml:"prefetch"`
}

type TOMLExtract struct {
	Strict bool `toml:"strict"`
}

// LoadEnv reads .env in the working directory, if there is one.
// Variables already set in the environment take precedence.
func LoadEnv() {
	_ = godotenv.Load(".env")
}

// Load reads a config file. An empty name or a missing file gives the defaults.
func Load(file string) (*TOML, error) {
	t := &TOML{}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "error reading config file")
		}
		if err := toml.Unmarshal(data, t); err != nil {
			return nil, errors.Wrap(err, "error parsing TOML config")
		}
	}

	if err := setDefaults(t); err != nil {
		return nil, errors.Wrap(err, "error setting TOML defaults")
	}
	if err := Validate(t); err != nil {
		return nil, errors.Wrap(err, "error validating TOML config")
	}
	return t, nil
}

func setDefaults(t *TOML) error {
	if t == nil {
		return errors.New("toml config cannot be nil")
	}

	if t.Cache == nil {
		t.Cache = &TOMLCache{}
	}
	if t.Serve == nil {
		t.Serve = &TOMLServe{}
	}
	if t.Extract == nil {
		t.Extract = &TOMLExtract{}
	}

	if t.LogLevel == "" {
		t.LogLevel = DefaultLogLevel
	}
	if t.Cache.Entries == 0 {
		t.Cache.Entries = DefaultCacheEntries
	}
	if t.Serve.Addr == "" {
		t.Serve.Addr = DefaultServeAddr
	}
	return nil
}

func Validate(t *TOML) error {
	if t == nil {
		return errors.New("toml config cannot be nil")
	}

	if _, ok := validLogLevels[t.LogLevel]; !ok {
		return errors.Errorf("log_level %q is invalid", t.LogLevel)
	}

	if t.Cache == nil {
		return errors.New("cache cannot be empty")
	}
	if t.Cache.Entries < MinCacheEntries || t.Cache.Entries > MaxCacheEntries {
		return errors.Errorf("cache.entries must be between %d and %d", MinCacheEntries, MaxCacheEntries)
	}
	if t.Cache.Dir != "" {
		info, err := os.Stat(t.Cache.Dir)
		if err == nil && !info.IsDir() {
			return errors.Errorf("cache.dir %s is not a directory", t.Cache.Dir)
		}
	}

	if t.Serve == nil {
		return errors.New("serve cannot be empty")
	}
	if _, _, err := net.SplitHostPort(t.Serve.Addr); err != nil {
		return errors.Wrap(err, "serve.addr is invalid")
	}

	if t.Extract == nil {
		return errors.New("extract cannot be empty")
	}
	return nil
}

// Level converts log_level to a [slog.Level].
func (t *TOML) Level() slog.Level {
	return validLogLevels[t.LogLevel]
}
