// Package config implements the engine's layered configuration: a
// plain-text provider list (one URL per line, "#"-prefixed comments, blank
// lines ignored, created on first run if missing), plus a TOML engine
// settings file for default poll interval, per-provider overrides, debug
// listener address, log level/format, and link resolution depth.
// max-link-depth is decoded and env-overlaid but nothing reads it: the
// evaluator's link depth bound is its own fixed constant (16 in package qry).
//
// The TOML half uses github.com/BurntSushi/toml's default-then-override
// decode idiom; an SA_-prefixed environment overlay and fsnotify-based
// provider-list hot reload round out the layering.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// defaultEngineTOML is a TOML literal decoded first, then overridden by
// the user's file if one is found.
const defaultEngineTOML = `
[engine]
default-interval-seconds = 30
max-link-depth = 32
fetch-timeout-seconds = 30

[debug]
listen-addr = ""
metrics-path = "/metrics"
stream-path = "/debug/stream"

[log]
level = "info"
format = "console"
`

// Engine is the decoded engine settings file.
type Engine struct {
	EngineCfg struct {
		DefaultIntervalSeconds int `toml:"default-interval-seconds"`
		MaxLinkDepth           int `toml:"max-link-depth"`
		FetchTimeoutSeconds    int `toml:"fetch-timeout-seconds"`
	} `toml:"engine"`
	Debug struct {
		ListenAddr  string `toml:"listen-addr"`
		MetricsPath string `toml:"metrics-path"`
		StreamPath  string `toml:"stream-path"`
	} `toml:"debug"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`

	// Provider maps a provider URL to an interval, read from the
	// optional [[provider]] array-of-tables, for providers whose refresh
	// cadence must differ from default-interval-seconds.
	Provider []ProviderOverride `toml:"provider"`
}

// ProviderOverride overrides the default poll interval for one URL.
type ProviderOverride struct {
	URL             string `toml:"url"`
	IntervalSeconds int    `toml:"interval-seconds"`
}

// DefaultInterval returns the configured default poll interval.
func (e *Engine) DefaultInterval() time.Duration {
	return time.Duration(e.EngineCfg.DefaultIntervalSeconds) * time.Second
}

// FetchTimeout returns the configured per-fetch HTTP deadline.
func (e *Engine) FetchTimeout() time.Duration {
	return time.Duration(e.EngineCfg.FetchTimeoutSeconds) * time.Second
}

// IntervalFor returns the poll interval for url: an explicit override if one
// is configured, otherwise the default.
func (e *Engine) IntervalFor(url string) time.Duration {
	for _, o := range e.Provider {
		if o.URL == url && o.IntervalSeconds > 0 {
			return time.Duration(o.IntervalSeconds) * time.Second
		}
	}
	return e.DefaultInterval()
}

// LoadEngine decodes the default settings, then overlays path (if non-empty
// and present) and an SA_-prefixed environment overlay via viper.
func LoadEngine(path string) (*Engine, error) {
	var e Engine
	if _, err := toml.Decode(defaultEngineTOML, &e); err != nil {
		return nil, fmt.Errorf("decode default engine config: %w", err)
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &e); err != nil {
				return nil, fmt.Errorf("decode engine config %s: %w", path, err)
			}
		}
	}
	applyEnvOverlay(&e)
	return &e, nil
}

// applyEnvOverlay overlays SA_-prefixed environment variables onto e using
// viper, e.g. SA_LOG_LEVEL=debug, SA_ENGINE_DEFAULT_INTERVAL_SECONDS=10.
func applyEnvOverlay(e *Engine) {
	v := viper.New()
	v.SetEnvPrefix("SA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if v.IsSet("log.level") {
		e.Log.Level = v.GetString("log.level")
	}
	if v.IsSet("log.format") {
		e.Log.Format = v.GetString("log.format")
	}
	if v.IsSet("debug.listen_addr") {
		e.Debug.ListenAddr = v.GetString("debug.listen_addr")
	}
	if v.IsSet("engine.default_interval_seconds") {
		e.EngineCfg.DefaultIntervalSeconds = v.GetInt("engine.default_interval_seconds")
	}
	if v.IsSet("engine.max_link_depth") {
		e.EngineCfg.MaxLinkDepth = v.GetInt("engine.max_link_depth")
	}
}

// ProviderList is the plain-text list of provider URLs: one
// URL per line, "#"-prefixed lines are comments, blank lines ignored.
type ProviderList struct {
	Path string
	URLs []string
}

// LoadProviderList reads path, creating an empty, commented template file
// if it doesn't exist yet.
func LoadProviderList(path string) (*ProviderList, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createTemplate(path); err != nil {
			return nil, err
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open provider list %s: %w", path, err)
	}
	defer f.Close()

	pl := &ProviderList{Path: path}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pl.URLs = append(pl.URLs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read provider list %s: %w", path, err)
	}
	return pl, nil
}

func createTemplate(path string) error {
	const template = "# one provider URL per line\n# e.g. http://localhost:8080\n"
	return os.WriteFile(path, []byte(template), 0o644)
}
