// Package config loads the relay's tunables from environment variables
// and an optional YAML file, layered with koanf/v2, and hot-reloads the
// file layer on change via fsnotify (watching the containing directory,
// since an editor's atomic write-then-rename loses a watch placed on the
// file's original inode). The admission secret is read once at startup
// from the environment and is never subject to hot-reload: it is
// immutable for the server's lifetime.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix        = "RENDEZVOUS_"
	envSecretVar     = envPrefix + "SECRET"
	envConfigPathVar = envPrefix + "CONFIG"
)

// Tunables holds the relay's hot-reloadable runtime knobs.
type Tunables struct {
	Addr          string        `koanf:"addr"`
	AdminAddr     string        `koanf:"admin_addr"`
	AdminMaxConns int           `koanf:"admin_max_conns"`
	ReaperPeriod  time.Duration `koanf:"reaper_period"`
	ReaperHorizon time.Duration `koanf:"reaper_horizon"`
}

func defaultTunables() Tunables {
	return Tunables{
		Addr:          "0.0.0.0:8080",
		AdminAddr:     "127.0.0.1:9090",
		AdminMaxConns: 32,
		ReaperPeriod:  5 * time.Minute,
		ReaperHorizon: 12 * time.Hour,
	}
}

// Config is the full live configuration: an immutable secret plus a
// Tunables snapshot refreshed on file change.
type Config struct {
	secret string
	path   string

	mu  sync.RWMutex
	cur Tunables

	k      *koanf.Koanf
	logger *log.Logger
}

// Load reads RENDEZVOUS_SECRET (required) and builds the initial
// Tunables from defaults, an optional YAML file (configPathFlag, or
// RENDEZVOUS_CONFIG if empty), and environment variables, in that
// increasing order of precedence.
func Load(configPathFlag string, logger *log.Logger) (*Config, error) {
	secret := os.Getenv(envSecretVar)
	if secret == "" {
		return nil, fmt.Errorf("config: %s is required and must be non-empty", envSecretVar)
	}
	if logger == nil {
		logger = log.Default()
	}

	path := configPathFlag
	if path == "" {
		path = os.Getenv(envConfigPathVar)
	}

	c := &Config{secret: secret, path: path, k: koanf.New("."), logger: logger}
	if err := c.reload(); err != nil {
		return nil, err
	}
	if path != "" {
		c.watch()
	}
	return c, nil
}

// reload re-layers defaults, the YAML file (if any), and the environment
// on top of a fresh koanf instance, and swaps in the parsed result.
func (c *Config) reload() error {
	k := koanf.New(".")

	def := defaultTunables()
	defaults := map[string]any{
		"addr":            def.Addr,
		"admin_addr":      def.AdminAddr,
		"admin_max_conns": def.AdminMaxConns,
		"reaper_period":   def.ReaperPeriod.String(),
		"reaper_horizon":  def.ReaperHorizon.String(),
	}
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("config: setting default %s: %w", key, err)
		}
	}

	if c.path != "" {
		if err := k.Load(file.Provider(c.path), yaml.Parser()); err != nil {
			return fmt.Errorf("config: loading %s: %w", c.path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return fmt.Errorf("config: loading environment overrides: %w", err)
	}

	var raw struct {
		Addr          string `koanf:"addr"`
		AdminAddr     string `koanf:"admin_addr"`
		AdminMaxConns int    `koanf:"admin_max_conns"`
		ReaperPeriod  string `koanf:"reaper_period"`
		ReaperHorizon string `koanf:"reaper_horizon"`
	}
	if err := k.Unmarshal("", &raw); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}

	period, err := time.ParseDuration(raw.ReaperPeriod)
	if err != nil {
		return fmt.Errorf("config: invalid reaper_period %q: %w", raw.ReaperPeriod, err)
	}
	horizon, err := time.ParseDuration(raw.ReaperHorizon)
	if err != nil {
		return fmt.Errorf("config: invalid reaper_horizon %q: %w", raw.ReaperHorizon, err)
	}

	c.k = k
	c.mu.Lock()
	c.cur = Tunables{
		Addr:          raw.Addr,
		AdminAddr:     raw.AdminAddr,
		AdminMaxConns: raw.AdminMaxConns,
		ReaperPeriod:  period,
		ReaperHorizon: horizon,
	}
	c.mu.Unlock()
	return nil
}

// envKeyMapper transforms RENDEZVOUS_ADMIN_ADDR -> admin_addr. SECRET and
// CONFIG are handled outside koanf entirely, so mapping them is harmless
// but they are never read back out of a Tunables field.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ToLower(s)
}

// watch reloads the file layer on change, following TunGo's config
// watcher shape: watch the containing directory rather than the file
// itself, since an atomic write-then-rename loses a watch on the
// original inode, and filter events down to the one file we care about.
func (c *Config) watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.logger.Printf("config: fsnotify unavailable, hot-reload disabled: %v", err)
		return
	}

	dir, name := filepath.Split(c.path)
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		c.logger.Printf("config: watching %s failed, hot-reload disabled: %v", dir, err)
		watcher.Close()
		return
	}

	go func() {
		defer watcher.Close()
		for event := range watcher.Events {
			if _, eventFile := filepath.Split(event.Name); eventFile != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := c.reload(); err != nil {
				c.logger.Printf("config: reload after change to %s failed, keeping previous tunables: %v", c.path, err)
				continue
			}
			c.logger.Printf("config: reloaded tunables from %s", c.path)
		}
	}()
}

// Secret returns the immutable admission secret.
func (c *Config) Secret() string { return c.secret }

// Tunables returns the current hot-reloadable snapshot.
func (c *Config) Tunables() Tunables {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur
}
