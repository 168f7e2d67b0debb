// Package config loads server configuration from a TOML file, layered
// under the CLI flag overrides cmd/frameserver exposes, into a single
// structured Config an operator can set either way.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/vidframe/frameserver/internal/framecache"
)

// Config is the full set of operator-facing knobs. TOML keys match the
// serve command's long flag names for chroot, user, group, allow,
// ffmpeg and framerate; capacity is set by --cache-size, listen by
// --port/--listenip, and docroot by the positional argument.
type Config struct {
	Listen    string   `toml:"listen"`    // host:port to bind
	DocRoot   string   `toml:"docroot"`   // document root directory
	Allow     []string `toml:"allow"`     // glob allow-list; empty permits every path under docroot
	Capacity  int      `toml:"capacity"`  // frame cache line count
	Chroot    string   `toml:"chroot"`    // chroot directory to enter before serving
	Username  string   `toml:"user"`      // user to drop privileges to after chroot
	Groupname string   `toml:"group"`     // group to drop privileges to after chroot
	FFmpegBin string   `toml:"ffmpeg"`    // path to the decoder binary
	FrameRate float64  `toml:"framerate"` // frames/sec assumed for seek math when a file's actual rate is unknown
	LogLevel  string   `toml:"log_level"` // slog level name
}

// Default returns the baseline configuration: a sane cache capacity, a
// bind on port 8080 of every interface, and a sane frame rate for
// seek math when a file's actual rate is unknown.
func Default() Config {
	return Config{
		Listen:    ":8080",
		Capacity:  128,
		FFmpegBin: "ffmpeg",
		FrameRate: 25,
		LogLevel:  "info",
	}
}

// Load reads and parses a TOML config file, starting from Default()
// so that a config file only needs to mention the fields it overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ClampedCapacity clamps the configured capacity to
// [framecache.MinCapacity, framecache.MaxCapacity].
func (c Config) ClampedCapacity() int {
	n := c.Capacity
	if n < framecache.MinCapacity {
		n = framecache.MinCapacity
	}
	if n > framecache.MaxCapacity {
		n = framecache.MaxCapacity
	}
	return n
}
