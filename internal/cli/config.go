package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/pacscope/pacscope/pkg/errors"
)

// Config holds persistent CLI settings loaded from the user's config
// file. Flags always win over config values; config values win over the
// built-in defaults.
type Config struct {
	// Workers bounds the parallel pactree invocations during collection.
	// Zero means one worker per CPU.
	Workers int `toml:"workers"`

	// ToolTimeoutSeconds bounds each pacman/pactree invocation.
	ToolTimeoutSeconds int `toml:"tool_timeout_seconds"`

	// OutputDir is where snapshot files are written when no explicit
	// output path is given. Empty means the current directory.
	OutputDir string `toml:"output_dir"`

	Store StoreConfig `toml:"store"`
}

// StoreConfig selects and configures the snapshot store backend.
type StoreConfig struct {
	// Backend is one of "file", "redis" or "mongo". Empty means "file".
	Backend string `toml:"backend"`

	// Dir is the file backend's snapshot directory. Empty falls back to
	// the user data directory.
	Dir string `toml:"dir"`

	// RedisURL is a redis:// connection URL for the redis backend.
	RedisURL string `toml:"redis_url"`

	// MongoURI is a mongodb:// connection URI for the mongo backend.
	MongoURI string `toml:"mongo_uri"`
}

// defaultConfigPath returns ~/.config/pacscope/config.toml (or the
// platform equivalent).
func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pacscope", "config.toml"), nil
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing file is not an error and yields the zero
// config; a malformed file is reported.
func loadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid config file: %s", path)
	}
	return cfg, nil
}
