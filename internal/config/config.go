package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// FileName is the rc file looked up in the home directory.
const FileName = ".qindexrc"

// EnvPrefix is shared by rc file keys and environment overrides.
const EnvPrefix = "MB_"

// DefaultHost is used when neither file, env nor flags name a server.
const DefaultHost = "http://localhost:3000"

// Config is the resolved runtime configuration.
type Config struct {
	Host     string `koanf:"host"`
	Session  string `koanf:"session"`
	Username string `koanf:"username"`
	CacheDir string `koanf:"cache_dir"`
	LogLevel string `koanf:"log_level"`
}

// keys known to the rc format, in the order Save writes them.
var keys = []string{"host", "session", "username", "cache_dir", "log_level"}

// DefaultPath returns ~/.qindexrc, or ./.qindexrc if the home dir is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// DefaultCacheDir returns the directory used for cached API responses.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		return filepath.Join(os.TempDir(), "qindex")
	}
	return filepath.Join(dir, "qindex")
}

// LoadWithFlags layers defaults, the rc file, MB_* env vars and explicitly
// set flags, in increasing precedence. A missing rc file is not an error.
func LoadWithFlags(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"host":      DefaultHost,
		"cache_dir": DefaultCacheDir(),
		"log_level": "warn",
	}, "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), RCParser()); err != nil {
				return Config{}, fmt.Errorf("read %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("stat %s: %w", path, err)
		}
	}

	// Empty variables are skipped so they cannot blank out rc values.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !known(key) {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Host = strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	cfg.Session = strings.TrimSpace(cfg.Session)
	return cfg, nil
}

// Save writes the host, session and username of cfg to path in rc format.
// Other keys already in the file are kept. A host is required.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(cfg.Host) == "" {
		return errors.New("config: host is empty")
	}
	values := map[string]any{}
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if values, err = RCParser().Unmarshal(existing); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return err
	}
	values["host"] = cfg.Host
	values["session"] = cfg.Session
	values["username"] = cfg.Username
	data, err := RCParser().Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func known(key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
