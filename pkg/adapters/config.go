package adapters

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/dmbarbour/glas/pkg/log"
)

// DiscoverConfigPath locates the glas user configuration file: $GLAS_CONF
// if set (returned as is, without checking that the file exists);
// otherwise the platform path, $HOME/.config/glas/conf.glas or, on
// Windows, %AppData%\glas\conf.glas, if that file exists. Returns ""
// when $GLAS_CONF is unset and the platform path does not exist.
func DiscoverConfigPath() string {
	if p := os.Getenv("GLAS_CONF"); p != "" {
		return p
	}
	for _, candidate := range platformConfigCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func platformConfigCandidates() []string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return []string{filepath.Join(appData, "glas", "conf.glas")}
		}
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".config", "glas", "conf.glas")}
}

// RuntimeConfig is the sidecar host-side configuration (worker pool
// sizes, metrics toggles) that accompanies but is distinct from the
// glas configuration namespace itself — conf.glas stays in the
// value/namespace model; this is ordinary host YAML for things the
// embedding process, not the glas program, decides (e.g. how many OS
// threads back the worker pool).
type RuntimeConfig struct {
	Workers     int    `yaml:"workers"`
	MetricsAddr string `yaml:"metrics_addr"`
	DataDir     string `yaml:"data_dir"`
}

// LoadRuntimeConfig reads and parses a YAML sidecar config file. A
// missing file is not an error: callers get the zero RuntimeConfig,
// matching init_default's permissiveness about absent configuration.
func LoadRuntimeConfig(path string) (RuntimeConfig, error) {
	var cfg RuntimeConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LockDataDir takes an advisory exclusive lock over dir's LOCK file,
// protecting a pebble-backed register volume and the discovered config
// file from concurrent processes. The caller must Unlock the returned
// flock.Flock when done.
func LockDataDir(dir string, lg *log.Logger) (*flock.Flock, error) {
	if lg == nil {
		lg = log.Discard()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(dir, "LOCK"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		lg.Warn("datadir already locked", "dir", dir)
		return nil, os.ErrExist
	}
	return fl, nil
}
