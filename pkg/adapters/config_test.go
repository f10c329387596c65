package adapters

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverConfigPathHonoursEnvOverride(t *testing.T) {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "conf.glas")
	if err := os.WriteFile(confPath, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GLAS_CONF", confPath)
	if got := DiscoverConfigPath(); got != confPath {
		t.Fatalf("expected %q, got %q", confPath, got)
	}
}

func TestDiscoverConfigPathReturnsEmptyWhenNothingExists(t *testing.T) {
	t.Setenv("GLAS_CONF", "")
	t.Setenv("HOME", t.TempDir())
	if got := DiscoverConfigPath(); got != "" {
		t.Fatalf("expected no config path, got %q", got)
	}
}

func TestLoadRuntimeConfigMissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadRuntimeConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 0 {
		t.Fatalf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadRuntimeConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yaml")
	contents := "workers: 4\nmetrics_addr: \":9090\"\ndata_dir: /var/lib/glas\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadRuntimeConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 4 {
		t.Fatalf("expected workers=4, got %d", cfg.Workers)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Fatalf("expected metrics_addr=':9090', got %q", cfg.MetricsAddr)
	}
	if cfg.DataDir != "/var/lib/glas" {
		t.Fatalf("expected data_dir, got %q", cfg.DataDir)
	}
}

func TestLockDataDirPreventsSecondLock(t *testing.T) {
	dir := t.TempDir()
	first, err := LockDataDir(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Unlock()

	if _, err := LockDataDir(dir, nil); err == nil {
		t.Fatal("expected a second lock attempt on the same datadir to fail")
	}
}
