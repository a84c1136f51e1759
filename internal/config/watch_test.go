package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchFileReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "convertor.toml")
	if err := os.WriteFile(path, []byte(`secret = "v1"`+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	reloaded := make(chan *Config, 1)
	w, err := WatchFile(path, func(cfg *Config) {
		reloaded <- cfg
	})
	if err != nil {
		t.Fatalf("WatchFile: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte(`secret = "v2"`+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile (update): %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Secret != "v2" {
			t.Fatalf("got secret %q, want %q", cfg.Secret, "v2")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload callback")
	}
}

func TestWatchFileMissingPathIsError(t *testing.T) {
	if _, err := WatchFile(filepath.Join(t.TempDir(), "missing.toml"), func(*Config) {}); err == nil {
		t.Fatal("expected an error watching a nonexistent path")
	}
}
