package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/BppleMan/convertor/sdk/cache"
)

const sampleTOML = `
secret = "shared-secret"
server = "https://convertor.example.com"

[providers.acme]
api_host = "https://acme.example.com"
api_prefix = "/api/v1"

[providers.acme.login]
path = "/login"
json_path = "data.token"

[providers.acme.get_sub]
path = "/sub"
json_path = "data.url"

[providers.acme.reset_sub]
path = "/sub/reset"
json_path = "data.url"

[clients.surge]
interval = 86400
strict = true

[clients.clash]
interval = 43200
strict = false
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleTOML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Secret != "shared-secret" {
		t.Fatalf("got secret %q", cfg.Secret)
	}
	if cfg.Server != "https://convertor.example.com" {
		t.Fatalf("got server %q", cfg.Server)
	}

	pc, ok := cfg.Provider("acme")
	if !ok {
		t.Fatal("expected provider acme to be present")
	}
	if pc.APIHost != "https://acme.example.com" || pc.Login.Path != "/login" {
		t.Fatalf("got provider %+v", pc)
	}
	if pc.SubLogs != nil {
		t.Fatalf("expected no sub_logs section, got %+v", pc.SubLogs)
	}

	cc, ok := cfg.Client("surge")
	if !ok || cc.Interval != 86400 || !cc.Strict {
		t.Fatalf("got client %+v, ok=%v", cc, ok)
	}

	if _, ok := cfg.Provider("unknown"); ok {
		t.Fatal("expected unknown provider to be absent")
	}
}

func TestParseInvalidTOMLIsError(t *testing.T) {
	if _, err := Parse([]byte("not = [valid")); err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "convertor.toml")
	if err := os.WriteFile(path, []byte(sampleTOML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Secret != "shared-secret" {
		t.Fatalf("got secret %q", cfg.Secret)
	}
}

func TestLoadMissingFileIsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadFromKVRoundTrip(t *testing.T) {
	kv := cache.NewMemoryKVStore()
	ctx := context.Background()

	if err := StoreToKV(ctx, kv, []byte(sampleTOML)); err != nil {
		t.Fatalf("StoreToKV: %v", err)
	}

	cfg, err := LoadFromKV(ctx, kv)
	if err != nil {
		t.Fatalf("LoadFromKV: %v", err)
	}
	if cfg.Secret != "shared-secret" {
		t.Fatalf("got secret %q", cfg.Secret)
	}
}

func TestLoadFromKVMissingKeyIsError(t *testing.T) {
	kv := cache.NewMemoryKVStore()
	if _, err := LoadFromKV(context.Background(), kv); err == nil {
		t.Fatal("expected an error when the KV fallback key is absent")
	}
}

func TestToProviderAPIConfig(t *testing.T) {
	cfg, err := Parse([]byte(sampleTOML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pc, _ := cfg.Provider("acme")

	apiCfg := pc.ToProviderAPIConfig("acme")
	if apiCfg.Tag != "acme" {
		t.Fatalf("got tag %q", apiCfg.Tag)
	}
	if apiCfg.LoginAPI.Path != "/login" || apiCfg.LoginAPI.JSONPath != "data.token" {
		t.Fatalf("got login api %+v", apiCfg.LoginAPI)
	}
	if apiCfg.SubLogsAPI != nil {
		t.Fatalf("expected nil SubLogsAPI, got %+v", apiCfg.SubLogsAPI)
	}
}
