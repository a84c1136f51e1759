package config

import (
	"context"
	"fmt"

	"github.com/BppleMan/convertor/sdk/cache"
)

// kvConfigKey is the fixed key the config document is stored under in the
// distributed KV fallback (§6 "convertor:config").
const kvConfigKey = "convertor:config"

// LoadFromKV fetches and parses the config document from kv, used when no
// on-disk config file is found (§6 "accepts the same TOML document loaded
// from a distributed KV under a fixed key as a fallback").
func LoadFromKV(ctx context.Context, kv cache.KVStore) (*Config, error) {
	raw, ok, err := kv.Get(ctx, kvConfigKey)
	if err != nil {
		return nil, fmt.Errorf("config: kv fallback: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("config: kv fallback: key %q not found", kvConfigKey)
	}
	return Parse([]byte(raw))
}

// StoreToKV writes the current on-disk config into the KV fallback key, so
// a future instance that starts with no local file still finds one.
func StoreToKV(ctx context.Context, kv cache.KVStore, data []byte) error {
	return kv.Set(ctx, kvConfigKey, string(data), 0)
}
