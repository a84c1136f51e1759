// Package config loads and hot-reloads the service's TOML configuration
// (spec §6): the shared secret, this service's own externally-visible URL,
// the provider table, and per-client defaults.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level TOML document (§6 "Configuration file").
type Config struct {
	// Secret is the shared secret used to encrypt/decrypt enc_secret and
	// enc_sub_url in every URL variant (§4.A/§4.H).
	Secret string `toml:"secret"`

	// Server is this service's URL as seen by clients, used to build the
	// managed-config header and every derived URL variant.
	Server string `toml:"server"`

	// Providers maps a provider tag (the URL path segment) to its API
	// configuration.
	Providers map[string]ProviderConfig `toml:"providers"`

	// Clients maps a client tag (surge, clash, ...) to its defaults.
	Clients map[string]ClientConfig `toml:"clients"`
}

// ApiMethodConfig is one provider endpoint's path and JSON-path (§6
// "four api-method sections each with path and json_path").
type ApiMethodConfig struct {
	Path     string `toml:"path"`
	JSONPath string `toml:"json_path"`
}

// ProviderConfig is one entry of the `providers` map (§6).
type ProviderConfig struct {
	APIHost   string `toml:"api_host"`
	APIPrefix string `toml:"api_prefix"`

	Login    ApiMethodConfig  `toml:"login"`
	GetSub   ApiMethodConfig  `toml:"get_sub"`
	ResetSub ApiMethodConfig  `toml:"reset_sub"`
	SubLogs  *ApiMethodConfig `toml:"sub_logs,omitempty"`

	Headers   map[string]string `toml:"headers,omitempty"`
	RawSubURL string            `toml:"raw_sub_url,omitempty"`
	UniSubURL string            `toml:"uni_sub_url,omitempty"`

	Username string `toml:"username,omitempty"`
	Password string `toml:"password,omitempty"`
}

// ClientConfig is one entry of the `clients` map: the defaults applied when
// a request omits `interval`/`strict` (§6).
type ClientConfig struct {
	Interval uint64 `toml:"interval"`
	Strict   bool   `toml:"strict"`
}

// Load parses the TOML document at path into a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a raw TOML document, as used both for on-disk config and for
// the KV-fallback document fetched under the `convertor:config` key (§6).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return &cfg, nil
}

// Provider looks up a provider by its URL path segment, reporting false when
// no provider is configured under tag.
func (c *Config) Provider(tag string) (ProviderConfig, bool) {
	p, ok := c.Providers[tag]
	return p, ok
}

// Client looks up a client's defaults by its URL path segment.
func (c *Config) Client(tag string) (ClientConfig, bool) {
	cl, ok := c.Clients[tag]
	return cl, ok
}
