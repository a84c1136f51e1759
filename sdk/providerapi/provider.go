package providerapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BppleMan/convertor/sdk/cache"
)

// ProviderAPI is the capability every provider implementation exposes
// (§9 open question: one interface, one generic config-driven
// implementation rather than a trait-per-provider).
type ProviderAPI interface {
	GetRawProfile(ctx context.Context, client, userAgent string) (string, error)
	Login(ctx context.Context) (string, error)
	GetSubURL(ctx context.Context) (*url.URL, error)
	ResetSubURL(ctx context.Context) (*url.URL, error)
	GetSubLogs(ctx context.Context) ([]SubLogEntry, error)
}

func jsonCodec[V any]() cache.Codec[V] {
	return cache.Codec[V]{
		Encode: func(v V) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
		Decode: func(s string) (V, error) {
			var v V
			err := json.Unmarshal([]byte(s), &v)
			return v, err
		},
	}
}

// Provider is the single config-driven ProviderAPI implementation: every
// provider in the TOML config is built from the same shape, parameterized
// by its Config (endpoints, JSON paths, headers).
type Provider struct {
	cfg        Config
	httpClient *http.Client

	profileCache *cache.Cache[string]
	tokenCache   *cache.Cache[string]
	subURLCache  *cache.Cache[string]
	subLogsCache *cache.Cache[[]SubLogEntry]
}

// NewProvider builds a Provider wired to the two-tier cache, optionally
// backed by kv (nil runs the cache in no-KV, in-process-only mode).
func NewProvider(cfg Config, httpClient *http.Client, kv cache.KVStore, kvTTL time.Duration) *Provider {
	p := &Provider{cfg: cfg, httpClient: httpClient}

	var opts []cache.Option[string]
	var logOpts []cache.Option[[]SubLogEntry]
	if kv != nil {
		opts = append(opts, cache.WithKV[string](kv, kvTTL))
		logOpts = append(logOpts, cache.WithKV[[]SubLogEntry](kv, kvTTL))
	}

	p.profileCache = cache.New[string](256, kvTTL, cache.StringCodec(), opts...)
	p.tokenCache = cache.New[string](16, kvTTL, cache.StringCodec(), opts...)
	p.subURLCache = cache.New[string](16, kvTTL, cache.StringCodec(), opts...)
	p.subLogsCache = cache.New[[]SubLogEntry](16, kvTTL, jsonCodec[[]SubLogEntry](), logOpts...)

	return p
}

func (p *Provider) buildRawURL(client string) string {
	sep := "?"
	if strings.Contains(p.cfg.RawSubURL, "?") {
		sep = "&"
	}
	return p.cfg.RawSubURL + sep + "flag=" + client
}

// GetRawProfile fetches the raw subscription text, cached under
// (profile, raw-sub-URL, client) (§4.I get_raw_profile).
func (p *Provider) GetRawProfile(ctx context.Context, client, userAgent string) (string, error) {
	rawURL := p.buildRawURL(client)
	key := cache.NewKey(cache.PrefixProfile, rawURL, client)

	return p.profileCache.GetOrLoad(ctx, key, func(ctx context.Context) (string, error) {
		req, err := http.NewRequest(http.MethodGet, rawURL, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", userAgent)
		_, body, err := execute(ctx, p.httpClient, p.cfg, req)
		if err != nil {
			return "", err
		}
		return string(body), nil
	})
}

// Login returns the auth token, short-circuiting on a static pre-configured
// Authorization header without caching or network I/O (§4.I "Static
// pre-configured token").
func (p *Provider) Login(ctx context.Context) (string, error) {
	if token := p.cfg.Headers["Authorization"]; token != "" {
		return token, nil
	}

	key := cache.NewKey(cache.PrefixAuthToken, p.cfg.endpoint(p.cfg.LoginAPI), "")
	return p.tokenCache.GetOrLoad(ctx, key, func(ctx context.Context) (string, error) {
		form := url.Values{"username": {p.cfg.Username}, "password": {p.cfg.Password}}
		req, err := http.NewRequest(http.MethodPost, p.cfg.endpoint(p.cfg.LoginAPI), strings.NewReader(form.Encode()))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		_, body, err := execute(ctx, p.httpClient, p.cfg, req)
		if err != nil {
			return "", err
		}
		return extractJSONPath(body, p.cfg.LoginAPI.JSONPath)
	})
}

// GetSubURL fetches the provider's "unified" subscription URL, cached
// (§4.I get_sub_url).
func (p *Provider) GetSubURL(ctx context.Context) (*url.URL, error) {
	key := cache.NewKey(cache.PrefixRawSubURL, p.cfg.endpoint(p.cfg.GetSubAPI), "")
	raw, err := p.subURLCache.GetOrLoad(ctx, key, func(ctx context.Context) (string, error) {
		token, err := p.Login(ctx)
		if err != nil {
			return "", err
		}
		req, err := http.NewRequest(http.MethodGet, p.cfg.endpoint(p.cfg.GetSubAPI), nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Authorization", token)

		_, body, err := execute(ctx, p.httpClient, p.cfg, req)
		if err != nil {
			return "", err
		}
		return extractJSONPath(body, p.cfg.GetSubAPI.JSONPath)
	})
	if err != nil {
		return nil, err
	}
	return url.Parse(raw)
}

// ResetSubURL requests a fresh subscription URL and is never cached
// (§4.I reset_sub_url) — it also invalidates the cached sub-URL entry so a
// subsequent GetSubURL does not serve the stale value.
func (p *Provider) ResetSubURL(ctx context.Context) (*url.URL, error) {
	token, err := p.Login(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, p.cfg.endpoint(p.cfg.ResetSubAPI), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)

	_, body, err := execute(ctx, p.httpClient, p.cfg, req)
	if err != nil {
		return nil, err
	}
	raw, err := extractJSONPath(body, p.cfg.ResetSubAPI.JSONPath)
	if err != nil {
		return nil, err
	}

	p.subURLCache.Invalidate(cache.NewKey(cache.PrefixRawSubURL, p.cfg.endpoint(p.cfg.GetSubAPI), ""))

	return url.Parse(raw)
}

// GetSubLogs fetches the subscription-traffic log list, cached
// (§4.I get_sub_logs).
func (p *Provider) GetSubLogs(ctx context.Context) ([]SubLogEntry, error) {
	if p.cfg.SubLogsAPI == nil {
		return nil, ErrSubLogsUnconfigured
	}
	api := *p.cfg.SubLogsAPI

	key := cache.NewKey(cache.PrefixSubLogs, p.cfg.endpoint(api), "")
	return p.subLogsCache.GetOrLoad(ctx, key, func(ctx context.Context) ([]SubLogEntry, error) {
		token, err := p.Login(ctx)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequest(http.MethodGet, p.cfg.endpoint(api), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", token)

		_, body, err := execute(ctx, p.httpClient, p.cfg, req)
		if err != nil {
			return nil, err
		}

		raw, err := extractJSONPath(body, api.JSONPath)
		if err != nil {
			return nil, err
		}
		var logs []SubLogEntry
		if err := json.Unmarshal([]byte(raw), &logs); err != nil {
			return nil, &JsonPathError{Path: api.JSONPath, Err: err}
		}
		return logs, nil
	})
}
