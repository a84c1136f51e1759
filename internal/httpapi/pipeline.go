package httpapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/BppleMan/convertor/sdk/cache"
	"github.com/BppleMan/convertor/sdk/optimizer"
	"github.com/BppleMan/convertor/sdk/parser"
	"github.com/BppleMan/convertor/sdk/profile"
	"github.com/BppleMan/convertor/sdk/providerapi"
	"github.com/BppleMan/convertor/sdk/urlquery"
)

// clashTemplate is parsed once from the embedded default scaffold (§3 "a
// template variant shipped in-assets") and merged under every Clash profile
// this pipeline produces. A malformed embedded template is a build-time bug,
// not a request-time failure, so clashTemplate panics rather than returning
// an error through every caller.
var clashTemplate = sync.OnceValue(func() *profile.ClashProfile {
	tmpl, err := parser.ParseClash(profile.ClashTemplateYAML())
	if err != nil {
		panic(fmt.Sprintf("httpapi: embedded clash template is invalid: %v", err))
	}
	return tmpl
})

// prefixOptimizedProfile namespaces the parsed+optimized profile cache,
// distinct from sdk/cache.PrefixProfile which caches the upstream's raw
// (unparsed) subscription text one layer below this one (§4.I vs §4.J step 3).
const prefixOptimizedProfile = "optimized-profile"

// profileCodec is never exercised: the optimized-profile cache always runs
// in no-KV mode (a parsed Profile is an in-process object graph, not a
// value meant to cross a wire), so Encode/Decode are unreachable.
func profileCodec() cache.Codec[profile.Profile] {
	return cache.Codec[profile.Profile]{
		Encode: func(profile.Profile) (string, error) {
			return "", fmt.Errorf("httpapi: optimized profile cache does not support kv persistence")
		},
		Decode: func(string) (profile.Profile, error) {
			return nil, fmt.Errorf("httpapi: optimized profile cache does not support kv persistence")
		},
	}
}

// pipeline fetches, parses, and optimizes one client/provider's profile,
// caching the result keyed by the UrlBuilder that produced it (§4.J step 3:
// "an in-process profile cache keyed by UrlBuilder").
type pipeline struct {
	profiles *cache.Cache[profile.Profile]
}

func newPipeline(capacity int) *pipeline {
	return &pipeline{profiles: cache.New[profile.Profile](capacity, 0, profileCodec())}
}

// profileCacheKey renders a stable identity for a UrlBuilder: the provider,
// the raw (decrypted) sub-URL, client and interval/strict. The encrypted
// sub-URL is left out because it carries a fresh random nonce on every
// encryption, so it differs between requests for the same subscription.
func profileCacheKey(ub *urlquery.UrlBuilder) cache.Key {
	hash := fmt.Sprintf("%s|%s|%s|%d|%t", ub.Provider, ub.RawSubURL, ub.Client, ub.Interval, ub.Strict)
	return cache.NewKey(prefixOptimizedProfile, hash, ub.Client)
}

// clientKind maps a UrlBuilder's client tag to the profile dialect. Other
// client tags are rejected earlier by urlquery.RequestUnsupportedClient.
func clientKind(client string) (profile.Kind, bool) {
	switch client {
	case "surge":
		return profile.KindSurge, true
	case "clash":
		return profile.KindClash, true
	default:
		return 0, false
	}
}

// load fetches the raw subscription text via api, parses it per the
// client's dialect, and runs the optimizer, memoizing the result under the
// UrlBuilder's cache key (§4.J step 3).
func (p *pipeline) load(ctx context.Context, api providerapi.ProviderAPI, ub *urlquery.UrlBuilder, userAgent string) (profile.Profile, error) {
	return p.profiles.GetOrLoad(ctx, profileCacheKey(ub), func(ctx context.Context) (profile.Profile, error) {
		raw, err := api.GetRawProfile(ctx, ub.Client, userAgent)
		if err != nil {
			return nil, err
		}

		kind, ok := clientKind(ub.Client)
		if !ok {
			return nil, &urlquery.RequestError{Kind: urlquery.RequestUnsupportedClient, Key: ub.Client}
		}

		var p profile.Profile
		switch kind {
		case profile.KindSurge:
			p, err = parser.ParseSurge(raw)
		case profile.KindClash:
			var clash *profile.ClashProfile
			clash, err = parser.ParseClash(raw)
			if err == nil {
				p = profile.MergeClashTemplate(clashTemplate(), clash)
			}
		}
		if err != nil {
			return nil, err
		}

		if err := optimizer.Optimize(p, ub); err != nil {
			return nil, err
		}
		return p, nil
	})
}
