// Package cache implements the two-tier (in-process + distributed) cache
// described in spec §4.B/§3/§5: a bounded in-process TTL overlay in front of
// an optional KV store, with at-most-one loader in flight per key.
package cache

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Codec converts a cached value to and from its string wire form, so the
// cache can be parameterized over (Key, Value) generically per the
// "Cache genericity" design note: "Parameterize the cache over (Key, Value)
// where Value serializes to/from a string".
type Codec[V any] struct {
	Encode func(V) (string, error)
	Decode func(string) (V, error)
}

// StringCodec is the identity Codec for plain string values.
func StringCodec() Codec[string] {
	return Codec[string]{
		Encode: func(s string) (string, error) { return s, nil },
		Decode: func(s string) (string, error) { return s, nil },
	}
}

// Cache is one instantiation of the two-tier cache for a single resource
// class (e.g. raw profiles, auth tokens).
type Cache[V any] struct {
	kv      KVStore // nil means no-KV mode: only the in-process tier exists.
	memory  *inProcess[V]
	flight  *flightGroup[V]
	codec   Codec[V]
	kvTTL   time.Duration
}

// Option configures a Cache at construction time.
type Option[V any] func(*Cache[V])

// WithKV attaches a distributed KV store as the cache's second tier.
func WithKV[V any](kv KVStore, ttl time.Duration) Option[V] {
	return func(c *Cache[V]) {
		c.kv = kv
		c.kvTTL = ttl
	}
}

// New builds a Cache with the given in-process capacity and TTL. Pass
// WithKV to add the distributed tier; without it the cache runs in no-KV
// mode, matching the accepted degraded mode from the design notes.
func New[V any](capacity int, memoryTTL time.Duration, codec Codec[V], opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		memory: newInProcess[V](capacity, memoryTTL),
		flight: newFlightGroup[V](),
		codec:  codec,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrLoad implements the three-step lookup from §4.B:
//  1. in-process hit -> return.
//  2. KV hit -> decode, populate in-process, return.
//  3. run loader (at most one in flight per key); on success write through
//     both tiers; on error, nothing is cached.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key Key, loader func(ctx context.Context) (V, error)) (V, error) {
	rendered := key.String()

	if value, ok := c.memory.get(rendered); ok {
		return value, nil
	}

	if c.kv != nil {
		raw, ok, err := c.kv.Get(ctx, rendered)
		if err != nil {
			log.WithError(err).WithField("key", rendered).Warn("cache: kv lookup failed, falling through to loader")
		} else if ok {
			value, err := c.codec.Decode(raw)
			if err != nil {
				log.WithError(err).WithField("key", rendered).Warn("cache: kv value failed to decode, falling through to loader")
			} else {
				c.memory.set(rendered, value)
				return value, nil
			}
		}
	}

	return c.flight.do(rendered, func() (V, error) {
		value, err := loader(ctx)
		if err != nil {
			var zero V
			return zero, err
		}

		c.memory.set(rendered, value)

		if c.kv != nil {
			raw, encodeErr := c.codec.Encode(value)
			if encodeErr != nil {
				log.WithError(encodeErr).WithField("key", rendered).Warn("cache: value failed to encode for kv write-through")
			} else if setErr := c.kv.Set(ctx, rendered, raw, c.kvTTL); setErr != nil {
				log.WithError(setErr).WithField("key", rendered).Warn("cache: kv write-through failed")
			}
		}

		return value, nil
	})
}

// Invalidate removes key from the in-process tier only; the distributed
// tier expires it on its own TTL. Used after a reset-style operation
// (§4.I reset_sub_url) that must not serve stale cached data.
func (c *Cache[V]) Invalidate(key Key) {
	c.memory.mu.Lock()
	delete(c.memory.entries, key.String())
	c.memory.mu.Unlock()
}

// Error wraps a loader error that was deliberately not memoized, matching
// §7's CacheError "wraps an arbitrary loader error ... re-classifies by the
// inner kind".
type Error struct {
	Key   string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cache: load failed for key %q: %v", e.Key, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }
