package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Prefix constants partition the cache namespace by resource class, per the
// provider-API operations that populate them.
const (
	PrefixAuthToken = "auth-token"
	PrefixProfile   = "raw-profile"
	PrefixRawSubURL = "raw-sub-url"
	PrefixSubLogs   = "sub-logs"
)

// defaultNamespace prefixes every rendered key so a shared Redis instance can
// be used by unrelated services without key collisions.
const defaultNamespace = "convertor"

// Key identifies a cached value. Hash is the caller-rendered deterministic
// string form of whatever structured payload the cache entry is keyed by
// (e.g. a raw-sub URL, a login endpoint path); Client is an optional
// discriminator (the client dialect) that keeps per-client entries apart.
type Key struct {
	Namespace string
	Prefix    string
	Client    string
	Hash      string
}

// NewKey builds a Key in the default namespace.
func NewKey(prefix, hash string, client string) Key {
	return Key{Namespace: defaultNamespace, Prefix: prefix, Client: client, Hash: hash}
}

// ShortHash renders a file-safe, fixed-width hash of the key, suitable for
// use as a filename or as the ASCII-safe tail segment of a distributed key.
func (k Key) ShortHash() string {
	sum := sha256.Sum256([]byte(k.Hash))
	return hex.EncodeToString(sum[:])[:16]
}

// String renders the colon-separated distributed-cache key:
// "<namespace>:<prefix>[:<client>]:<hash-payload>".
func (k Key) String() string {
	namespace := k.Namespace
	if namespace == "" {
		namespace = defaultNamespace
	}
	if k.Client != "" {
		return fmt.Sprintf("%s:%s:%s:%s", namespace, k.Prefix, k.Client, k.ShortHash())
	}
	return fmt.Sprintf("%s:%s:%s", namespace, k.Prefix, k.ShortHash())
}
