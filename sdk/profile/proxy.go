// Package profile defines the shared profile model described in spec §3 and
// §4.D: proxies, proxy-groups, policies, rules, rule-providers, and the two
// profile variants (S-format/Surge and C-format/Clash) that hold them.
package profile

import (
	"fmt"
	"strings"
)

// Proxy is one upstream proxy server entry. Name is unique per profile. It
// is created by the parser, never mutated by the optimizer, and serialized
// by the renderer.
type Proxy struct {
	Name     string
	Type     string // transport type tag, e.g. "ss", "vmess", "trojan", "http"
	Server   string
	Port     uint16
	Password string

	UDPRelay       *bool
	TFO            *bool
	EncryptMethod  *string
	SNI            *string
	SkipCertVerify *bool

	// Comment is free-form text preceding this proxy's line in the source.
	Comment *string
}

// ProxyGroupType is the closed set of proxy-group behaviors.
type ProxyGroupType int

const (
	Select ProxyGroupType = iota
	URLTest
	Smart
	Fallback
	LoadBalance
)

// String renders the lowercase, dash-separated wire form used by both
// dialects (e.g. "select", "url-test").
func (t ProxyGroupType) String() string {
	switch t {
	case Select:
		return "select"
	case URLTest:
		return "url-test"
	case Smart:
		return "smart"
	case Fallback:
		return "fallback"
	case LoadBalance:
		return "load-balance"
	default:
		return "select"
	}
}

// ParseProxyGroupType parses the wire form produced by String, case
// insensitively.
func ParseProxyGroupType(s string) (ProxyGroupType, error) {
	switch strings.ToLower(s) {
	case "select":
		return Select, nil
	case "url-test":
		return URLTest, nil
	case "smart":
		return Smart, nil
	case "fallback":
		return Fallback, nil
	case "load-balance":
		return LoadBalance, nil
	default:
		return Select, fmt.Errorf("profile: unknown proxy group type %q", s)
	}
}

// ProxyGroup is a named, ordered collection of member references. Members
// may reference other groups, proxies, or built-in policies by name. The
// optimizer replaces the member list wholesale when restructuring (§4.F).
type ProxyGroup struct {
	Name    string
	Type    ProxyGroupType
	Members []string
	Comment *string
}
