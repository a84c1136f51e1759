package profile

import _ "embed"

// clashTemplateYAML is the default C-format scaffold merged under every
// upstream proxy list (§3 "a template variant shipped in-assets"), the Go
// analogue of the original's `include_str!("../../../assets/clash/template.yaml")`.
//
//go:embed assets/clash/template.yaml
var clashTemplateYAML string

// ClashTemplateYAML returns the embedded default Clash template text, for
// callers (sdk/parser, via ParseClash) that need to parse it into a
// ClashProfile.
func ClashTemplateYAML() string { return clashTemplateYAML }

// RuleProviderEntry is one (name, provider) pair, in the order parsed or
// synthesized — C-profiles model rule-providers as an ordered sequence of
// pairs, not a map, so emission order is reproducible (§3).
type RuleProviderEntry struct {
	Name     string
	Provider RuleProvider
}

// ClashProfile is the C-format profile model: fixed general scalars plus
// the structured proxy, proxy-group, rule, and rule-provider lists.
type ClashProfile struct {
	Base

	Port               int
	SocksPort          int
	RedirPort          int
	AllowLan           bool
	Mode               string
	LogLevel           string
	ExternalController string
	ExternalUI         string
	Secret             *string

	RuleProviders []RuleProviderEntry
}

var _ Profile = (*ClashProfile)(nil)

func (p *ClashProfile) Kind() Kind { return KindClash }

// NewClashProfile builds an empty ClashProfile ready for the parser to
// populate.
func NewClashProfile() *ClashProfile {
	return &ClashProfile{Base: Base{PolicyOfRulesMap: map[string][]ProviderRule{}}}
}

// MergeClashTemplate folds an upstream-parsed ClashProfile's dynamic data
// (proxies, rules, rule-providers) into the connection scaffold carried by
// template, the same split the original's ClashProfile::optimize draws
// between a template()-seeded receiver and a freshly parsed raw_profile:
// template supplies the scalars a user's client reads to reach convertor
// itself (port, socks-port, external-controller, ...), upstream always
// supplies what to proxy.
func MergeClashTemplate(template, raw *ClashProfile) *ClashProfile {
	merged := *template
	merged.ProxyList = raw.ProxyList
	merged.ProxyGroupList = raw.ProxyGroupList
	merged.RuleList = raw.RuleList
	merged.RuleProviders = raw.RuleProviders
	return &merged
}
