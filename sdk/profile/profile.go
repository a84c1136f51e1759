package profile

// Kind distinguishes the two profile variants so renderers and the HTTP
// layer can dispatch without a type switch on every call site.
type Kind int

const (
	KindSurge Kind = iota
	KindClash
)

func (k Kind) String() string {
	if k == KindClash {
		return "clash"
	}
	return "surge"
}

// Profile is the capability shared by both dialects (§9 "Polymorphism
// across formats"): proxies, proxy-groups, rules, and the optimizer's
// derived state. Dispatch on the concrete type is static in the renderer
// and parser packages; code paths that must hold either variant use this
// interface.
type Profile interface {
	Kind() Kind

	Proxies() []Proxy
	ProxyGroups() []ProxyGroup
	SetProxyGroups([]ProxyGroup)

	Rules() []Rule
	SetRules([]Rule)

	// PolicyOfRules maps Policy.Key() to the provider rules attached to
	// that policy (§3 derived state).
	PolicyOfRules() map[string][]ProviderRule
	// SortedPolicyList is the policies in final sorted order (§3).
	SortedPolicyList() []Policy
	// SetOptimized installs the optimizer's derived state (§4.F3).
	SetOptimized(policyOfRules map[string][]ProviderRule, sorted []Policy)
}

// Base holds the fields and accessor logic common to both profile variants.
// Embed it and add Kind() plus format-specific fields to implement Profile.
type Base struct {
	ProxyList        []Proxy
	ProxyGroupList   []ProxyGroup
	RuleList         []Rule
	PolicyOfRulesMap map[string][]ProviderRule
	SortedPolicies   []Policy
}

func (b *Base) Proxies() []Proxy { return b.ProxyList }

func (b *Base) ProxyGroups() []ProxyGroup { return b.ProxyGroupList }

func (b *Base) SetProxyGroups(groups []ProxyGroup) { b.ProxyGroupList = groups }

func (b *Base) Rules() []Rule { return b.RuleList }

func (b *Base) SetRules(rules []Rule) { b.RuleList = rules }

func (b *Base) PolicyOfRules() map[string][]ProviderRule { return b.PolicyOfRulesMap }

func (b *Base) SortedPolicyList() []Policy { return b.SortedPolicies }

func (b *Base) SetOptimized(policyOfRules map[string][]ProviderRule, sorted []Policy) {
	b.PolicyOfRulesMap = policyOfRules
	b.SortedPolicies = sorted
}
