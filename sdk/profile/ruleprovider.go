package profile

import "time"

// RuleProvider is a named, lazily-fetched rule list associated with one
// policy, synthesized by the optimizer (§4.F); it is never present in a raw
// profile.
type RuleProvider struct {
	Name     string
	URL      string
	Path     string
	Interval time.Duration
	Size     int64
	Format   string // e.g. "text"
	Behavior string // e.g. "classical", "domain", "ipcidr"
}

// DefaultRuleProviderSizeLimit is the size limit given to every
// rule-provider the optimizer synthesizes.
const DefaultRuleProviderSizeLimit = 128 * 1024
