package profile

import (
	"sort"
	"strings"
)

// Policy is the (name, option, is_subscription) triple that a Rule is
// assigned to. The built-in policies are recognized specially by name; the
// subscription policy is a sentinel identified by the IsSubscription flag,
// not by name, per §9's "Policy sentinel" design note.
type Policy struct {
	Name           string
	Option         *string
	IsSubscription bool
}

// Recognized built-in policy names (spec §3).
const (
	PolicyDirect = "DIRECT"
	PolicyReject = "REJECT"
	PolicyFinal  = "FINAL"
	PolicyMatch  = "MATCH"
	PolicyGeoIP  = "GEOIP"
)

// SubscriptionPolicyName is the display base name for the sentinel policy
// that routes requests to the subscription endpoint itself directly.
const SubscriptionPolicyName = "Subscription"

var builtInNames = map[string]bool{
	PolicyDirect: true,
	PolicyReject: true,
	PolicyFinal:  true,
	PolicyMatch:  true,
	PolicyGeoIP:  true,
}

// NewPolicy builds a plain (non-subscription) policy.
func NewPolicy(name string, option *string) Policy {
	return Policy{Name: name, Option: option}
}

// SubscriptionPolicy builds the sentinel policy attached to rules whose
// value matches the provider host.
func SubscriptionPolicy() Policy {
	return Policy{Name: SubscriptionPolicyName, IsSubscription: true}
}

// IsBuiltIn reports whether p names one of the recognized built-in
// policies. A subscription-sentinel policy is never built-in even if its
// name happened to collide, because built-in status is judged by name only
// on ordinary policies; the subscription sentinel already carries its own
// flag and is ordered by Less below.
func (p Policy) IsBuiltIn() bool {
	return !p.IsSubscription && builtInNames[p.Name]
}

func (p Policy) optionValue() string {
	if p.Option == nil {
		return ""
	}
	return *p.Option
}

// Key renders a comparable, map-safe identity string for p: two policies
// with equal Name, Option, and IsSubscription collapse to the same Key,
// matching "Duplicate policy ... collapses to one bucket" (§8).
func (p Policy) Key() string {
	sub := "0"
	if p.IsSubscription {
		sub = "1"
	}
	return p.Name + "\x00" + p.optionValue() + "\x00" + sub
}

// builtInRank orders the five built-ins ahead of everything else, in a
// fixed sequence.
func builtInRank(name string) (int, bool) {
	switch name {
	case PolicyDirect:
		return 0, true
	case PolicyReject:
		return 1, true
	case PolicyFinal:
		return 2, true
	case PolicyMatch:
		return 3, true
	case PolicyGeoIP:
		return 4, true
	default:
		return 0, false
	}
}

// Less implements the total Policy order from §3: built-ins first (in
// builtInRank order), then by (name, option, is_subscription).
func Less(a, b Policy) bool {
	aRank, aBuiltIn := builtInRank(a.Name)
	bRank, bBuiltIn := builtInRank(b.Name)
	if aBuiltIn && !a.IsSubscription && bBuiltIn && !b.IsSubscription {
		return aRank < bRank
	}
	if aBuiltIn && !a.IsSubscription {
		return true
	}
	if bBuiltIn && !b.IsSubscription {
		return false
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if av, bv := a.optionValue(), b.optionValue(); av != bv {
		return av < bv
	}
	if a.IsSubscription != b.IsSubscription {
		return !a.IsSubscription
	}
	return false
}

// SortPolicies sorts a slice of policies in place under the total order.
func SortPolicies(policies []Policy) {
	sort.Slice(policies, func(i, j int) bool { return Less(policies[i], policies[j]) })
}

// Version is embedded in S-format provider-name derivation (§4.G).
const Version = "1.0"

// ProviderName derives the public rule-provider / proxy-group name for a
// policy (§4.G "Provider-name derivation"), dispatching on dialect.
func ProviderName(p Policy, kind Kind) string {
	base := p.Name
	if p.IsSubscription {
		base = SubscriptionPolicyName
	}
	switch kind {
	case KindSurge:
		if p.Option != nil {
			return "[" + base + ": " + *p.Option + "] by convertor/" + Version
		}
		return "[" + base + "] by convertor/" + Version
	default: // KindClash
		if p.Option != nil {
			opt := strings.ReplaceAll(*p.Option, "-", "_")
			return base + "_" + opt
		}
		return base + "_policy"
	}
}
