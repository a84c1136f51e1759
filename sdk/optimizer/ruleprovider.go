package optimizer

import (
	"github.com/BppleMan/convertor/sdk/profile"
	"github.com/BppleMan/convertor/sdk/urlquery"
)

// synthesizeRuleProviders implements F3: one rule-provider plus its
// referencing RULE-SET rule per policy, in sortedPolicies order. For
// S-format only the RULE-SET rules are returned (rule-provider rendering
// is a CLI-only concern, §4.G); for C-format both are returned.
func synthesizeRuleProviders(kind profile.Kind, sortedPolicies []profile.Policy, ub *urlquery.UrlBuilder) ([]profile.Rule, []profile.RuleProviderEntry) {
	rules := make([]profile.Rule, 0, len(sortedPolicies))
	var providers []profile.RuleProviderEntry

	for _, policy := range sortedPolicies {
		name := profile.ProviderName(policy, kind)
		providerURL := ub.RuleProviderURL(policy)

		if kind == profile.KindSurge {
			rules = append(rules, profile.SurgeRuleProvider(policy, name, providerURL))
			continue
		}

		providers = append(providers, profile.RuleProviderEntry{
			Name: name,
			Provider: profile.RuleProvider{
				Name:     name,
				URL:      providerURL,
				Path:     "./rule-providers/" + name + ".yaml",
				Interval: ub.IntervalDuration(),
				Size:     profile.DefaultRuleProviderSizeLimit,
				Format:   "yaml",
				Behavior: "classical",
			},
		})
		rules = append(rules, profile.ClashRuleProvider(policy, name))
	}

	return rules, providers
}
