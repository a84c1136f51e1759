// Package optimizer implements the three-phase profile optimization
// described in spec §4.F: region regrouping, rule partitioning, and
// rule-provider synthesis.
package optimizer

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/BppleMan/convertor/sdk/profile"
	"github.com/BppleMan/convertor/sdk/region"
	"github.com/BppleMan/convertor/sdk/urlquery"
	"github.com/sirupsen/logrus"
)

const infoGroupName = "Subscription Info"

var numericToken = regexp.MustCompile(`^\d+$`)

// Optimize mutates p in place, installing region-grouped proxy groups, a
// partitioned rule list with synthesized rule-providers, and (for S-format)
// a rebuilt managed-config header.
func Optimize(p profile.Profile, ub *urlquery.UrlBuilder) error {
	regroupProxies(p)

	policyOfRules, sortedPolicies, err := partitionRules(p, ub)
	if err != nil {
		return err
	}

	builtIn := builtInRules(p.Rules())
	newRules, providers := synthesizeRuleProviders(p.Kind(), sortedPolicies, ub)
	newRules = append(newRules, builtIn...)

	p.SetOptimized(policyOfRules, sortedPolicies)
	p.SetRules(newRules)

	switch profile2 := p.(type) {
	case *profile.SurgeProfile:
		profile2.Header = "#!MANAGED-CONFIG " + ub.ProfileURL() +
			" interval=" + strconv.FormatUint(ub.Interval, 10) +
			" strict=" + strconv.FormatBool(ub.Strict)
	case *profile.ClashProfile:
		profile2.RuleProviders = providers
	}

	return nil
}

// detectRegion applies the §4.F name-cleaning rule: split on spaces, drop
// purely numeric tokens, then run region.Detect once over what remains.
func detectRegion(name string) (region.Region, bool) {
	tokens := strings.Fields(name)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if numericToken.MatchString(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return region.Detect(strings.Join(kept, " "))
}

// regroupProxies implements F1. A profile with no proxies is left alone —
// its proxy-group list (if any) is untouched.
func regroupProxies(p profile.Profile) {
	proxies := p.Proxies()
	if len(proxies) == 0 {
		return
	}

	type regionBucket struct {
		r       region.Region
		members []string
	}
	var order []string
	buckets := map[string]*regionBucket{}
	var infoMembers []string

	for _, proxy := range proxies {
		r, ok := detectRegion(proxy.Name)
		if !ok {
			infoMembers = append(infoMembers, proxy.Name)
			continue
		}
		b, seen := buckets[r.Code]
		if !seen {
			b = &regionBucket{r: r}
			buckets[r.Code] = b
			order = append(order, r.Code)
		}
		b.members = append(b.members, proxy.Name)
	}

	seenPolicy := map[string]bool{}
	var policyNames []string
	for _, rule := range p.Rules() {
		if rule.Policy.IsBuiltIn() {
			continue
		}
		if seenPolicy[rule.Policy.Name] {
			continue
		}
		seenPolicy[rule.Policy.Name] = true
		policyNames = append(policyNames, rule.Policy.Name)
	}

	regionDisplayNames := make([]string, 0, len(order))
	for _, code := range order {
		regionDisplayNames = append(regionDisplayNames, buckets[code].r.PolicyName())
	}

	var groups []profile.ProxyGroup
	for _, name := range policyNames {
		groups = append(groups, profile.ProxyGroup{
			Name:    name,
			Type:    profile.Select,
			Members: append([]string(nil), regionDisplayNames...),
		})
	}

	groups = append(groups, profile.ProxyGroup{
		Name:    infoGroupName,
		Type:    profile.Select,
		Members: infoMembers,
	})

	regionGroupType := profile.URLTest
	if p.Kind() == profile.KindSurge {
		regionGroupType = profile.Smart
	}
	for _, code := range order {
		b := buckets[code]
		groups = append(groups, profile.ProxyGroup{
			Name:    b.r.PolicyName(),
			Type:    regionGroupType,
			Members: append([]string(nil), b.members...),
		})
	}

	p.SetProxyGroups(groups)
}

// partitionRules implements F2, returning the per-policy ProviderRule
// buckets keyed by Policy.Key() alongside the owning Policy values, sorted.
// Built-in rules are not returned here; the caller collects them separately.
func partitionRules(p profile.Profile, ub *urlquery.UrlBuilder) (map[string][]profile.ProviderRule, []profile.Policy, error) {
	subHost, err := subscriptionHost(ub.RawSubURL)
	if err != nil {
		return nil, nil, &urlquery.UrlBuilderError{Reason: "resolving subscription host: " + err.Error()}
	}

	policyOfRules := map[string][]profile.ProviderRule{}
	policyByKey := map[string]profile.Policy{}

	for _, rule := range p.Rules() {
		if rule.IsBuiltIn() {
			continue
		}
		if rule.Value == nil {
			logrus.WithField("rule_type", rule.Type.String()).Warn("optimizer: skipping non-built-in rule with no value")
			continue
		}

		policy := rule.Policy
		if strings.Contains(*rule.Value, subHost) {
			policy = profile.SubscriptionPolicy()
		}

		providerRule, err := profile.NewProviderRule(profile.Rule{Type: rule.Type, Value: rule.Value, Comment: rule.Comment})
		if err != nil {
			logrus.WithError(err).Warn("optimizer: skipping rule that cannot become a provider rule")
			continue
		}

		key := policy.Key()
		policyOfRules[key] = append(policyOfRules[key], providerRule)
		policyByKey[key] = policy
	}

	sorted := make([]profile.Policy, 0, len(policyByKey))
	for _, policy := range policyByKey {
		sorted = append(sorted, policy)
	}
	profile.SortPolicies(sorted)

	return policyOfRules, sorted, nil
}

func subscriptionHost(rawSubURL string) (string, error) {
	parsed, err := url.Parse(rawSubURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}

// builtInRules extracts the FINAL/MATCH/GEOIP/value-less rules in their
// original order, preserved verbatim by F2/F3 (§4.F "Finally, re-append").
func builtInRules(rules []profile.Rule) []profile.Rule {
	var out []profile.Rule
	for _, r := range rules {
		if r.IsBuiltIn() {
			out = append(out, r)
		}
	}
	return out
}
