package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BppleMan/convertor/sdk/profile"
)

// RenderClash serializes p back to C-format (Clash) YAML text (§4.G
// "C-renderer"). Proxies, groups, and rule-providers use inline flow-map
// syntax; rules render as quoted strings under a rules: sequence.
func RenderClash(p *profile.ClashProfile) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "port: %d\n", p.Port)
	fmt.Fprintf(&b, "socks-port: %d\n", p.SocksPort)
	fmt.Fprintf(&b, "redir-port: %d\n", p.RedirPort)
	fmt.Fprintf(&b, "allow-lan: %s\n", strconv.FormatBool(p.AllowLan))
	fmt.Fprintf(&b, "mode: %s\n", p.Mode)
	fmt.Fprintf(&b, "log-level: %s\n", p.LogLevel)
	fmt.Fprintf(&b, "external-controller: %s\n", p.ExternalController)
	if p.ExternalUI != "" {
		fmt.Fprintf(&b, "external-ui: %s\n", p.ExternalUI)
	}
	if p.Secret != nil {
		fmt.Fprintf(&b, "secret: %s\n", *p.Secret)
	}

	b.WriteString("\nproxies:\n")
	for _, proxy := range p.ProxyList {
		b.WriteString("    - ")
		b.WriteString(renderClashProxyFlowMap(proxy))
		b.WriteString("\n")
	}

	b.WriteString("\nproxy-groups:\n")
	for _, group := range p.ProxyGroupList {
		b.WriteString("    - ")
		b.WriteString(renderClashProxyGroupFlowMap(group))
		b.WriteString("\n")
	}

	if len(p.RuleProviders) > 0 {
		b.WriteString("\nrule-providers:\n")
		for _, entry := range p.RuleProviders {
			fmt.Fprintf(&b, "    %s: %s\n", entry.Name, renderClashRuleProviderFlowMap(entry.Provider))
		}
	}

	b.WriteString("\nrules:\n")
	for _, rule := range p.RuleList {
		fmt.Fprintf(&b, "    - %q\n", clashRuleLine(rule))
	}

	return b.String(), nil
}

func renderClashProxyFlowMap(p profile.Proxy) string {
	fields := []string{
		"name: " + p.Name,
		"type: " + p.Type,
		"server: " + p.Server,
		"port: " + strconv.FormatUint(uint64(p.Port), 10),
		"password: " + p.Password,
	}
	if p.EncryptMethod != nil {
		fields = append(fields, "cipher: "+*p.EncryptMethod)
	}
	if p.UDPRelay != nil {
		fields = append(fields, "udp: "+boolFlag(p.UDPRelay))
	}
	if p.TFO != nil {
		fields = append(fields, "tfo: "+boolFlag(p.TFO))
	}
	if p.SNI != nil {
		fields = append(fields, "sni: "+*p.SNI)
	}
	if p.SkipCertVerify != nil {
		fields = append(fields, "skip-cert-verify: "+boolFlag(p.SkipCertVerify))
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

func renderClashProxyGroupFlowMap(g profile.ProxyGroup) string {
	members := make([]string, len(g.Members))
	copy(members, g.Members)
	fields := []string{
		"name: " + g.Name,
		"type: " + g.Type.String(),
		"proxies: [" + strings.Join(members, ", ") + "]",
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

func renderClashRuleProviderFlowMap(rp profile.RuleProvider) string {
	fields := []string{
		"type: http",
		"behavior: " + rp.Behavior,
		"url: " + rp.URL,
		"path: " + rp.Path,
		"interval: " + strconv.FormatInt(int64(rp.Interval.Seconds()), 10),
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

// clashRuleLine renders the type[,value],policy[,option] rule grammar
// shared with the parser package.
func clashRuleLine(r profile.Rule) string {
	var b strings.Builder
	b.WriteString(r.Type.String())
	if r.Value != nil {
		b.WriteString(",")
		b.WriteString(*r.Value)
	}
	b.WriteString(",")
	b.WriteString(r.Policy.Name)
	if r.Policy.Option != nil {
		b.WriteString(",")
		b.WriteString(*r.Policy.Option)
	}
	return b.String()
}

// RenderClashRuleProviderPayload renders the bare-rule payload returned by
// the /rule-provider endpoint for one policy's bucket of ProviderRules, in
// the YAML "payload:" list form a Clash rule-provider expects.
func RenderClashRuleProviderPayload(rules []profile.ProviderRule) (string, error) {
	var b strings.Builder
	b.WriteString("payload:\n")
	for _, r := range rules {
		fmt.Fprintf(&b, "    - %s,%s\n", r.Type.String(), r.Value)
	}
	return b.String(), nil
}
