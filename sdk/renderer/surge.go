package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BppleMan/convertor/sdk/profile"
)

const (
	markerRuleProviderBegin = "# Rule Provider from convertor"
	markerRuleProviderEnd   = "# End of Rule Provider"
)

// RenderSurge serializes p back to S-format text (§4.G "S-renderer").
func RenderSurge(p *profile.SurgeProfile) (string, error) {
	var b strings.Builder

	if p.Header != "" {
		b.WriteString(p.Header)
		b.WriteString("\n\n")
	}

	if len(p.General) > 0 {
		b.WriteString("[General]\n")
		for _, line := range p.General {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("[Proxy]\n")
	for _, proxy := range p.ProxyList {
		writeComment(&b, proxy.Comment)
		b.WriteString(renderSurgeProxyLine(proxy))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("[Proxy Group]\n")
	for _, group := range p.ProxyGroupList {
		writeComment(&b, group.Comment)
		b.WriteString(renderSurgeProxyGroupLine(group))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("[Rule]\n")
	for _, rule := range p.RuleList {
		writeComment(&b, rule.Comment)
		b.WriteString(renderSurgeRuleLine(rule))
		b.WriteString("\n")
	}

	if len(p.URLRewrite) > 0 {
		b.WriteString("\n[URL Rewrite]\n")
		for _, line := range p.URLRewrite {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	for _, misc := range p.Misc {
		b.WriteString("\n[")
		b.WriteString(misc.Name)
		b.WriteString("]\n")
		for _, line := range misc.Lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

func writeComment(b *strings.Builder, comment *string) {
	if comment == nil || *comment == "" {
		return
	}
	b.WriteString(*comment)
	b.WriteString("\n")
}

func boolFlag(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "true"
	}
	return "false"
}

func renderSurgeProxyLine(p profile.Proxy) string {
	fields := []string{p.Type, p.Server, strconv.FormatUint(uint64(p.Port), 10)}
	fields = append(fields, "password="+p.Password)
	if p.EncryptMethod != nil {
		fields = append(fields, "encrypt-method="+*p.EncryptMethod)
	}
	if p.UDPRelay != nil {
		fields = append(fields, "udp-relay="+boolFlag(p.UDPRelay))
	}
	if p.TFO != nil {
		fields = append(fields, "tfo="+boolFlag(p.TFO))
	}
	if p.SNI != nil {
		fields = append(fields, "sni="+*p.SNI)
	}
	if p.SkipCertVerify != nil {
		fields = append(fields, "skip-cert-verify="+boolFlag(p.SkipCertVerify))
	}
	return p.Name + " = " + strings.Join(fields, ", ")
}

func renderSurgeProxyGroupLine(g profile.ProxyGroup) string {
	fields := append([]string{g.Type.String()}, g.Members...)
	return g.Name + " = " + strings.Join(fields, ", ")
}

func renderSurgeRuleLine(r profile.Rule) string {
	var fields []string
	fields = append(fields, r.Type.String())
	if r.Value != nil {
		fields = append(fields, *r.Value)
	}
	fields = append(fields, r.Policy.Name)
	if r.Policy.Option != nil {
		fields = append(fields, *r.Policy.Option)
	}
	return strings.Join(fields, ",")
}

// RuleProviderMarkerSpan returns the literal marker lines the CLI's patch
// path searches for in a user's on-disk config (§6 "Rule-provider marker
// comments").
func RuleProviderMarkerSpan() (begin, end string) {
	return markerRuleProviderBegin, markerRuleProviderEnd
}

// RenderSurgeRuleLines renders each rule as its on-disk S-format lines
// (an optional leading comment, then the rule line itself), the same shape
// RenderSurge uses for the [Rule] section. Shared by the patch path so a
// synthesized RULE-SET span matches what a full render would have produced.
func RenderSurgeRuleLines(rules []profile.Rule) string {
	var b strings.Builder
	for _, rule := range rules {
		writeComment(&b, rule.Comment)
		b.WriteString(renderSurgeRuleLine(rule))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSurgeRuleProviderPayload renders the bare-rule payload a Surge
// RULE-SET fetches from the /rule-provider endpoint: an optional leading
// comment line, then one "TYPE,VALUE" line, per rule, no YAML wrapper
// (§4.G, §6, spec's rule-provider comment pass-through).
func RenderSurgeRuleProviderPayload(rules []profile.ProviderRule) (string, error) {
	var b strings.Builder
	for _, r := range rules {
		if r.Comment != nil && *r.Comment != "" {
			b.WriteString(*r.Comment)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s,%s\n", r.Type.String(), r.Value)
	}
	return b.String(), nil
}
