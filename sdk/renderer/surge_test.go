package renderer

import (
	"strings"
	"testing"

	"github.com/BppleMan/convertor/sdk/parser"
	"github.com/BppleMan/convertor/sdk/profile"
)

func strPtr(s string) *string { return &s }

func TestRenderSurgeProxyLineFieldOrder(t *testing.T) {
	proxy := profile.Proxy{
		Name:           "HK-01",
		Type:           "ss",
		Server:         "hk.example.com",
		Port:           443,
		Password:       "secret1",
		EncryptMethod:  strPtr("aes-256-gcm"),
		UDPRelay:       boolPtr(true),
		SNI:            strPtr("hk.example.com"),
		SkipCertVerify: boolPtr(false),
	}
	got := renderSurgeProxyLine(proxy)
	want := "HK-01 = ss, hk.example.com, 443, password=secret1, encrypt-method=aes-256-gcm, udp-relay=true, sni=hk.example.com, skip-cert-verify=false"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func boolPtr(b bool) *bool { return &b }

func TestRenderSurgeRuleLine(t *testing.T) {
	rule := profile.Rule{Type: profile.DomainSuffix, Value: strPtr("ads.example.com"), Policy: profile.NewPolicy("REJECT", nil)}
	got := renderSurgeRuleLine(rule)
	want := "DOMAIN-SUFFIX,ads.example.com,REJECT"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderSurgeValuelessRule(t *testing.T) {
	rule := profile.Rule{Type: profile.Final, Policy: profile.NewPolicy("DIRECT", nil)}
	got := renderSurgeRuleLine(rule)
	want := "FINAL,DIRECT"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderSurgeRuleProviderPayloadHasNoYAMLWrapper(t *testing.T) {
	rules := []profile.ProviderRule{
		{Type: profile.DomainSuffix, Value: "ads.example.com"},
		{Type: profile.Domain, Value: "api.example.com"},
	}
	got, err := RenderSurgeRuleProviderPayload(rules)
	if err != nil {
		t.Fatalf("RenderSurgeRuleProviderPayload: %v", err)
	}
	if strings.Contains(got, "payload:") {
		t.Fatalf("surge payload must not carry the clash payload: wrapper, got %q", got)
	}
	want := "DOMAIN-SUFFIX,ads.example.com\nDOMAIN,api.example.com\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderSurgeRuleProviderPayloadPreservesComment(t *testing.T) {
	rules := []profile.ProviderRule{
		{Type: profile.DomainSuffix, Value: "ads.example.com", Comment: strPtr("// Proxy by convertor/1.0")},
		{Type: profile.Domain, Value: "api.example.com"},
	}
	got, err := RenderSurgeRuleProviderPayload(rules)
	if err != nil {
		t.Fatalf("RenderSurgeRuleProviderPayload: %v", err)
	}
	want := "// Proxy by convertor/1.0\nDOMAIN-SUFFIX,ads.example.com\nDOMAIN,api.example.com\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderSurgeRoundTripStructure(t *testing.T) {
	text := "#!MANAGED-CONFIG https://example.com/profile\n\n" +
		"[General]\nloglevel = notify\n\n" +
		"[Proxy]\nHK-01 = ss, hk.example.com, 443, password=secret1\n\n" +
		"[Proxy Group]\nProxy = select, HK-01, DIRECT\n\n" +
		"[Rule]\nDOMAIN-SUFFIX,ads.example.com,REJECT\nFINAL,DIRECT\n"

	p, err := parser.ParseSurge(text)
	if err != nil {
		t.Fatalf("ParseSurge: %v", err)
	}
	rendered, err := RenderSurge(p)
	if err != nil {
		t.Fatalf("RenderSurge: %v", err)
	}

	reparsed, err := parser.ParseSurge(rendered)
	if err != nil {
		t.Fatalf("ParseSurge(rendered): %v\n--- rendered ---\n%s", err, rendered)
	}
	if len(reparsed.ProxyList) != 1 || reparsed.ProxyList[0].Name != "HK-01" {
		t.Fatalf("proxy did not survive round trip: %+v", reparsed.ProxyList)
	}
	if len(reparsed.RuleList) != 2 {
		t.Fatalf("rules did not survive round trip: %+v", reparsed.RuleList)
	}
	if !strings.Contains(rendered, "[Proxy Group]") {
		t.Fatalf("expected Proxy Group section, got:\n%s", rendered)
	}
}
