package profile_test

import (
	"testing"

	"github.com/BppleMan/convertor/sdk/parser"
	"github.com/BppleMan/convertor/sdk/profile"
)

func TestClashTemplateYAMLParses(t *testing.T) {
	tmpl, err := parser.ParseClash(profile.ClashTemplateYAML())
	if err != nil {
		t.Fatalf("embedded clash template failed to parse: %v", err)
	}
	if tmpl.Port == 0 {
		t.Fatalf("expected a non-zero default port, got %+v", tmpl)
	}
	if len(tmpl.ProxyList) != 0 {
		t.Fatalf("expected the template to carry no proxies, got %+v", tmpl.ProxyList)
	}
}

func TestMergeClashTemplateKeepsScaffoldAndUpstreamData(t *testing.T) {
	tmpl, err := parser.ParseClash(profile.ClashTemplateYAML())
	if err != nil {
		t.Fatalf("ParseClash(template): %v", err)
	}

	raw, err := parser.ParseClash(`
mode: rule
rules:
  - FINAL,DIRECT
proxies:
  - name: HK-01
    type: ss
    server: hk.example.com
    port: 443
    password: secret1
`)
	if err != nil {
		t.Fatalf("ParseClash(raw): %v", err)
	}

	merged := profile.MergeClashTemplate(tmpl, raw)

	if merged.Port != tmpl.Port || merged.ExternalController != tmpl.ExternalController {
		t.Fatalf("expected scaffold scalars from template, got %+v", merged)
	}
	if len(merged.ProxyList) != 1 || merged.ProxyList[0].Name != "HK-01" {
		t.Fatalf("expected upstream proxies to win, got %+v", merged.ProxyList)
	}
	if len(merged.RuleList) != 1 {
		t.Fatalf("expected upstream rules to win, got %+v", merged.RuleList)
	}
}
