package patch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BppleMan/convertor/sdk/profile"
	"github.com/BppleMan/convertor/sdk/urlquery"
)

func testUrlBuilder(t *testing.T) *urlquery.UrlBuilder {
	t.Helper()
	ub, err := urlquery.NewUrlBuilder("shared-secret", "surge", "acme", "https://convertor.example.com", "https://acme.example.com/sub", 86400, true)
	if err != nil {
		t.Fatalf("NewUrlBuilder: %v", err)
	}
	return ub
}

func TestSurgeRuleProvidersReplacesSpan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.dconf")

	original := "[Rule]\n" +
		"# Rule Provider from convertor\n" +
		"RULE-SET,https://stale.example.com/old,Proxy\n" +
		"# End of Rule Provider\n" +
		"FINAL,DIRECT\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ub := testUrlBuilder(t)
	policies := []profile.Policy{profile.NewPolicy("Proxy", nil)}

	if err := SurgeRuleProviders(path, ub, policies); err != nil {
		t.Fatalf("SurgeRuleProviders: %v", err)
	}

	patched, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(patched)

	if strings.Contains(content, "stale.example.com") {
		t.Fatalf("expected stale rule-set url to be replaced, got:\n%s", content)
	}
	if !strings.Contains(content, "# Rule Provider from convertor") || !strings.Contains(content, "# End of Rule Provider") {
		t.Fatalf("expected marker lines preserved, got:\n%s", content)
	}
	if !strings.Contains(content, "RULE-SET,") || !strings.Contains(content, "/rule-provider/surge/acme") {
		t.Fatalf("expected a freshly rendered rule-provider url, got:\n%s", content)
	}
	if !strings.HasPrefix(content, "[Rule]\n") {
		t.Fatalf("expected content before the span to be preserved, got:\n%s", content)
	}
	if !strings.HasSuffix(content, "FINAL,DIRECT\n") {
		t.Fatalf("expected content after the span to be preserved, got:\n%s", content)
	}
}

func TestSurgeRuleProvidersMissingMarkerIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.dconf")
	if err := os.WriteFile(path, []byte("[Rule]\nFINAL,DIRECT\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	err := SurgeRuleProviders(path, testUrlBuilder(t), nil)
	if err == nil {
		t.Fatal("expected an error when the marker span is absent")
	}
}

func TestRuleProviderBlockRendersOnePerPolicy(t *testing.T) {
	ub := testUrlBuilder(t)
	policies := []profile.Policy{
		profile.NewPolicy("Proxy", nil),
		profile.NewPolicy("Direct", nil),
	}

	block := RuleProviderBlock(ub, policies)
	if strings.Count(block, "RULE-SET,") != len(policies) {
		t.Fatalf("expected %d RULE-SET lines, got:\n%s", len(policies), block)
	}
}
