package profile

import "testing"

func TestPolicySortBuiltInsFirst(t *testing.T) {
	opt := "no-resolve"
	policies := []Policy{
		NewPolicy("Zeta", nil),
		NewPolicy(PolicyMatch, nil),
		SubscriptionPolicy(),
		NewPolicy(PolicyDirect, nil),
		NewPolicy("Alpha", &opt),
		NewPolicy("Alpha", nil),
	}
	SortPolicies(policies)

	if policies[0].Name != PolicyDirect {
		t.Fatalf("got %v first, want DIRECT", policies[0])
	}
	if policies[1].Name != PolicyMatch {
		t.Fatalf("got %v second, want MATCH", policies[1])
	}
	// Remaining non-built-ins sorted by name then option.
	for i := 2; i < len(policies)-1; i++ {
		if Less(policies[i+1], policies[i]) {
			t.Fatalf("policies not sorted at index %d: %v before %v", i, policies[i], policies[i+1])
		}
	}
}

func TestPolicyKeyCollapsesDuplicates(t *testing.T) {
	opt := "fast"
	a := Policy{Name: "BosLife", Option: &opt}
	b := Policy{Name: "BosLife", Option: &opt}
	if a.Key() != b.Key() {
		t.Fatalf("expected equal keys, got %q and %q", a.Key(), b.Key())
	}

	c := Policy{Name: "BosLife"}
	if a.Key() == c.Key() {
		t.Fatal("policies with differing option must not collapse")
	}
}

func TestIsBuiltIn(t *testing.T) {
	if !NewPolicy(PolicyDirect, nil).IsBuiltIn() {
		t.Fatal("DIRECT should be built-in")
	}
	if NewPolicy("BosLife", nil).IsBuiltIn() {
		t.Fatal("custom policy should not be built-in")
	}
	if SubscriptionPolicy().IsBuiltIn() {
		t.Fatal("subscription sentinel should not be built-in")
	}
}

func TestProviderRuleRequiresValue(t *testing.T) {
	rule := Rule{Type: Final, Policy: NewPolicy(PolicyDirect, nil)}
	if _, err := NewProviderRule(rule); err != ErrRuleHasNoValue {
		t.Fatalf("got err %v, want ErrRuleHasNoValue", err)
	}

	value := "example.com"
	rule = Rule{Type: Domain, Value: &value, Policy: NewPolicy(PolicyDirect, nil)}
	pr, err := NewProviderRule(rule)
	if err != nil {
		t.Fatalf("NewProviderRule: %v", err)
	}
	if pr.Value != value || pr.Type != Domain {
		t.Fatalf("got %+v", pr)
	}
}
