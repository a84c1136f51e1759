package region

import "testing"

func TestDetectByCode(t *testing.T) {
	r, ok := Detect("HK 01")
	if !ok {
		t.Fatal("expected a match")
	}
	if r.Code != "HK" {
		t.Fatalf("got %q, want HK", r.Code)
	}
}

func TestDetectByChineseName(t *testing.T) {
	r, ok := Detect("日本 01 高级节点")
	if !ok {
		t.Fatal("expected a match")
	}
	if r.Code != "JP" {
		t.Fatalf("got %q, want JP", r.Code)
	}
}

func TestDetectNoMatch(t *testing.T) {
	if _, ok := Detect("Info Traffic"); ok {
		t.Fatal("did not expect a match for an info pseudo-node name")
	}
	if _, ok := Detect("01"); ok {
		t.Fatal("did not expect a match for a bare numeric token")
	}
}

func TestPolicyName(t *testing.T) {
	r, ok := Detect("HK")
	if !ok {
		t.Fatal("expected a match")
	}
	if got, want := r.PolicyName(), "🇭🇰 香港"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTableOrderIsStable(t *testing.T) {
	if len(Table) < 2 {
		t.Fatal("table too small to assert ordering")
	}
	if Table[0].Code != "HK" || Table[1].Code != "TW" {
		t.Fatalf("unexpected table order: %v, %v", Table[0].Code, Table[1].Code)
	}
}
