// Package patch implements the companion CLI's on-disk config patch: given
// a local Surge rules file that already carries the rule-provider marker
// comments, it replaces the span between them with freshly rendered
// RULE-SET lines for the caller's policy list, grounded in how the
// original CLI's `update` path rewrites a user's rules.dconf in place.
package patch

import (
	"fmt"
	"os"
	"strings"

	"github.com/BppleMan/convertor/sdk/profile"
	"github.com/BppleMan/convertor/sdk/renderer"
	"github.com/BppleMan/convertor/sdk/urlquery"
)

// Error reports a failure to locate or rewrite the marker span.
type Error struct {
	Path   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("patch: %s: %s", e.Path, e.Reason)
}

// RuleProviderBlock renders the full marker-to-marker text for policies: the
// begin marker line, one RULE-SET rule per policy pointing at this
// UrlBuilder's rule-provider URL, and the end marker line. The block is
// self-contained so it can be spliced between any pair of marker lines
// without trailing/leading blank-line drift.
func RuleProviderBlock(ub *urlquery.UrlBuilder, policies []profile.Policy) string {
	begin, end := renderer.RuleProviderMarkerSpan()

	rules := make([]profile.Rule, 0, len(policies))
	for _, policy := range policies {
		name := profile.ProviderName(policy, profile.KindSurge)
		url := ub.RuleProviderURL(policy)
		rules = append(rules, profile.SurgeRuleProvider(policy, name, url))
	}

	var b strings.Builder
	b.WriteString(begin)
	b.WriteString("\n")
	b.WriteString(renderer.RenderSurgeRuleLines(rules))
	b.WriteString(end)
	return b.String()
}

// SurgeRuleProviders reads the Surge config at path, finds the rule-provider
// marker span (renderer.RuleProviderMarkerSpan), and replaces every line in
// it — inclusive of both markers — with RuleProviderBlock(ub, policies).
// The file's line endings outside the span are left untouched.
func SurgeRuleProviders(path string, ub *urlquery.UrlBuilder, policies []profile.Policy) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &Error{Path: path, Reason: err.Error()}
	}

	lines := strings.Split(string(raw), "\n")
	beginIdx, endIdx, err := findMarkerSpan(lines)
	if err != nil {
		return &Error{Path: path, Reason: err.Error()}
	}

	block := strings.Split(strings.TrimRight(RuleProviderBlock(ub, policies), "\n"), "\n")
	patched := make([]string, 0, beginIdx+len(block)+len(lines)-endIdx-1)
	patched = append(patched, lines[:beginIdx]...)
	patched = append(patched, block...)
	patched = append(patched, lines[endIdx+1:]...)

	if err := os.WriteFile(path, []byte(strings.Join(patched, "\n")), 0o644); err != nil {
		return &Error{Path: path, Reason: err.Error()}
	}
	return nil
}

// findMarkerSpan locates the begin/end marker lines in lines, matched after
// trimming surrounding whitespace so indentation in the user's file doesn't
// defeat the search.
func findMarkerSpan(lines []string) (begin, end int, err error) {
	markerBegin, markerEnd := renderer.RuleProviderMarkerSpan()
	begin, end = -1, -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case markerBegin:
			if begin == -1 {
				begin = i
			}
		case markerEnd:
			if begin != -1 && end == -1 {
				end = i
			}
		}
	}
	if begin == -1 || end == -1 {
		return 0, 0, fmt.Errorf("rule-provider marker span not found (expected %q ... %q)", markerBegin, markerEnd)
	}
	if end < begin {
		return 0, 0, fmt.Errorf("rule-provider marker end precedes begin")
	}
	return begin, end, nil
}
