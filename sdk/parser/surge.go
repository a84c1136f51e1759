package parser

import (
	"strconv"
	"strings"

	"github.com/BppleMan/convertor/sdk/profile"
)

const managedConfigPrefix = "#!MANAGED-CONFIG"

// ParseSurge parses S-format text into a profile.SurgeProfile.
func ParseSurge(text string) (*profile.SurgeProfile, error) {
	lines := strings.Split(text, "\n")
	p := profile.NewSurgeProfile()

	section := ""
	var pendingComment []string
	var sawGeneral, sawProxy, sawProxyGroup, sawRuleSection bool

	flushComment := func() *string {
		if len(pendingComment) == 0 {
			return nil
		}
		joined := strings.Join(pendingComment, "\n")
		pendingComment = nil
		return &joined
	}

	startIdx := 0
	sawHeader := false
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), managedConfigPrefix) {
		p.Header = strings.TrimSpace(lines[0])
		startIdx = 1
		sawHeader = true
	}

	for i := startIdx; i < len(lines); i++ {
		lineNo := i + 1
		raw := lines[i]
		trimmed := strings.TrimSpace(raw)

		if trimmed == "" {
			continue
		}

		if name, ok := sectionHeader(trimmed); ok {
			section = name
			switch section {
			case "General":
				sawGeneral = true
			case "Proxy":
				sawProxy = true
			case "Proxy Group":
				sawProxyGroup = true
			case "Rule":
				sawRuleSection = true
			}
			pendingComment = nil
			continue
		}

		if isCommentOnly(trimmed) {
			pendingComment = append(pendingComment, trimmed)
			continue
		}

		switch section {
		case "General":
			p.General = append(p.General, trimmed)
		case "URL Rewrite":
			p.URLRewrite = append(p.URLRewrite, trimmed)
		case "Proxy":
			proxy, err := parseSurgeProxy(lineNo, stripInlineComment(trimmed))
			if err != nil {
				return nil, err
			}
			proxy.Comment = flushComment()
			p.ProxyList = append(p.ProxyList, proxy)
		case "Proxy Group":
			group, err := parseSurgeProxyGroup(lineNo, stripInlineComment(trimmed))
			if err != nil {
				return nil, err
			}
			group.Comment = flushComment()
			p.ProxyGroupList = append(p.ProxyGroupList, group)
		case "Rule":
			rule, err := parseSurgeRule(lineNo, stripInlineComment(trimmed))
			if err != nil {
				return nil, err
			}
			rule.Comment = flushComment()
			p.RuleList = append(p.RuleList, rule)
		case "":
			// content before any section header: ignore, matching a
			// lenient reader over stray blank/garbage lines.
		default:
			p.Misc = appendMisc(p.Misc, section, trimmed)
		}
	}

	if !sawHeader {
		return nil, newSectionMissingErr("MANAGED-CONFIG")
	}
	if !sawGeneral {
		return nil, newSectionMissingErr("General")
	}
	if !sawProxy {
		return nil, newSectionMissingErr("Proxy")
	}
	if !sawProxyGroup {
		return nil, newSectionMissingErr("Proxy Group")
	}
	if !sawRuleSection {
		return nil, newSectionMissingErr("Rule")
	}

	return p, nil
}

func appendMisc(sections []profile.MiscSection, name, line string) []profile.MiscSection {
	for i := range sections {
		if sections[i].Name == name {
			sections[i].Lines = append(sections[i].Lines, line)
			return sections
		}
	}
	return append(sections, profile.MiscSection{Name: name, Lines: []string{line}})
}

func sectionHeader(trimmed string) (string, bool) {
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return "", false
	}
	return trimmed[1 : len(trimmed)-1], true
}

func isCommentOnly(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#")
}

// stripInlineComment removes a trailing "//", " ;", or " #" tail comment,
// per §4.D. Pure comment-only lines are handled separately by isCommentOnly
// before this is ever called.
func stripInlineComment(line string) string {
	idx := -1
	for _, marker := range []string{"//", " ;", " #"} {
		if i := strings.Index(line, marker); i >= 0 && (idx == -1 || i < idx) {
			idx = i
		}
	}
	if idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimRight(line, " \t")
}

func splitNameValue(lineNo int, trimmed string, kind ErrKind) (name, rest string, err error) {
	idx := strings.Index(trimmed, "=")
	if idx < 0 {
		reason := "expected \"name = ...\""
		switch kind {
		case ErrProxy:
			return "", "", newProxyErr(lineNo, reason)
		case ErrProxyGroup:
			return "", "", newProxyGroupErr(lineNo, reason)
		default:
			return "", "", newRuleErr(lineNo, reason)
		}
	}
	return strings.TrimSpace(trimmed[:idx]), strings.TrimSpace(trimmed[idx+1:]), nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func parseSurgeProxy(lineNo int, trimmed string) (profile.Proxy, error) {
	name, rest, err := splitNameValue(lineNo, trimmed, ErrProxy)
	if err != nil {
		return profile.Proxy{}, err
	}
	parts := splitCSV(rest)
	if len(parts) < 3 {
		return profile.Proxy{}, newProxyErr(lineNo, "expected at least type, server, port")
	}

	port, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return profile.Proxy{}, newProxyErr(lineNo, "invalid port: "+parts[2])
	}

	proxy := profile.Proxy{Name: name, Type: parts[0], Server: parts[1], Port: uint16(port)}

	havePassword := false
	for _, kv := range parts[3:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue // unknown/malformed k/v silently ignored
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		switch k {
		case "password":
			proxy.Password = v
			havePassword = true
		case "udp-relay":
			b := v == "true"
			proxy.UDPRelay = &b
		case "tfo":
			b := v == "true"
			proxy.TFO = &b
		case "encrypt-method":
			vv := v
			proxy.EncryptMethod = &vv
		case "sni":
			vv := v
			proxy.SNI = &vv
		case "skip-cert-verify":
			b := v == "true"
			proxy.SkipCertVerify = &b
		}
	}
	if !havePassword {
		return profile.Proxy{}, newProxyErr(lineNo, "missing required field: password")
	}

	return proxy, nil
}

func parseSurgeProxyGroup(lineNo int, trimmed string) (profile.ProxyGroup, error) {
	name, rest, err := splitNameValue(lineNo, trimmed, ErrProxyGroup)
	if err != nil {
		return profile.ProxyGroup{}, err
	}
	parts := splitCSV(rest)
	if len(parts) < 1 {
		return profile.ProxyGroup{}, newProxyGroupErr(lineNo, "expected at least a type")
	}
	groupType, err := profile.ParseProxyGroupType(parts[0])
	if err != nil {
		return profile.ProxyGroup{}, newProxyGroupErr(lineNo, err.Error())
	}
	return profile.ProxyGroup{Name: name, Type: groupType, Members: parts[1:]}, nil
}

func parseSurgeRule(lineNo int, trimmed string) (profile.Rule, error) {
	parts := splitCSV(trimmed)
	if len(parts) < 2 {
		return profile.Rule{}, newRuleErr(lineNo, "expected: type[,value],policy[,option]")
	}

	ruleType, err := profile.ParseRuleType(parts[0])
	if err != nil {
		return profile.Rule{}, newRuleTypeErr(lineNo, err.Error())
	}

	isValueless := ruleType == profile.Final || ruleType == profile.Match

	var value *string
	var policyName string
	var option *string

	if isValueless {
		policyName = parts[1]
		if len(parts) >= 3 {
			o := parts[2]
			option = &o
		}
	} else {
		if len(parts) < 3 {
			return profile.Rule{}, newRuleErr(lineNo, "expected: type,value,policy[,option]")
		}
		v := parts[1]
		value = &v
		policyName = parts[2]
		if len(parts) >= 4 {
			o := parts[3]
			option = &o
		}
	}

	return profile.Rule{
		Type:   ruleType,
		Value:  value,
		Policy: profile.NewPolicy(policyName, option),
	}, nil
}
