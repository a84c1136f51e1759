package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/BppleMan/convertor/sdk/profile"
	"gopkg.in/yaml.v3"
)

// clashDoc mirrors the subset of a Clash YAML config this package cares
// about; unrecognized top-level keys are simply dropped, matching a lenient
// C-format reader (§4.D).
type clashDoc struct {
	Port               int               `yaml:"port"`
	SocksPort          int               `yaml:"socks-port"`
	RedirPort          int               `yaml:"redir-port"`
	AllowLan           bool              `yaml:"allow-lan"`
	Mode               string            `yaml:"mode"`
	LogLevel           string            `yaml:"log-level"`
	ExternalController string            `yaml:"external-controller"`
	ExternalUI         string            `yaml:"external-ui"`
	Secret             *string           `yaml:"secret"`
	Proxies            []map[string]any  `yaml:"proxies"`
	ProxyGroups        []map[string]any  `yaml:"proxy-groups"`
	Rules              []string          `yaml:"rules"`
	// RuleProviders is decoded as a raw mapping node rather than a Go map so
	// that document order survives into profile.ClashProfile.RuleProviders
	// (§3 "rule-providers (ordered pairs of name → provider)"); a map would
	// randomize iteration order on every parse.
	RuleProviders *yaml.Node `yaml:"rule-providers"`
}

type clashRuleProvider struct {
	Type      string `yaml:"type"`
	Behavior  string `yaml:"behavior"`
	URL       string `yaml:"url"`
	Path      string `yaml:"path"`
	Interval  int64  `yaml:"interval"`
	SizeLimit int64  `yaml:"size-limit"`
	Format    string `yaml:"format"`
}

// ParseClash parses C-format (Clash) YAML text into a profile.ClashProfile.
func ParseClash(text string) (*profile.ClashProfile, error) {
	var doc clashDoc
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, newRuleErr(0, "yaml: "+err.Error())
	}

	p := profile.NewClashProfile()
	p.Port = doc.Port
	p.SocksPort = doc.SocksPort
	p.RedirPort = doc.RedirPort
	p.AllowLan = doc.AllowLan
	p.Mode = doc.Mode
	p.LogLevel = doc.LogLevel
	p.ExternalController = doc.ExternalController
	p.ExternalUI = doc.ExternalUI
	p.Secret = doc.Secret

	for _, raw := range doc.Proxies {
		proxy, err := clashProxyFromMap(raw)
		if err != nil {
			return nil, err
		}
		p.ProxyList = append(p.ProxyList, proxy)
	}

	for _, raw := range doc.ProxyGroups {
		group, err := clashProxyGroupFromMap(raw)
		if err != nil {
			return nil, err
		}
		p.ProxyGroupList = append(p.ProxyGroupList, group)
	}

	if len(doc.Rules) == 0 {
		return nil, newSectionMissingErr("rules")
	}
	for i, line := range doc.Rules {
		rule, err := parseClashRuleLine(i+1, line)
		if err != nil {
			return nil, err
		}
		p.RuleList = append(p.RuleList, rule)
	}

	if doc.RuleProviders != nil {
		if doc.RuleProviders.Kind != yaml.MappingNode {
			return nil, newRuleErr(0, "rule-providers: expected a mapping")
		}
		for i := 0; i+1 < len(doc.RuleProviders.Content); i += 2 {
			name := doc.RuleProviders.Content[i].Value
			var rp clashRuleProvider
			if err := doc.RuleProviders.Content[i+1].Decode(&rp); err != nil {
				return nil, newRuleErr(0, "rule-providers."+name+": "+err.Error())
			}
			p.RuleProviders = append(p.RuleProviders, profile.RuleProviderEntry{
				Name: name,
				Provider: profile.RuleProvider{
					Name:     name,
					URL:      rp.URL,
					Path:     rp.Path,
					Interval: time.Duration(rp.Interval) * time.Second,
					Size:     rp.SizeLimit,
					Format:   rp.Format,
					Behavior: rp.Behavior,
				},
			})
		}
	}

	return p, nil
}

func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func boolField(m map[string]any, key string) (bool, bool) {
	v, ok := m[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func clashProxyFromMap(m map[string]any) (profile.Proxy, error) {
	name, _ := stringField(m, "name")
	if name == "" {
		return profile.Proxy{}, newProxyErr(0, "clash proxy entry missing name")
	}
	typ, _ := stringField(m, "type")
	server, _ := stringField(m, "server")
	password, _ := stringField(m, "password")

	var port uint16
	switch v := m["port"].(type) {
	case int:
		port = uint16(v)
	case int64:
		port = uint16(v)
	case string:
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return profile.Proxy{}, newProxyErr(0, "invalid port for "+name)
		}
		port = uint16(n)
	default:
		return profile.Proxy{}, newProxyErr(0, "missing port for "+name)
	}

	proxy := profile.Proxy{Name: name, Type: typ, Server: server, Port: port, Password: password}

	if b, ok := boolField(m, "udp"); ok {
		proxy.UDPRelay = &b
	}
	if b, ok := boolField(m, "tfo"); ok {
		proxy.TFO = &b
	}
	if s, ok := stringField(m, "cipher"); ok {
		proxy.EncryptMethod = &s
	}
	if s, ok := stringField(m, "sni"); ok {
		proxy.SNI = &s
	}
	if b, ok := boolField(m, "skip-cert-verify"); ok {
		proxy.SkipCertVerify = &b
	}

	return proxy, nil
}

func clashProxyGroupFromMap(m map[string]any) (profile.ProxyGroup, error) {
	name, _ := stringField(m, "name")
	if name == "" {
		return profile.ProxyGroup{}, newProxyGroupErr(0, "clash proxy-group entry missing name")
	}
	typ, _ := stringField(m, "type")
	groupType, err := profile.ParseProxyGroupType(typ)
	if err != nil {
		return profile.ProxyGroup{}, newProxyGroupErr(0, err.Error())
	}

	var members []string
	if raw, ok := m["proxies"].([]any); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok {
				members = append(members, s)
			}
		}
	}

	return profile.ProxyGroup{Name: name, Type: groupType, Members: members}, nil
}

// parseClashRuleLine parses one entry of the top-level "rules" sequence,
// sharing the type[,value],policy[,option] grammar with S-format (§4.D).
func parseClashRuleLine(lineNo int, line string) (profile.Rule, error) {
	parts := splitCSV(line)
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

// clashRuleString renders a Rule back to its YAML-sequence line form, using
// the same separators as the renderer package's own clashRuleLine.
func clashRuleString(r profile.Rule) string {
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
