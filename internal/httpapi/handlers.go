package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BppleMan/convertor/sdk/profile"
	"github.com/BppleMan/convertor/sdk/providerapi"
	"github.com/BppleMan/convertor/sdk/renderer"
	"github.com/BppleMan/convertor/sdk/urlquery"
)

const managedConfigPrefix = "#!MANAGED-CONFIG"

// renderProfile dispatches to the dialect-specific renderer for p.
func renderProfile(p profile.Profile) (string, error) {
	switch v := p.(type) {
	case *profile.SurgeProfile:
		return renderer.RenderSurge(v)
	case *profile.ClashProfile:
		return renderer.RenderClash(v)
	default:
		return "", &renderer.RenderError{Reason: "unreachable profile variant"}
	}
}

// handleProfile implements GET /profile/:client/:provider (§4.J step 1-4).
func (s *Server) handleProfile(c *gin.Context) {
	client := c.Param("client")
	providerTag := c.Param("provider")

	api, _, err := s.resolveProvider(providerTag)
	if err != nil {
		writeError(c, err)
		return
	}
	defaults, err := s.clientDefaults(client)
	if err != nil {
		writeError(c, err)
		return
	}
	cq, err := parseQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := cq.CheckForProfile(); err != nil {
		writeError(c, err)
		return
	}
	interval, strict := effectiveIntervalStrict(cq, defaults)
	ub, err := s.buildURLBuilder(cq, client, providerTag, interval, strict)
	if err != nil {
		writeError(c, err)
		return
	}

	p, err := s.pipeline.load(c.Request.Context(), api, ub, c.GetHeader("User-Agent"))
	if err != nil {
		writeError(c, err)
		return
	}

	text, err := renderProfile(p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// handleRawProfile implements GET /raw-profile/:client/:provider: the raw
// subscription text, header line replaced to point at this endpoint
// (§4.J — S-format only; C-format is a 400).
func (s *Server) handleRawProfile(c *gin.Context) {
	client := c.Param("client")
	providerTag := c.Param("provider")

	if client != "surge" {
		writeError(c, &urlquery.RequestError{Kind: urlquery.RequestUnsupportedClient, Key: client})
		return
	}

	api, _, err := s.resolveProvider(providerTag)
	if err != nil {
		writeError(c, err)
		return
	}
	defaults, err := s.clientDefaults(client)
	if err != nil {
		writeError(c, err)
		return
	}
	cq, err := parseQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := cq.CheckForProfile(); err != nil {
		writeError(c, err)
		return
	}
	interval, strict := effectiveIntervalStrict(cq, defaults)
	ub, err := s.buildURLBuilder(cq, client, providerTag, interval, strict)
	if err != nil {
		writeError(c, err)
		return
	}

	raw, err := api.GetRawProfile(c.Request.Context(), client, c.GetHeader("User-Agent"))
	if err != nil {
		writeError(c, err)
		return
	}

	header := managedConfigPrefix + " " + ub.RawProfileURL() +
		" interval=" + strconv.FormatUint(interval, 10) + " strict=" + strconv.FormatBool(strict)

	lines := strings.SplitN(raw, "\n", 2)
	var body string
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), managedConfigPrefix) {
		if len(lines) == 2 {
			body = header + "\n" + lines[1]
		} else {
			body = header
		}
	} else {
		body = header + "\n" + raw
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// resolvePolicy turns a PolicyQuery into the Policy it names, honoring the
// subscription sentinel flag (§9 "Policy sentinel").
func resolvePolicy(pq *urlquery.PolicyQuery) profile.Policy {
	if pq.IsSubscription != nil && *pq.IsSubscription {
		return profile.SubscriptionPolicy()
	}
	return profile.NewPolicy(pq.Name, pq.Option)
}

// handleRuleProvider implements GET /rule-provider/:client/:provider: only
// the rule-provider payload for the policy named in the query (§4.J).
func (s *Server) handleRuleProvider(c *gin.Context) {
	client := c.Param("client")
	providerTag := c.Param("provider")

	api, _, err := s.resolveProvider(providerTag)
	if err != nil {
		writeError(c, err)
		return
	}
	defaults, err := s.clientDefaults(client)
	if err != nil {
		writeError(c, err)
		return
	}
	cq, err := parseQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := cq.CheckForRuleProvider(); err != nil {
		writeError(c, err)
		return
	}
	interval, strict := effectiveIntervalStrict(cq, defaults)
	ub, err := s.buildURLBuilder(cq, client, providerTag, interval, strict)
	if err != nil {
		writeError(c, err)
		return
	}

	p, err := s.pipeline.load(c.Request.Context(), api, ub, c.GetHeader("User-Agent"))
	if err != nil {
		writeError(c, err)
		return
	}

	policy := resolvePolicy(cq.Policy)
	rules := p.PolicyOfRules()[policy.Key()]

	var payload string
	switch client {
	case "clash":
		payload, err = renderer.RenderClashRuleProviderPayload(rules)
	default:
		payload, err = renderer.RenderSurgeRuleProviderPayload(rules)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(payload))
}

// handleSubLogs implements GET /sub-logs/:provider: the traffic log list,
// paginated by optional page_current+page_size (§4.J, §9 pagination note).
func (s *Server) handleSubLogs(c *gin.Context) {
	providerTag := c.Param("provider")

	api, _, err := s.resolveProvider(providerTag)
	if err != nil {
		writeError(c, err)
		return
	}
	cq, err := parseQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	cfg, _ := s.snapshot()
	if err := cq.CheckForSubLogs(cfg.Secret); err != nil {
		writeError(c, err)
		return
	}

	logs, err := api.GetSubLogs(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	pageCurrent, pageSize := parsePageParams(c)
	if pageCurrent != nil && pageSize == nil || pageCurrent == nil && pageSize != nil {
		requestLogger(c).Warn("sub-logs: only one of page_current/page_size supplied, returning unpaginated list")
	}
	logs = providerapi.Paginate(logs, pageCurrent, pageSize)

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func parsePageParams(c *gin.Context) (*int, *int) {
	var current, size *int
	if v := c.Query("page_current"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			current = &n
		}
	}
	if v := c.Query("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			size = &n
		}
	}
	return current, size
}

// subscriptionBundle is the JSON shape returned by /api/subscription
// (§4.J, supplemented feature 4: enumerate every rule-provider URL).
type subscriptionBundle struct {
	RawURL           string            `json:"raw_url"`
	RawProfileURL    string            `json:"raw_profile_url"`
	ProfileURL       string            `json:"profile_url"`
	SubLogsURL       string            `json:"sub_logs_url"`
	RuleProviderURLs map[string]string `json:"rule_provider_urls"`
}

// handleSubscriptionBundle implements GET /api/subscription/:client/:provider:
// all five URL variants plus one rule-provider URL per policy in the
// optimized profile (§4.J).
func (s *Server) handleSubscriptionBundle(c *gin.Context) {
	client := c.Param("client")
	providerTag := c.Param("provider")

	api, _, err := s.resolveProvider(providerTag)
	if err != nil {
		writeError(c, err)
		return
	}
	defaults, err := s.clientDefaults(client)
	if err != nil {
		writeError(c, err)
		return
	}
	cq, err := parseQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := cq.CheckForProfile(); err != nil {
		writeError(c, err)
		return
	}
	interval, strict := effectiveIntervalStrict(cq, defaults)
	ub, err := s.buildURLBuilder(cq, client, providerTag, interval, strict)
	if err != nil {
		writeError(c, err)
		return
	}

	p, err := s.pipeline.load(c.Request.Context(), api, ub, c.GetHeader("User-Agent"))
	if err != nil {
		writeError(c, err)
		return
	}

	rawURL, err := ub.RawURL()
	if err != nil {
		writeError(c, err)
		return
	}

	bundle := subscriptionBundle{
		RawURL:           rawURL,
		RawProfileURL:    ub.RawProfileURL(),
		ProfileURL:       ub.ProfileURL(),
		SubLogsURL:       ub.SubLogsURL(),
		RuleProviderURLs: map[string]string{},
	}
	for _, policy := range p.SortedPolicyList() {
		bundle.RuleProviderURLs[policy.Key()] = ub.RuleProviderURL(policy)
	}

	c.JSON(http.StatusOK, bundle)
}
