package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/BppleMan/convertor/internal/config"
	"github.com/BppleMan/convertor/sdk/providerapi"
	"github.com/BppleMan/convertor/sdk/urlquery"
)

// resolveProvider looks up the named provider's API client and config entry,
// reporting RequestUnknownProvider (§7) if it is not configured.
func (s *Server) resolveProvider(tag string) (providerapi.ProviderAPI, config.ProviderConfig, error) {
	cfg, providers := s.snapshot()
	api, ok := providers[tag]
	if !ok {
		return nil, config.ProviderConfig{}, &urlquery.RequestError{Kind: urlquery.RequestUnknownProvider, Key: tag}
	}
	pc := cfg.Providers[tag]
	return api, pc, nil
}

// clientDefaults looks up interval/strict defaults for client, reporting
// RequestUnknownClient if it has no entry in the config's clients map.
func (s *Server) clientDefaults(client string) (config.ClientConfig, error) {
	cfg, _ := s.snapshot()
	cc, ok := cfg.Client(client)
	if !ok {
		return config.ClientConfig{}, &urlquery.RequestError{Kind: urlquery.RequestUnknownClient, Key: client}
	}
	return cc, nil
}

// parseQuery decodes the request's raw query string into a ConvertorQuery.
func parseQuery(c *gin.Context) (urlquery.ConvertorQuery, error) {
	q, err := urlquery.Decode(c.Request.URL.RawQuery)
	if err != nil {
		return urlquery.ConvertorQuery{}, &urlquery.QueryError{Kind: urlquery.QueryDecryptFailed, Err: err}
	}
	return urlquery.ParseConvertorQuery(q)
}

// effectiveIntervalStrict applies a request's explicit interval/strict over
// the client's configured defaults.
func effectiveIntervalStrict(cq urlquery.ConvertorQuery, defaults config.ClientConfig) (uint64, bool) {
	interval := defaults.Interval
	if cq.Interval != nil {
		interval = *cq.Interval
	}
	strict := defaults.Strict
	if cq.Strict != nil {
		strict = *cq.Strict
	}
	return interval, strict
}

// buildURLBuilder decrypts the request's sub_url under the shared secret
// and reconstructs the canonical UrlBuilder (§4.J step 2).
func (s *Server) buildURLBuilder(cq urlquery.ConvertorQuery, client, providerTag string, interval uint64, strict bool) (*urlquery.UrlBuilder, error) {
	cfg, _ := s.snapshot()
	rawSubURL, err := cq.DecryptSubURL(cfg.Secret)
	if err != nil {
		return nil, err
	}
	return urlquery.NewUrlBuilder(cfg.Secret, client, providerTag, cfg.Server, rawSubURL, interval, strict)
}
