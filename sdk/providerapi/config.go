// Package providerapi implements the HTTP client that talks to a
// subscription provider: login, raw-profile fetch, subscription-URL
// lookup/reset, and subscription-log retrieval, each cached via sdk/cache
// (spec §4.I).
package providerapi

// ApiMethod names one provider endpoint: its path (relative to APIHost +
// APIPrefix) and the JSON path used to pluck the field of interest out of
// its response body.
type ApiMethod struct {
	Path     string
	JSONPath string
}

// Config is one provider's configuration, loaded from the `providers` map
// in the TOML config file (spec §6).
type Config struct {
	Tag       string
	APIHost   string
	APIPrefix string

	LoginAPI    ApiMethod
	GetSubAPI   ApiMethod
	ResetSubAPI ApiMethod
	SubLogsAPI  *ApiMethod

	Headers   map[string]string
	RawSubURL string
	UniSubURL string

	Username string
	Password string
}

func (c Config) endpoint(m ApiMethod) string {
	return c.APIHost + c.APIPrefix + m.Path
}
