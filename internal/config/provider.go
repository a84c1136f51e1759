package config

import "github.com/BppleMan/convertor/sdk/providerapi"

// ToProviderAPIConfig adapts one TOML provider entry to the shape
// sdk/providerapi.NewProvider expects, tagging it with its provider name so
// providerapi's error messages can name the offending provider.
func (p ProviderConfig) ToProviderAPIConfig(tag string) providerapi.Config {
	cfg := providerapi.Config{
		Tag:       tag,
		APIHost:   p.APIHost,
		APIPrefix: p.APIPrefix,
		LoginAPI:  providerapi.ApiMethod{Path: p.Login.Path, JSONPath: p.Login.JSONPath},
		GetSubAPI: providerapi.ApiMethod{Path: p.GetSub.Path, JSONPath: p.GetSub.JSONPath},
		ResetSubAPI: providerapi.ApiMethod{
			Path:     p.ResetSub.Path,
			JSONPath: p.ResetSub.JSONPath,
		},
		Headers:   p.Headers,
		RawSubURL: p.RawSubURL,
		UniSubURL: p.UniSubURL,
		Username:  p.Username,
		Password:  p.Password,
	}
	if p.SubLogs != nil {
		cfg.SubLogsAPI = &providerapi.ApiMethod{Path: p.SubLogs.Path, JSONPath: p.SubLogs.JSONPath}
	}
	return cfg
}
