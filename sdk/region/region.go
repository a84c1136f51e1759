// Package region implements the static region table used to group proxies
// by geography during optimization (spec §4.C).
package region

import "strings"

// Region is one entry in the static table: a 2-letter code, English and
// Chinese names, and an emoji-flag icon.
type Region struct {
	Code string
	En   string
	Cn   string
	Icon string
}

// PolicyName renders the region's display name used as a proxy-group name
// and rule-provider policy name: "<icon> <chinese>".
func (r Region) PolicyName() string {
	return r.Icon + " " + r.Cn
}

// Table is the static, ordered region list. Order is stable across runs and
// determines tie-breaking when a proxy name could plausibly match more than
// one region's code.
var Table = []Region{
	{Code: "HK", En: "Hong Kong", Cn: "香港", Icon: "🇭🇰"},
	{Code: "TW", En: "Taiwan", Cn: "台湾", Icon: "🇹🇼"},
	{Code: "JP", En: "Japan", Cn: "日本", Icon: "🇯🇵"},
	{Code: "KR", En: "Korea", Cn: "韩国", Icon: "🇰🇷"},
	{Code: "SG", En: "Singapore", Cn: "新加坡", Icon: "🇸🇬"},
	{Code: "US", En: "United States", Cn: "美国", Icon: "🇺🇸"},
	{Code: "CA", En: "Canada", Cn: "加拿大", Icon: "🇨🇦"},
	{Code: "GB", En: "United Kingdom", Cn: "英国", Icon: "🇬🇧"},
	{Code: "DE", En: "Germany", Cn: "德国", Icon: "🇩🇪"},
	{Code: "FR", En: "France", Cn: "法国", Icon: "🇫🇷"},
	{Code: "NL", En: "Netherlands", Cn: "荷兰", Icon: "🇳🇱"},
	{Code: "IE", En: "Ireland", Cn: "爱尔兰", Icon: "🇮🇪"},
	{Code: "AU", En: "Australia", Cn: "澳大利亚", Icon: "🇦🇺"},
	{Code: "IN", En: "India", Cn: "印度", Icon: "🇮🇳"},
	{Code: "TR", En: "Turkey", Cn: "土耳其", Icon: "🇹🇷"},
	{Code: "RU", En: "Russia", Cn: "俄罗斯", Icon: "🇷🇺"},
	{Code: "BR", En: "Brazil", Cn: "巴西", Icon: "🇧🇷"},
	{Code: "AR", En: "Argentina", Cn: "阿根廷", Icon: "🇦🇷"},
	{Code: "ZA", En: "South Africa", Cn: "南非", Icon: "🇿🇦"},
	{Code: "PH", En: "Philippines", Cn: "菲律宾", Icon: "🇵🇭"},
	{Code: "MY", En: "Malaysia", Cn: "马来西亚", Icon: "🇲🇾"},
	{Code: "VN", En: "Vietnam", Cn: "越南", Icon: "🇻🇳"},
	{Code: "TH", En: "Thailand", Cn: "泰国", Icon: "🇹🇭"},
	{Code: "AE", En: "United Arab Emirates", Cn: "阿联酋", Icon: "🇦🇪"},
}

// variants returns every substring pattern that should be recognized as
// referring to r, per §4.C: the code, lowercased code, lowercased/uppercased
// English name, English name with spaces replaced by "-", "_", or removed,
// and the Chinese name.
func variants(r Region) []string {
	return []string{
		r.Code,
		strings.ToLower(r.Code),
		strings.ToLower(r.En),
		strings.ToUpper(r.En),
		strings.ReplaceAll(r.En, " ", "-"),
		strings.ReplaceAll(r.En, " ", "_"),
		strings.ReplaceAll(r.En, " ", ""),
		r.Cn,
	}
}

// Detect returns the first region in Table for which any recognized
// variant occurs as a substring of pattern, or false if none match.
// Detection is case-sensitive apart from the explicit case-folded variants
// enumerated by variants().
func Detect(pattern string) (Region, bool) {
	for _, r := range Table {
		for _, v := range variants(r) {
			if v != "" && strings.Contains(pattern, v) {
				return r, true
			}
		}
	}
	return Region{}, false
}
