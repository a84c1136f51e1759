package profile

// MiscSection is a bracketed section the parser does not otherwise
// recognize; its lines are preserved verbatim and re-emitted in the order
// they were first seen (§4.D).
type MiscSection struct {
	Name  string
	Lines []string
}

// SurgeProfile is the S-format profile model: a managed-config header,
// verbatim general/URL-rewrite/misc sections, and the structured proxy,
// proxy-group, and rule lists.
type SurgeProfile struct {
	Base

	Header     string
	General    []string
	URLRewrite []string
	Misc       []MiscSection
}

var _ Profile = (*SurgeProfile)(nil)

func (p *SurgeProfile) Kind() Kind { return KindSurge }

// NewSurgeProfile builds an empty SurgeProfile ready for the parser to
// populate.
func NewSurgeProfile() *SurgeProfile {
	return &SurgeProfile{Base: Base{PolicyOfRulesMap: map[string][]ProviderRule{}}}
}
