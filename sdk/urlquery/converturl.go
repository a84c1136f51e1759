package urlquery

import (
	"strconv"

	"github.com/BppleMan/convertor/sdk/codec"
)

// PolicyQuery is the bracket-notation policy sub-object the rule-provider
// endpoint accepts: policy[name], policy[option], policy[is_subscription].
type PolicyQuery struct {
	Name           string
	Option         *string
	IsSubscription *bool
}

// ConvertorQuery is the client-request query, still carrying encrypted
// fields verbatim — callers decrypt with the shared secret once it is
// known to be valid (§4.H "Parsing a query").
type ConvertorQuery struct {
	Server    string
	Interval  *uint64
	Strict    *bool
	EncSubURL string
	Policy    *PolicyQuery
	EncSecret string
}

// ParseConvertorQuery extracts the recognized keys from a decoded Query.
// Unrecognized keys are ignored, matching a permissive request reader.
func ParseConvertorQuery(q Query) (ConvertorQuery, error) {
	var out ConvertorQuery

	if v, ok := q.Get("interval"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return ConvertorQuery{}, &RequestError{Kind: RequestBadInt, Key: "interval"}
		}
		out.Interval = &n
	}
	if v, ok := q.Get("strict"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return ConvertorQuery{}, &RequestError{Kind: RequestBadBool, Key: "strict"}
		}
		out.Strict = &b
	}
	if v, ok := q.Get("sub_url"); ok {
		out.EncSubURL = v
	}
	if v, ok := q.Get("secret"); ok {
		out.EncSecret = v
	}

	name, hasName := q.Get("policy[name]")
	option, hasOption := q.Get("policy[option]")
	isSub, hasIsSub := q.Get("policy[is_subscription]")
	if hasName || hasOption || hasIsSub {
		p := &PolicyQuery{Name: name}
		if hasOption {
			p.Option = &option
		}
		if hasIsSub {
			b, err := strconv.ParseBool(isSub)
			if err != nil {
				return ConvertorQuery{}, &RequestError{Kind: RequestBadBool, Key: "policy[is_subscription]"}
			}
			p.IsSubscription = &b
		}
		out.Policy = p
	}

	return out, nil
}

// CheckForProfile validates the keys required by /profile and /raw-profile
// (§4.H): strict must be present.
func (q ConvertorQuery) CheckForProfile() error {
	if q.Strict == nil {
		return &RequestError{Kind: RequestMissingKey, Key: "strict"}
	}
	return nil
}

// CheckForRuleProvider validates the keys required by /rule-provider
// (§4.H): policy[name] and policy[is_subscription] must be present.
func (q ConvertorQuery) CheckForRuleProvider() error {
	if q.Policy == nil || q.Policy.Name == "" {
		return &RequestError{Kind: RequestMissingKey, Key: "policy[name]"}
	}
	if q.Policy.IsSubscription == nil {
		return &RequestError{Kind: RequestMissingKey, Key: "policy[is_subscription]"}
	}
	return nil
}

// CheckForSubLogs validates the key required by /sub-logs (§4.H): secret
// must be present, and decrypting it with the shared secret must yield the
// shared secret itself; anything else is a QueryError (401).
func (q ConvertorQuery) CheckForSubLogs(secret string) error {
	if q.EncSecret == "" {
		return &RequestError{Kind: RequestMissingKey, Key: "secret"}
	}
	plain, err := codec.Decrypt([]byte(secret), q.EncSecret)
	if err != nil {
		return &QueryError{Kind: QuerySecretMismatch, Err: err}
	}
	if plain != secret {
		return &QueryError{Kind: QuerySecretMismatch}
	}
	return nil
}

// DecryptSubURL decrypts the sub_url field under the shared secret.
func (q ConvertorQuery) DecryptSubURL(secret string) (string, error) {
	plain, err := codec.Decrypt([]byte(secret), q.EncSubURL)
	if err != nil {
		return "", &QueryError{Kind: QueryDecryptFailed, Err: err}
	}
	return plain, nil
}

// AsQuery renders q back to its canonical ordered form — the form used by
// the round-trip law in §8 (parse_query(encode_query(q)) == q, modulo
// unused optional fields).
func (q ConvertorQuery) AsQuery() Query {
	var out Query
	if q.Interval != nil {
		out = out.Set("interval", strconv.FormatUint(*q.Interval, 10))
	}
	if q.Strict != nil {
		out = out.Set("strict", strconv.FormatBool(*q.Strict))
	}
	if q.EncSubURL != "" {
		out = out.Set("sub_url", q.EncSubURL)
	}
	if q.Policy != nil {
		out = out.Set("policy[name]", q.Policy.Name)
		if q.Policy.Option != nil {
			out = out.Set("policy[option]", *q.Policy.Option)
		}
		if q.Policy.IsSubscription != nil {
			out = out.Set("policy[is_subscription]", strconv.FormatBool(*q.Policy.IsSubscription))
		}
	}
	if q.EncSecret != "" {
		out = out.Set("secret", q.EncSecret)
	}
	return out
}
