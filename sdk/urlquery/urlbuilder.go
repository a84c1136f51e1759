package urlquery

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BppleMan/convertor/sdk/codec"
	"github.com/BppleMan/convertor/sdk/profile"
)

// UrlBuilder is the immutable value all five URL variants derive from
// (§3 "UrlBuilder"). Equality over UrlBuilder defines the profile-cache key.
type UrlBuilder struct {
	Secret    string
	EncSecret string
	Client    string
	Provider  string
	Server    string
	RawSubURL string
	EncSubURL string
	Interval  uint64
	Strict    bool
}

// NewUrlBuilder computes the encrypted secret and encrypted raw-subscription
// URL once, at construction (§9 open question: UrlBuilder carries the full
// field union rather than having the caller supply the encrypted forms).
// Each call encrypts with a fresh nonce, so two builders for the same inputs
// carry different EncSecret and EncSubURL values.
func NewUrlBuilder(secret, client, provider, server, rawSubURL string, interval uint64, strict bool) (*UrlBuilder, error) {
	encSecret, err := codec.Encrypt([]byte(secret), secret)
	if err != nil {
		return nil, &UrlBuilderError{Reason: "encrypting secret: " + err.Error()}
	}
	encSubURL, err := codec.Encrypt([]byte(secret), rawSubURL)
	if err != nil {
		return nil, &UrlBuilderError{Reason: "encrypting sub url: " + err.Error()}
	}
	return &UrlBuilder{
		Secret:    secret,
		EncSecret: encSecret,
		Client:    client,
		Provider:  provider,
		Server:    strings.TrimRight(server, "/"),
		RawSubURL: rawSubURL,
		EncSubURL: encSubURL,
		Interval:  interval,
		Strict:    strict,
	}, nil
}

// IntervalDuration reports Interval (seconds) as a time.Duration, for
// callers building a RuleProvider's refresh interval.
func (u *UrlBuilder) IntervalDuration() time.Duration {
	return time.Duration(u.Interval) * time.Second
}

func (u *UrlBuilder) intervalStrictQuery() Query {
	return Query{
		{Key: "interval", Value: strconv.FormatUint(u.Interval, 10)},
		{Key: "strict", Value: strconv.FormatBool(u.Strict)},
		{Key: "sub_url", Value: u.EncSubURL},
	}
}

func (u *UrlBuilder) path(format string, args ...any) string {
	return u.Server + fmt.Sprintf(format, args...)
}

// RawURL reproduces the original subscription URL's path and query, with
// flag=<client> appended so the provider knows which client is fetching
// (§4.H "raw" variant).
func (u *UrlBuilder) RawURL() (string, error) {
	parsed, err := url.Parse(u.RawSubURL)
	if err != nil {
		return "", &UrlBuilderError{Reason: "invalid raw subscription url: " + err.Error()}
	}
	q, err := Decode(parsed.RawQuery)
	if err != nil {
		return "", &UrlBuilderError{Reason: "invalid raw subscription query: " + err.Error()}
	}
	q = q.Set("flag", u.Client)

	out := *parsed
	out.RawQuery = Encode(q)
	return out.String(), nil
}

// RawProfileURL builds the raw-profile variant (§4.H).
func (u *UrlBuilder) RawProfileURL() string {
	query := u.intervalStrictQuery()
	return u.path("/raw-profile/%s/%s?%s", u.Client, u.Provider, Encode(query))
}

// ProfileURL builds the profile variant (§4.H).
func (u *UrlBuilder) ProfileURL() string {
	query := u.intervalStrictQuery()
	return u.path("/profile/%s/%s?%s", u.Client, u.Provider, Encode(query))
}

// RuleProviderURL builds the rule-provider variant for one policy (§4.H).
func (u *UrlBuilder) RuleProviderURL(policy profile.Policy) string {
	query := Query{
		{Key: "interval", Value: strconv.FormatUint(u.Interval, 10)},
		{Key: "policy[name]", Value: policy.Name},
	}
	if policy.Option != nil {
		query = query.Set("policy[option]", *policy.Option)
	}
	query = query.Set("policy[is_subscription]", strconv.FormatBool(policy.IsSubscription))
	query = query.Set("sub_url", u.EncSubURL)
	return u.path("/rule-provider/%s/%s?%s", u.Client, u.Provider, Encode(query))
}

// SubLogsURL builds the sub-logs variant (§4.H). The encrypted secret
// serves as a capability token: only the server that issued it can
// recognize it on the way back in.
func (u *UrlBuilder) SubLogsURL() string {
	query := Query{{Key: "secret", Value: u.EncSecret}}
	return u.path("/sub-logs/%s?%s", u.Provider, Encode(query))
}
