// Package urlquery implements the canonical query codec and the five
// UrlBuilder-derived URL variants described in spec §4.H.
package urlquery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Pair is one key-value entry in a canonical query. Order is significant:
// a canonical query is an ORDERED list, not a map (§4.H).
type Pair struct {
	Key   string
	Value string
}

// Query is an ordered, possibly-repeating list of key-value pairs.
type Query []Pair

// Get returns the first value for key, matching insertion order.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Set appends a key-value pair; callers control duplicate handling, since
// bracketed keys like policy[name] intentionally look like siblings, not
// duplicates of a single logical key.
func (q Query) Set(key, value string) Query {
	return append(q, Pair{Key: key, Value: value})
}

// isControl reports whether b is in the percent-encoding crate's CONTROLS
// set: the ASCII C0 controls plus DEL. Every other byte, including space,
// '&', and '=', is left literal — a deliberate narrow profile, not a
// generic query-string escaper.
func isControl(b byte) bool {
	return b <= 0x1F || b == 0x7F
}

// encodeComponent percent-encodes only CONTROLS-set bytes in s.
func encodeComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isControl(c) {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// decodeComponent reverses encodeComponent, percent-decoding any %XX
// escape regardless of which byte it names.
func decodeComponent(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("urlquery: truncated percent-escape at offset %d", i)
		}
		n, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("urlquery: invalid percent-escape %q: %w", s[i:i+3], err)
		}
		b.WriteByte(byte(n))
		i += 2
	}
	return b.String(), nil
}

// Encode renders q as "k1=v1&k2=v2&…", percent-encoding each key and value
// under the CONTROLS-only profile.
func Encode(q Query) string {
	parts := make([]string, len(q))
	for i, p := range q {
		parts[i] = encodeComponent(p.Key) + "=" + encodeComponent(p.Value)
	}
	return strings.Join(parts, "&")
}

// ErrEmptyKey is returned by Decode when a "=value" segment has no key.
var ErrEmptyKey = errors.New("urlquery: empty key in query segment")

// Decode parses s into a Query, splitting on "&" then on the first "=" of
// each segment. A segment with no "=" is treated as a key with an empty
// value, mirroring a permissive query-string reader.
func Decode(s string) (Query, error) {
	if s == "" {
		return nil, nil
	}
	segments := strings.Split(s, "&")
	q := make(Query, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		k, v, _ := strings.Cut(seg, "=")
		key, err := decodeComponent(k)
		if err != nil {
			return nil, err
		}
		if key == "" {
			return nil, ErrEmptyKey
		}
		val, err := decodeComponent(v)
		if err != nil {
			return nil, err
		}
		q = append(q, Pair{Key: key, Value: val})
	}
	return q, nil
}
