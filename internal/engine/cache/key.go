package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// GenerateKey hashes the normalized parts into a hex SHA-256 key.
// Parts are trimmed and lower-cased so cosmetic differences share a key.
func GenerateKey(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sum := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(sum[:])
}

// KeyForURL returns the cache key for a GET request URL. Query parameters are
// sorted so "?a=1&b=2" and "?b=2&a=1" map to the same entry. The path keeps its
// case because Open Library user names are case sensitive.
func KeyForURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return GenerateKey("GET", rawURL)
	}

	query := u.Query()
	names := make([]string, 0, len(query))
	for name := range query {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(strings.ToLower(u.Host))
	b.WriteString(u.EscapedPath())
	for i, name := range names {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		values := query[name]
		sort.Strings(values)
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(strings.Join(values, ",")))
	}

	sum := sha256.Sum256([]byte("GET " + b.String()))
	return hex.EncodeToString(sum[:])
}
