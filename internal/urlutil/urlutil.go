package urlutil

import (
	"net/url"
	"strings"
)

// Normalize canonicalizes a URL for deduplication.
//
// Design decision: We normalize URLs because:
//  1. The same page can have different URL representations
//  2. Fragments (#anchor) never change the fetched content
//  3. Visited tracking must key on one canonical form
//
// Normalization is idempotent: Normalize(Normalize(u)) == Normalize(u).
// Unparseable input is returned unchanged so callers can still use it as
// a map key without special-casing.
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	// Remove fragment
	u.Fragment = ""

	// Normalize scheme and host to lowercase
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	// Empty path and "/" are equivalent at the root
	if u.Host != "" && u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// Resolve resolves href against base and returns the absolute URL.
// Scheme-restricted hrefs (javascript:, mailto:, tel:, data:) and bare
// fragments resolve to an empty string, signalling "not a crawlable link".
func Resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(href, prefix) {
			return ""
		}
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return baseURL.ResolveReference(ref).String()
}
