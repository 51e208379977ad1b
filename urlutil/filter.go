package urlutil

import (
	"net/url"
	"strings"
)

const (
	httpPrefix  = "http://"
	httpsPrefix = "https://"
)

// IsHTTPScheme returns true if the URL has an http or https scheme.
// Returns false for empty strings, non-HTTP schemes, or unparseable URLs.
func IsHTTPScheme(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}

// IsHTTPS reports whether rawURL starts with the https:// prefix (case-insensitive).
func IsHTTPS(rawURL string) bool {
	return hasPrefixFold(rawURL, httpsPrefix)
}

// IsPlainHTTP reports whether rawURL starts with the http:// prefix (case-insensitive).
func IsPlainHTTP(rawURL string) bool {
	return hasPrefixFold(rawURL, httpPrefix)
}

// UpgradeToHTTPS replaces the leading http:// of rawURL with https://.
// The rest of the URL is kept byte for byte. The second return value is
// false when rawURL is not a plain http URL.
func UpgradeToHTTPS(rawURL string) (string, bool) {
	if !IsPlainHTTP(rawURL) {
		return rawURL, false
	}
	return httpsPrefix + rawURL[len(httpPrefix):], true
}

// MatchSuffix returns the first suffix in suffixes that the lowercased URL ends with.
// Suffixes are compared literally, so "zip" matches both ".zip" and "/zip".
func MatchSuffix(rawURL string, suffixes []string) (string, bool) {
	lower := strings.ToLower(rawURL)
	for _, suffix := range suffixes {
		if suffix == "" {
			continue
		}
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			return suffix, true
		}
	}
	return "", false
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
