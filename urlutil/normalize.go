package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingSchemeOrHost is returned by Validate when a value parses but lacks
// either a scheme or a network location.
var ErrMissingSchemeOrHost = errors.New("URL must have both scheme and host")

// Validate checks that rawURL parses into a non-empty scheme and host.
func Validate(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL %q: %w", rawURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return ErrMissingSchemeOrHost
	}
	return nil
}

// Normalize takes a raw URL string and returns a normalized version.
// Normalization includes:
// - Lowercasing the scheme and host
// - Stripping fragments (#section)
// - Stripping trailing slashes (except for root path "/")
// - Preserving query parameters
//
// The result is only used as a comparison key; probes always use the raw URL.
func Normalize(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("cannot normalize empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("normalize URL %q: %w", rawURL, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", ErrMissingSchemeOrHost
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	if parsed.Path != "/" && strings.HasSuffix(parsed.Path, "/") {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String(), nil
}
