package urlutil

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		wantErr bool
	}{
		{"https", "https://example.com/data.json", false},
		{"http with port", "http://example.com:8080/x", false},
		{"ftp is still a valid shape", "ftp://example.com/file", false},
		{"no scheme", "example.com/data", true},
		{"no host", "http://", true},
		{"relative path", "/data/file.csv", true},
		{"mailto has no host", "mailto:someone@example.com", true},
		{"empty", "", true},
		{"parse error", "http://[::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.rawURL)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.rawURL, err, tt.wantErr)
			}
		})
	}
}

func TestValidate_MissingHostSentinel(t *testing.T) {
	if err := Validate("http://"); !errors.Is(err, ErrMissingSchemeOrHost) {
		t.Errorf("expected ErrMissingSchemeOrHost, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"lowercase host", "https://EXAMPLE.com/Path", "https://example.com/Path", false},
		{"strip fragment", "https://example.com/page#top", "https://example.com/page", false},
		{"strip trailing slash", "https://example.com/dir/", "https://example.com/dir", false},
		{"keep root slash", "https://example.com/", "https://example.com/", false},
		{"keep query", "https://example.com/q?a=1", "https://example.com/q?a=1", false},
		{"empty", "", "", true},
		{"missing host", "data.csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
