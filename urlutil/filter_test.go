package urlutil

import "testing"

func TestIsHTTPScheme(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   bool
	}{
		{"http", "http://example.com", true},
		{"https", "https://example.com/data.geojson", true},
		{"uppercase", "HTTPS://example.com", true},
		{"ftp", "ftp://example.com/file", false},
		{"mailto", "mailto:someone@example.com", false},
		{"empty", "", false},
		{"unparseable", "://bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHTTPScheme(tt.rawURL); got != tt.want {
				t.Errorf("IsHTTPScheme(%q) = %v, want %v", tt.rawURL, got, tt.want)
			}
		})
	}
}

func TestUpgradeToHTTPS(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   string
		wantOK bool
	}{
		{"plain http", "http://example.com/a", "https://example.com/a", true},
		{"only first occurrence", "http://example.com/?next=http://other", "https://example.com/?next=http://other", true},
		{"uppercase scheme", "HTTP://example.com", "https://example.com", true},
		{"already https", "https://example.com", "https://example.com", false},
		{"ftp", "ftp://example.com", "ftp://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := UpgradeToHTTPS(tt.rawURL)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("UpgradeToHTTPS(%q) = (%q, %v), want (%q, %v)", tt.rawURL, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMatchSuffix(t *testing.T) {
	suffixes := []string{"csv", "zip", "polygons"}

	tests := []struct {
		name   string
		rawURL string
		want   string
		wantOK bool
	}{
		{"zip", "https://example.com/addresses.zip", "zip", true},
		{"uppercase csv", "http://example.com/DATA.CSV", "csv", true},
		{"polygons literal", "https://gis.example.com/layers/polygons", "polygons", true},
		{"mixed case polygons", "https://gis.example.com/Polygons", "polygons", true},
		{"geojson", "https://example.com/addresses.geojson", "", false},
		{"suffix in middle", "https://example.com/zip/file.json", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchSuffix(tt.rawURL, suffixes)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("MatchSuffix(%q) = (%q, %v), want (%q, %v)", tt.rawURL, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIsHTTPSAndIsPlainHTTP(t *testing.T) {
	if !IsHTTPS("https://example.com") || IsHTTPS("http://example.com") {
		t.Error("IsHTTPS misclassified scheme")
	}
	if !IsPlainHTTP("http://example.com") || IsPlainHTTP("https://example.com") {
		t.Error("IsPlainHTTP misclassified scheme")
	}
	if IsHTTPS("ftp://example.com") || IsPlainHTTP("ftp://example.com") {
		t.Error("ftp must be neither http nor https")
	}
}
