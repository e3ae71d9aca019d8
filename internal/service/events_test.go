package service

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPreviewTruncation(t *testing.T) {
	tests := []struct {
		name string
		body string
		max  int
		want string
	}{
		{name: "short body unchanged", body: "pothole on main road", max: 120, want: "pothole on main road"},
		{name: "exact length unchanged", body: "abcde", max: 5, want: "abcde"},
		{name: "long ascii gets ellipsis", body: strings.Repeat("a", 10), max: 8, want: "aaaaa..."},
		{name: "tiny max drops ellipsis", body: "abcdef", max: 2, want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preview(tt.body, tt.max)
			if got != tt.want {
				t.Fatalf("preview(%q, %d) = %q, want %q", tt.body, tt.max, got, tt.want)
			}
		})
	}
}

func TestPreviewNeverSplitsRunes(t *testing.T) {
	// Each rune below is multi-byte, so naive byte slicing would land
	// mid-rune for most cut points.
	body := strings.Repeat("é", 40) + strings.Repeat("漢", 40)

	for max := 1; max <= len(body); max++ {
		got := preview(body, max)
		if !utf8.ValidString(got) {
			t.Fatalf("preview(max=%d) produced invalid UTF-8: %q", max, got)
		}
		if len(got) > max {
			t.Fatalf("preview(max=%d) returned %d bytes", max, len(got))
		}
	}
}
