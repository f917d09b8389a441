package ai

import (
	"strings"
	"testing"
)

func TestBuildInstructionPolicyLanguageClause(t *testing.T) {
	cases := []struct {
		tag  string
		want string
	}{
		{"kk", "қазақ тілінде"},
		{"kazakh", "қазақ тілінде"},
		{"ru", "ТОЛЬКО на русском"},
		{"russian", "ТОЛЬКО на русском"},
		{"en", "ONLY in English"},
		{"english", "ONLY in English"},
		{"", "ONLY in English"},
		// Matching is exact, not case-insensitive or locale-aware.
		{"KK", "ONLY in English"},
		{"kk-KZ", "ONLY in English"},
	}

	for _, tc := range cases {
		got := BuildInstructionPolicy(tc.tag)
		if !strings.Contains(got, tc.want) {
			t.Fatalf("tag %q: policy missing %q", tc.tag, tc.want)
		}
		if !strings.Contains(got, "JSON array of messages") {
			t.Fatalf("tag %q: policy missing response-shape contract", tc.tag)
		}
	}
}
