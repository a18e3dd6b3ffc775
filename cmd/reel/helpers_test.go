package main

import "testing"

func TestKindDisplayName(t *testing.T) {
	cases := []struct {
		kind string
		want string
	}{
		{"music_analysis_agent", "Music Expert"},
		{"asset_bin", "Assets"},
		{"timeline", "Timeline"},
		{"mystery_widget", "Mystery Widget"},
	}
	for _, tc := range cases {
		if got := kindDisplayName(tc.kind); got != tc.want {
			t.Errorf("kindDisplayName(%q) = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("shortID = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("a long clip label here", 10); got != "a long ..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}
