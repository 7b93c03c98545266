package buildinfo

import (
	"strings"
	"testing"
)

func TestShortPrefersVersion(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	Version, Commit = "dev", "unknown"
	if got := Short(); got != "dev" {
		t.Fatalf("got %q", got)
	}
	Commit = "abc123"
	if got := Short(); got != "abc123" {
		t.Fatalf("got %q", got)
	}
	Version = "v0.2.0"
	if got := Short(); got != "v0.2.0" {
		t.Fatalf("got %q", got)
	}
	if s := String(); !strings.Contains(s, "v0.2.0") || !strings.Contains(s, "abc123") {
		t.Fatalf("got %q", s)
	}
}
