// ABOUTME: Tests for version constants
// ABOUTME: Ensures identification strings are usable in headers and mDNS TXT records
package version

import (
	"regexp"
	"strings"
	"testing"
)

func TestVersionIsSemver(t *testing.T) {
	if !regexp.MustCompile(`^\d+\.\d+\.\d+$`).MatchString(Version) {
		t.Errorf("expected semver version, got %q", Version)
	}
}

func TestIdentifiersDefined(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Version", Version},
		{"Product", Product},
		{"Manufacturer", Manufacturer},
	}

	for _, tt := range tests {
		if tt.value == "" {
			t.Errorf("%s should not be empty", tt.name)
		}
		// TXT record strings are limited to 255 bytes including the key
		if len(tt.value) > 100 {
			t.Errorf("%s is unreasonably long", tt.name)
		}
		if strings.ContainsAny(tt.value, " =\n") {
			t.Errorf("%s must not contain spaces, '=' or newlines: %q", tt.name, tt.value)
		}
	}
}
