package python

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// ParseVersion extracts a canonical semver ("v3.11.4") from tool output such
// as "Python 3.11.4" or "6.3.0".
func ParseVersion(output string) (string, error) {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(output))
	if m == nil {
		return "", fmt.Errorf("no version number in %q", strings.TrimSpace(output))
	}

	patch := m[3]
	if patch == "" {
		patch = "0"
	}

	v := fmt.Sprintf("v%s.%s.%s", m[1], m[2], patch)
	if !semver.IsValid(v) {
		return "", fmt.Errorf("invalid version %s", v)
	}
	return v, nil
}

// AtLeast reports whether version is at least min. Both may omit the
// leading "v".
func AtLeast(version, min string) bool {
	return semver.Compare(canonical(version), canonical(min)) >= 0
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}
