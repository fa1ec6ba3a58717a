package models

import "fmt"

// DependencyPolicy decides what a failed dependency install does to a run.
type DependencyPolicy string

const (
	// PolicyFailFast aborts the run when any install step fails
	PolicyFailFast DependencyPolicy = "fail-fast"

	// PolicyBestEffort logs install failures and lets the packager surface
	// whatever is actually missing
	PolicyBestEffort DependencyPolicy = "best-effort"
)

// IsValid checks if the policy is known
func (p DependencyPolicy) IsValid() bool {
	switch p {
	case PolicyFailFast, PolicyBestEffort:
		return true
	default:
		return false
	}
}

// String returns the string representation of DependencyPolicy
func (p DependencyPolicy) String() string {
	return string(p)
}

// ParseDependencyPolicy parses a string into a DependencyPolicy
func ParseDependencyPolicy(s string) (DependencyPolicy, error) {
	p := DependencyPolicy(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid dependency policy: %s (must be fail-fast or best-effort)", s)
	}
	return p, nil
}
