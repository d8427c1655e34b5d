// Package version holds the tool's own release metadata, injected at
// build time via -ldflags.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// These variables are injected at build time via -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String returns a human-readable version string.
func String() string {
	return fmt.Sprintf("dofigen %s (%s, %s)", Version, Commit, BuildDate)
}

// Parsed validates Version as a semantic version, when it isn't the
// development placeholder.
func Parsed() (*semver.Version, error) {
	if Version == "dev" {
		return nil, fmt.Errorf("version: running an unreleased build (%s), no semantic version to parse", Version)
	}
	return semver.NewVersion(Version)
}
