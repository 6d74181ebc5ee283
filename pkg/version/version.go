// Package version exposes build version information.
package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// These are overridden at build time via -ldflags.
//
//nolint:gochecknoglobals // Populated by the linker.
var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the version string.
func GetVersion() string {
	return version
}

// GetGitCommit returns the git commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build date.
func GetBuildDate() string {
	return buildDate
}

// IsRelease reports whether the version is a valid semantic version without a
// prerelease suffix.
func IsRelease() bool {
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return false
	}
	return v.Prerelease() == ""
}

// UserAgent returns the User-Agent sent to Open Library.
func UserAgent() string {
	return "wantlist/" + version + " (+https://github.com/shelfwatch/wantlist)"
}
