// Package version reports the titantest release.
package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var versionContent string

// override is set at link time by release builds:
//
//	go build -ldflags "-X github.com/ShayCichocki/titantest/internal/version.override=1.2.3"
var override string

// Get returns the current version, with whitespace trimmed
func Get() string {
	if override != "" {
		return override
	}
	return strings.TrimSpace(versionContent)
}
