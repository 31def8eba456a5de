// Package version provides build version information.
// The version can be set at build time using ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/mtgjson-decks/internal/version.Version=5.2.1"
package version

import "time"

// Version is the build version. It defaults to "dev" and can be
// overridden at build time using ldflags.
var Version = "dev"

// GetVersion returns the current build version.
func GetVersion() string {
	return Version
}

// BuildStamp returns the version suffixed with the given date in the
// "<version>+<YYYYMMDD>" form written into build metadata.
func BuildStamp(t time.Time) string {
	return Version + "+" + t.Format("20060102")
}
