// Package buildinfo exposes version metadata stamped in at build time.
package buildinfo

import "strings"

// Injected via -ldflags on release builds.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Summary renders the version together with any commit and build date.
func Summary() string {
	version := Version
	if version == "" {
		version = "dev"
	}
	var extra []string
	if Commit != "" {
		extra = append(extra, Commit)
	}
	if Date != "" {
		extra = append(extra, Date)
	}
	if len(extra) == 0 {
		return version
	}
	return version + " (" + strings.Join(extra, " ") + ")"
}
