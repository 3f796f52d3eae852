// Package version carries the build identification printed by the CLI.
package version

import "runtime/debug"

// Version is the release version, stamped at link time. Development builds
// keep the default.
var Version = "dev"

// Commit is the VCS revision, stamped at link time or recovered from the
// embedded build info.
var Commit = ""

// String returns a printable "version (commit)" build identifier.
func String() string {
	commit := Commit
	if commit == "" {
		commit = embeddedRevision()
	}

	if commit == "" {
		return Version
	}

	if len(commit) > 12 {
		commit = commit[:12]
	}

	return Version + " (" + commit + ")"
}

func embeddedRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}

	return ""
}
