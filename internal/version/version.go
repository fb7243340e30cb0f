// Package version reports the build version of the aprilaire binaries.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/aprilaire/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/aprilaire/internal/version.Commit=abc1234"
//
// Unset values are taken from the VCS stamp in the build info, then fall back
// to a dev version and "unknown".
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			v, c := fromBuildInfo(info)
			if Version == "" {
				Version = v
			}
			if Commit == "" {
				Commit = c
			}
		}
	}

	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo derives a dev version from the commit date and a short commit
// hash, marked -dirty for modified trees. Either may be empty.
func fromBuildInfo(info *debug.BuildInfo) (version, commit string) {
	var revision, modified, stamp string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			stamp = s.Value
		}
	}

	if revision != "" {
		commit = revision[:min(len(revision), 7)]
		if modified == "true" {
			commit += "-dirty"
		}
	}
	if t, err := time.Parse(time.RFC3339, stamp); err == nil {
		version = "dev-" + t.Format("20060102")
	}
	return version, commit
}

// String formats the version line printed by the version commands.
func String(program string) string {
	return fmt.Sprintf("%s %s (commit: %s)", program, Version, Commit)
}
