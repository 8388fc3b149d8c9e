// Package version carries build-time version stamps for the papacore binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Stamped with -ldflags "-X github.com/FrBosquet/papacore/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// InitBinaryVersion fills unstamped values from the embedded module build
// info, so `go install` builds still report something useful.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "none" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}

// String renders the version line printed by `papacore version`.
func String() string {
	return fmt.Sprintf("papacore %s (commit: %s, built: %s)", Version, Commit, Date)
}
