// Package misc keeps build identification helpers shared by all binaries.
package misc

import "runtime/debug"

// Set at build time with -ldflags "-X styliner/misc.version=... -X styliner/misc.gitHash=...".
var (
	appName = "styliner"
	version = "development"
	gitHash = "unknown"
)

// GetAppName returns short program name used in logs, file names and reports.
func GetAppName() string {
	return appName
}

// GetVersion returns program version, falling back to module build info when
// the binary was built without ldflags.
func GetVersion() string {
	if version != "development" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return version
}

// GetGitHash returns git revision recorded at build time.
func GetGitHash() string {
	if gitHash != "unknown" {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return gitHash
}
