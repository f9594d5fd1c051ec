package trellis

import (
	"fmt"
	"runtime"
)

// Version information
const (
	Version      = "0.3.0"
	APIVersion   = "v1"
	MinGoVersion = "1.24"
)

// BuildInfo contains build information
var BuildInfo = struct {
	Version    string
	APIVersion string
	GitCommit  string
	BuildDate  string
	GoVersion  string
}{
	Version:    Version,
	APIVersion: APIVersion,
	GoVersion:  runtime.Version(),
}

// SetBuildInfo is called by the build process
func SetBuildInfo(commit, date, goVersion string) {
	BuildInfo.GitCommit = commit
	BuildInfo.BuildDate = date
	if goVersion != "" {
		BuildInfo.GoVersion = goVersion
	}
}

// VersionInfo returns formatted version information
func VersionInfo() string {
	return fmt.Sprintf("Trellis %s (API %s)", BuildInfo.Version, BuildInfo.APIVersion)
}

// FullVersionInfo returns detailed version information
func FullVersionInfo() string {
	info := fmt.Sprintf("Trellis %s\n", BuildInfo.Version)
	info += fmt.Sprintf("  API version: %s\n", BuildInfo.APIVersion)
	if BuildInfo.GitCommit != "" {
		info += fmt.Sprintf("  Git commit:  %s\n", BuildInfo.GitCommit)
	}
	if BuildInfo.BuildDate != "" {
		info += fmt.Sprintf("  Built:       %s\n", BuildInfo.BuildDate)
	}
	info += fmt.Sprintf("  Go version:  %s\n", BuildInfo.GoVersion)
	return info
}
