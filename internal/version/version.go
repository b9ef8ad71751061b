// Package version holds the build version, overridable with
// -ldflags "-X nupop/internal/version.Version=...".
package version

var Version = "dev"
