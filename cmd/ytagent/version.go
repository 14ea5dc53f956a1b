package main

import "runtime/debug"

// resolveVersion prefers the ldflags version and falls back to the module
// version recorded by `go install module@version`.
func resolveVersion(version string, info *debug.BuildInfo) string {
	if version != "" && version != "dev" {
		return version
	}
	if info != nil && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
