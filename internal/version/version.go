// Package version exposes build-time version metadata.
package version

// Build metadata, overridden at build time via -ldflags.
//
//nolint:gochecknoglobals // Populated by the linker.
var (
	// Version is the semantic version of the build.
	Version = "1.0.0"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// BuildTime is when the binary was built.
	BuildTime = "unknown"
)

// Short returns just the semantic version.
func Short() string {
	return Version
}

// Full returns the version with commit and build time.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}
