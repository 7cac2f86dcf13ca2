// Package version exposes the build-time version string.
package version

// version is set at build time via -ldflags.
var version = "v0.0.0"

// Value returns the version stamped into the binary.
func Value() string {
	return version
}
