// Package version exposes the build version stamped in at link time.
package version

// version is overridden by the linker via
// -X github.com/phabreview/phabreview/internal/version.version=<tag>.
var version = "dev"

// Value returns the version string for this build.
func Value() string {
	return version
}
