package domain

import (
	"path/filepath"
	"time"
)

const (
	// DefaultLockfileName is the name of the lockfile looked up in the working directory.
	DefaultLockfileName = "Cargo.lock"

	// DefaultRegistryURL is the crates.io endpoint serving per-crate metadata.
	DefaultRegistryURL = "https://crates.io/api/v1/crates"

	// DefaultUserAgent identifies the crawler, as required by the crates.io crawler policy.
	DefaultUserAgent = "cargo-downgrade (https://github.com/obraunsdorf/cargo-downgrade)"

	// DefaultRequestInterval is the minimum spacing between two registry requests.
	DefaultRequestInterval = time.Second

	// DefaultRequestTimeout bounds a single registry request.
	DefaultRequestTimeout = 30 * time.Second

	// DiagnosticDateLayout is the date layout used in version diagnostics.
	DiagnosticDateLayout = "2006-01-02"

	// NoKnownVersions is reported when a crate has no unyanked version at all.
	NoKnownVersions = "no known versions at all"
)

// DefaultLockfilePath returns the lockfile path inside the given working directory.
func DefaultLockfilePath(cwd string) string {
	return filepath.Join(cwd, DefaultLockfileName)
}
