package domain

import (
	"fmt"
	"time"
)

// VersionRecord is one published release of a crate as reported by the registry.
type VersionRecord struct {
	// Num is the semantic version string (e.g., "1.0.123").
	Num string

	// PublishedAt is the time the version was first published (crates.io
	// created_at). updated_at is not used since yanking or editing a release
	// moves it forward.
	PublishedAt time.Time

	// Yanked marks releases withdrawn from new use.
	Yanked bool
}

// ResolvedPackage pairs a crate name with the version chosen for the cutoff date.
type ResolvedPackage struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// String renders the package as a lockfile-style line, e.g. serde = "1.0.123".
func (p ResolvedPackage) String() string {
	return fmt.Sprintf("%s = %q", p.Name, p.Version)
}

// Pin renders the package with an exact version requirement, e.g. serde = "=1.0.123".
func (p ResolvedPackage) Pin() string {
	return fmt.Sprintf("%s = %q", p.Name, "="+p.Version)
}
