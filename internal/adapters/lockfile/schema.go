package lockfile

// cargoLock represents the structure of a Cargo.lock file.
type cargoLock struct {
	Version  int            `toml:"version"`
	Packages []packageEntry `toml:"package"`
}

// packageEntry represents one [[package]] table of a Cargo.lock file.
type packageEntry struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Checksum     string   `toml:"checksum"`
	Dependencies []string `toml:"dependencies"`
}

// dependencyRef is a parsed entry of a package's dependencies list.
// Cargo writes "name", "name version" or "name version (source)".
type dependencyRef struct {
	Name    string
	Version string
	Source  string
}
