package domain

import "go.trai.ch/zerr"

var (
	// ErrLockfileRead is returned when the lockfile cannot be located or opened.
	ErrLockfileRead = zerr.New("failed to read Cargo.lock")

	// ErrLockfileParse is returned when the lockfile contents are malformed.
	ErrLockfileParse = zerr.New("failed to parse Cargo.lock")

	// ErrUnknownDependency is returned when a lockfile package depends on a package that is not listed.
	ErrUnknownDependency = zerr.New("dependency refers to an unknown package")

	// ErrAmbiguousDependency is returned when a bare dependency name matches more than one package.
	ErrAmbiguousDependency = zerr.New("dependency name matches more than one package")

	// ErrNodeNotFound is returned when an edge references a node index outside the graph.
	ErrNodeNotFound = zerr.New("node not found in dependency graph")

	// ErrRegistryRequestFailed is returned when a request to the registry fails.
	ErrRegistryRequestFailed = zerr.New("failed to fetch from crates.io")

	// ErrRegistryParseFailed is returned when the registry response cannot be decoded.
	ErrRegistryParseFailed = zerr.New("failed to parse crates.io response")

	// ErrCrateNotFound is returned when the registry does not know the requested crate.
	ErrCrateNotFound = zerr.New("crate not found on crates.io")

	// ErrVersionNotFound is returned when no unyanked version of a crate was published before the cutoff date.
	ErrVersionNotFound = zerr.New("no version of crate found before date")

	// ErrInvalidDate is returned when the cutoff date is not a valid RFC 2822 date.
	ErrInvalidDate = zerr.New("invalid date, expected RFC 2822 format (e.g. \"22 Feb 2021 23:16:09 GMT\")")

	// ErrInvalidLevel is returned when the dependency level is out of range.
	ErrInvalidLevel = zerr.New("dependency level must be between 1 and 255")

	// ErrNoCratesSelected is returned when the explicit crate list is empty after trimming.
	ErrNoCratesSelected = zerr.New("no crates selected")

	// ErrUnknownOutputFormat is returned when an unsupported output format is requested.
	ErrUnknownOutputFormat = zerr.New("unknown output format, expected one of: lock, pin, json, yaml")
)

// Kind files cause under one of the sentinels above. The result matches the
// sentinel with errors.Is while cause stays reachable through errors.Unwrap.
// A nil cause yields an error that carries only the sentinel's message.
func Kind(sentinel, cause error) error {
	return &kindError{kind: sentinel, cause: cause}
}

type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	if e.cause == nil {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *kindError) Unwrap() error {
	return e.cause
}

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

// Message returns the sentinel's message without the cause.
func (e *kindError) Message() string {
	return e.kind.Error()
}

// Metadata is always empty; attach metadata with zerr.With on the result.
func (e *kindError) Metadata() map[string]any {
	return make(map[string]any)
}
