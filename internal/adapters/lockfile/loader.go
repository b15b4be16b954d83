// Package lockfile builds dependency graphs from Cargo.lock files.
package lockfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/blang/semver/v4"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/domain"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/ports"
	"go.trai.ch/zerr"
)

// latestFormatVersion is the newest Cargo.lock format this loader has been checked against.
const latestFormatVersion = 4

// Loader implements ports.LockfileLoader for Cargo.lock files.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the Cargo.lock at path and returns its dependency graph.
func (l *Loader) Load(path string) (*domain.DependencyGraph, error) {
	//nolint:gosec // path is supplied by the user on purpose
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockfileRead.Error()), "path", path)
	}
	return l.Parse(data)
}

// Parse builds a dependency graph from the contents of a Cargo.lock file.
func (l *Loader) Parse(data []byte) (*domain.DependencyGraph, error) {
	var lock cargoLock
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, zerr.Wrap(err, domain.ErrLockfileParse.Error())
	}

	if lock.Version > latestFormatVersion {
		l.Logger.Warn(fmt.Sprintf("Cargo.lock format version %d is newer than the supported version %d",
			lock.Version, latestFormatVersion))
	}

	graph := domain.NewDependencyGraph()
	for _, pkg := range lock.Packages {
		if err := validatePackage(pkg); err != nil {
			return nil, err
		}
		graph.AddNode(domain.GraphNode{
			Name:    pkg.Name,
			Version: pkg.Version,
			Source:  pkg.Source,
		})
	}

	for i, pkg := range lock.Packages {
		from := domain.NodeIndex(i)
		for _, raw := range pkg.Dependencies {
			to, err := resolveDependency(graph, parseDependencyRef(raw))
			if err != nil {
				err = zerr.With(err, "package", pkg.Name)
				err = zerr.With(err, "dependency", raw)
				return nil, zerr.Wrap(err, domain.ErrLockfileParse.Error())
			}
			if err := graph.AddEdge(from, to); err != nil {
				return nil, zerr.Wrap(err, domain.ErrLockfileParse.Error())
			}
		}
	}

	return graph, nil
}

func validatePackage(pkg packageEntry) error {
	if pkg.Name == "" {
		missing := zerr.With(domain.ErrLockfileParse, "reason", "package without name")
		return zerr.With(missing, "version", pkg.Version)
	}
	if _, err := semver.ParseTolerant(pkg.Version); err != nil {
		invalid := zerr.Wrap(err, domain.ErrLockfileParse.Error())
		invalid = zerr.With(invalid, "package", pkg.Name)
		return zerr.With(invalid, "version", pkg.Version)
	}
	return nil
}

func parseDependencyRef(raw string) dependencyRef {
	fields := strings.Fields(raw)
	var ref dependencyRef
	if len(fields) > 0 {
		ref.Name = fields[0]
	}
	if len(fields) > 1 {
		ref.Version = fields[1]
	}
	if len(fields) > 2 {
		source := strings.Join(fields[2:], " ")
		ref.Source = strings.TrimSuffix(strings.TrimPrefix(source, "("), ")")
	}
	return ref
}

func resolveDependency(graph *domain.DependencyGraph, ref dependencyRef) (domain.NodeIndex, error) {
	var matches []domain.NodeIndex
	for _, idx := range graph.Lookup(ref.Name) {
		node := graph.Node(idx)
		if ref.Version != "" && node.Version != ref.Version {
			continue
		}
		if ref.Source != "" && node.Source != ref.Source {
			continue
		}
		matches = append(matches, idx)
	}

	switch len(matches) {
	case 0:
		return 0, domain.ErrUnknownDependency
	case 1:
		return matches[0], nil
	default:
		return 0, zerr.With(domain.ErrAmbiguousDependency, "candidates", len(matches))
	}
}
