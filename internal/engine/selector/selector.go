// Package selector picks the transitive dependencies of a lockfile that take part in a downgrade.
package selector

import (
	"fmt"

	"github.com/obraunsdorf/cargo-downgrade/internal/core/domain"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/ports"
)

// Selection is the outcome of a traversal.
type Selection struct {
	// Names holds the selected crate names.
	Names domain.CrateSet

	// Truncated is set when the traversal stopped at domain.MaxLevel
	// before all branches reached their leaves.
	Truncated bool
}

// Selector walks a dependency graph level by level, starting at its roots.
type Selector struct {
	logger ports.Logger
}

// New creates a new Selector.
func New(logger ports.Logger) *Selector {
	return &Selector{logger: logger}
}

// Select returns the crate names to downgrade.
//
// Roots (level 0) are the project's direct requirements and are only returned if
// they are also reachable at a deeper level. With bound set to domain.NoLevelBound
// the names of every level >= 1 are returned. Any other bound returns exactly the
// names found at that level, not the levels above it.
func (s *Selector) Select(graph *domain.DependencyGraph, bound domain.Level) Selection {
	result := Selection{Names: domain.NewCrateSet()}

	frontier := graph.Roots()
	level := domain.Level(0)

	for len(frontier) > 0 {
		levelNames := domain.NewCrateSet()
		next := make([]domain.NodeIndex, 0, len(frontier))
		seen := make(map[domain.NodeIndex]struct{}, len(frontier))

		for _, idx := range frontier {
			levelNames.Add(graph.Node(idx).Name)
			for _, succ := range graph.Successors(idx) {
				if _, ok := seen[succ]; ok {
					continue
				}
				seen[succ] = struct{}{}
				next = append(next, succ)
			}
		}

		switch {
		case level == 0:
		case bound == domain.NoLevelBound:
			result.Names.Merge(levelNames)
		case level >= bound:
			return Selection{Names: levelNames}
		}

		if level == domain.MaxLevel {
			if len(next) > 0 {
				s.logger.Warn(fmt.Sprintf(
					"dependency tree is deeper than %d levels, ignoring deeper dependencies", domain.MaxLevel))
				result.Truncated = true
			}
			break
		}

		frontier = next
		level++
	}

	return result
}
