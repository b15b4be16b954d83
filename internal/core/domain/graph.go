// Package domain contains the core domain models of the dependency downgrade tool.
package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// NodeIndex addresses a node inside a DependencyGraph.
type NodeIndex int

// GraphNode is one package entry of a lockfile.
// Only Name is used by the selection algorithm.
type GraphNode struct {
	Name    string
	Version string
	Source  string
}

// DependencyGraph is a directed graph of lockfile packages.
// Edges point from a package to the packages it directly depends on.
// Nodes live in an arena and are addressed by index.
type DependencyGraph struct {
	nodes      []GraphNode
	successors [][]NodeIndex
	inDegree   []int
	byName     map[string][]NodeIndex
}

// NewDependencyGraph creates a new empty DependencyGraph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		byName: make(map[string][]NodeIndex),
	}
}

// AddNode appends a node to the graph and returns its index.
func (g *DependencyGraph) AddNode(n GraphNode) NodeIndex {
	idx := NodeIndex(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.successors = append(g.successors, nil)
	g.inDegree = append(g.inDegree, 0)
	g.byName[n.Name] = append(g.byName[n.Name], idx)
	return idx
}

// AddEdge records that from directly depends on to.
// Duplicate edges are ignored.
func (g *DependencyGraph) AddEdge(from, to NodeIndex) error {
	if !g.valid(from) {
		return zerr.With(ErrNodeNotFound, "index", int(from))
	}
	if !g.valid(to) {
		return zerr.With(ErrNodeNotFound, "index", int(to))
	}
	if slices.Contains(g.successors[from], to) {
		return nil
	}
	g.successors[from] = append(g.successors[from], to)
	g.inDegree[to]++
	return nil
}

// Len returns the number of nodes in the graph.
func (g *DependencyGraph) Len() int {
	return len(g.nodes)
}

// Node returns the node stored at idx.
func (g *DependencyGraph) Node(idx NodeIndex) GraphNode {
	return g.nodes[idx]
}

// Successors returns the direct dependencies of idx.
// The returned slice must not be modified.
func (g *DependencyGraph) Successors(idx NodeIndex) []NodeIndex {
	return g.successors[idx]
}

// Roots returns all nodes without incoming edges in ascending index order.
// These are the packages nothing else in the lockfile depends on.
func (g *DependencyGraph) Roots() []NodeIndex {
	var roots []NodeIndex
	for i, deg := range g.inDegree {
		if deg == 0 {
			roots = append(roots, NodeIndex(i))
		}
	}
	return roots
}

// Lookup returns the indices of all nodes with the given package name.
// A lockfile may contain several versions of the same package.
func (g *DependencyGraph) Lookup(name string) []NodeIndex {
	return g.byName[name]
}

func (g *DependencyGraph) valid(idx NodeIndex) bool {
	return idx >= 0 && int(idx) < len(g.nodes)
}
