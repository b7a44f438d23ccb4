// Package graph holds the in-memory type graph and its query surface.
// The graph is built once per analysis run from a semantic model and is
// read-only thereafter, so queries need no locking and may run
// concurrently.
package graph

import (
	"sort"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
)

// Graph is the arena of type, field and method nodes plus the derived
// dependency edges between declared types.
type Graph struct {
	types   map[domain.TypeID]*domain.TypeNode
	fields  map[domain.TypeID][]*domain.FieldNode
	methods map[domain.TypeID][]*domain.MethodNode

	edges        map[domain.TypeID][]domain.Edge
	reverseEdges map[domain.TypeID][]domain.Edge

	sortedIDs   []domain.TypeID
	diagnostics []domain.Diagnostic
}

// Node retrieves a type node by id.
func (g *Graph) Node(id domain.TypeID) (*domain.TypeNode, bool) {
	n, ok := g.types[id]
	return n, ok
}

// Contains reports whether a type with the given id is declared in the graph.
func (g *Graph) Contains(id domain.TypeID) bool {
	_, ok := g.types[id]
	return ok
}

// Types returns all type nodes ordered by qualified name.
func (g *Graph) Types() []*domain.TypeNode {
	nodes := make([]*domain.TypeNode, 0, len(g.sortedIDs))
	for _, id := range g.sortedIDs {
		nodes = append(nodes, g.types[id])
	}
	return nodes
}

// Len returns the number of declared types.
func (g *Graph) Len() int { return len(g.types) }

// FieldsOf returns the fields owned by the given type.
func (g *Graph) FieldsOf(id domain.TypeID) []*domain.FieldNode {
	return g.fields[id]
}

// MethodsOf returns the methods owned by the given type.
func (g *Graph) MethodsOf(id domain.TypeID) []*domain.MethodNode {
	return g.methods[id]
}

// EdgesFrom returns all edges originating at the given type.
func (g *Graph) EdgesFrom(id domain.TypeID) []domain.Edge {
	return g.edges[id]
}

// EdgesTo returns all edges pointing at the given type.
func (g *Graph) EdgesTo(id domain.TypeID) []domain.Edge {
	return g.reverseEdges[id]
}

// DependenciesOf returns the distinct declared types the given type points
// at through any edge kind, ordered by id.
func (g *Graph) DependenciesOf(id domain.TypeID) []domain.TypeID {
	seen := make(map[domain.TypeID]bool)
	var out []domain.TypeID
	for _, e := range g.edges[id] {
		if !seen[e.To] {
			seen[e.To] = true
			out = append(out, e.To)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DependentsOf returns the distinct declared types that point at the given
// type, ordered by id.
func (g *Graph) DependentsOf(id domain.TypeID) []domain.TypeID {
	seen := make(map[domain.TypeID]bool)
	var out []domain.TypeID
	for _, e := range g.reverseEdges[id] {
		if !seen[e.From] {
			seen[e.From] = true
			out = append(out, e.From)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DependsOn reports whether from has an edge of any kind to to.
func (g *Graph) DependsOn(from, to domain.TypeID) bool {
	for _, e := range g.edges[from] {
		if e.To == to {
			return true
		}
	}
	return false
}

// TypesInNamespace returns the types declared in the given namespace,
// ordered by qualified name.
func (g *Graph) TypesInNamespace(ns string) []*domain.TypeNode {
	var out []*domain.TypeNode
	for _, id := range g.sortedIDs {
		if g.types[id].Namespace == ns {
			out = append(out, g.types[id])
		}
	}
	return out
}

// Namespaces returns every namespace that declares at least one type,
// sorted.
func (g *Graph) Namespaces() []string {
	seen := make(map[string]bool)
	for _, t := range g.types {
		seen[t.Namespace] = true
	}
	out := make([]string, 0, len(seen))
	for ns := range seen {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Implementors returns the declared types that implement the given
// interface, ordered by id.
func (g *Graph) Implementors(id domain.TypeID) []domain.TypeID {
	var out []domain.TypeID
	for _, tid := range g.sortedIDs {
		t := g.types[tid]
		for _, ref := range t.Interfaces {
			if domain.TypeID(ref.Qualified) == id {
				out = append(out, tid)
				break
			}
		}
	}
	return out
}

// Diagnostics returns the structural faults recorded while building.
func (g *Graph) Diagnostics() []domain.Diagnostic {
	return g.diagnostics
}
