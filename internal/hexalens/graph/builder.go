package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/semantic"
)

// builtinPrefixes mark type references that never resolve to a declared
// type and therefore produce no edge.
var builtinPrefixes = []string{
	"java.", "javax.", "jakarta.", "kotlin.", "scala.",
	"builtin.", "go.std.",
}

var builtinNames = map[string]bool{
	"void": true, "boolean": true, "byte": true, "short": true, "int": true,
	"long": true, "float": true, "double": true, "char": true,
	"string": true, "bool": true, "int8": true, "int16": true, "int32": true,
	"int64": true, "uint": true, "uint8": true, "uint16": true,
	"uint32": true, "uint64": true, "float32": true, "float64": true,
	"byte[]": true, "error": true, "any": true,
}

// Build constructs a read-only graph from the semantic model. Construction
// never fails on malformed individual members; those are skipped and
// recorded as diagnostics.
func Build(model *semantic.Model) *Graph {
	g := &Graph{
		types:        make(map[domain.TypeID]*domain.TypeNode),
		fields:       make(map[domain.TypeID][]*domain.FieldNode),
		methods:      make(map[domain.TypeID][]*domain.MethodNode),
		edges:        make(map[domain.TypeID][]domain.Edge),
		reverseEdges: make(map[domain.TypeID][]domain.Edge),
	}
	if model == nil {
		g.diag(domain.DiagError, "", "semantic model is nil")
		return g
	}

	// First pass: register type nodes so member references can resolve.
	for i := range model.Types {
		ti := &model.Types[i]
		if ti.Qualified == "" {
			g.diag(domain.DiagWarning, ti.Simple, "type with empty qualified name skipped")
			continue
		}
		if ti.Kind == "" {
			g.diag(domain.DiagWarning, ti.Qualified, "type with no declaration form skipped")
			continue
		}
		id := domain.TypeID(ti.Qualified)
		if _, dup := g.types[id]; dup {
			g.diag(domain.DiagWarning, ti.Qualified, "duplicate type declaration ignored")
			continue
		}
		g.types[id] = &domain.TypeNode{
			ID:         id,
			Qualified:  ti.Qualified,
			Simple:     ti.Simple,
			Namespace:  ti.Namespace,
			Kind:       ti.Kind,
			Modifiers:  ti.Modifiers,
			Tags:       ti.Tags,
			SuperType:  ti.SuperType,
			Interfaces: ti.Interfaces,
			Location:   ti.Location,
		}
	}

	// Second pass: members and derived edges.
	for i := range model.Types {
		ti := &model.Types[i]
		id := domain.TypeID(ti.Qualified)
		owner, ok := g.types[id]
		if !ok {
			continue
		}
		g.buildMembers(owner, ti)
		g.buildEdges(owner, ti)
	}

	g.sortedIDs = make([]domain.TypeID, 0, len(g.types))
	for id := range g.types {
		g.sortedIDs = append(g.sortedIDs, id)
	}
	sort.Slice(g.sortedIDs, func(i, j int) bool {
		return g.types[g.sortedIDs[i]].Qualified < g.types[g.sortedIDs[j]].Qualified
	})

	if len(g.types) == 0 {
		g.diag(domain.DiagError, "", "semantic model yielded zero types")
	}
	return g
}

func (g *Graph) buildMembers(owner *domain.TypeNode, ti *semantic.TypeInfo) {
	for fi := range ti.Fields {
		f := &ti.Fields[fi]
		if f.Name == "" {
			g.diag(domain.DiagWarning, ti.Qualified, "field with empty name skipped")
			continue
		}
		g.fields[owner.ID] = append(g.fields[owner.ID], &domain.FieldNode{
			ID:        fmt.Sprintf("%s#%s", ti.Qualified, f.Name),
			Owner:     owner.ID,
			Name:      f.Name,
			Type:      f.Type,
			Modifiers: f.Modifiers,
			Tags:      f.Tags,
		})
	}
	for mi := range ti.Methods {
		m := &ti.Methods[mi]
		if m.Name == "" {
			g.diag(domain.DiagWarning, ti.Qualified, "method with empty name skipped")
			continue
		}
		g.methods[owner.ID] = append(g.methods[owner.ID], &domain.MethodNode{
			ID:        fmt.Sprintf("%s#%s()", ti.Qualified, m.Name),
			Owner:     owner.ID,
			Name:      m.Name,
			Params:    m.Params,
			Returns:   m.Returns,
			Throws:    m.Throws,
			Modifiers: m.Modifiers,
			Tags:      m.Tags,
		})
	}
}

// buildEdges derives edges from member type references: fields produce
// COMPOSITION, method signatures REFERENCE, supertype and interfaces
// DEPENDENCY. References to primitives, builtins and undeclared types are
// dropped; so are self-loops.
func (g *Graph) buildEdges(owner *domain.TypeNode, ti *semantic.TypeInfo) {
	for fi := range ti.Fields {
		g.addRefEdges(owner.ID, &ti.Fields[fi].Type, domain.EdgeComposition)
	}
	for mi := range ti.Methods {
		m := &ti.Methods[mi]
		for pi := range m.Params {
			g.addRefEdges(owner.ID, &m.Params[pi].Type, domain.EdgeReference)
		}
		if m.Returns != nil {
			g.addRefEdges(owner.ID, m.Returns, domain.EdgeReference)
		}
		for thi := range m.Throws {
			g.addRefEdges(owner.ID, &m.Throws[thi], domain.EdgeReference)
		}
	}
	if ti.SuperType != nil {
		g.addRefEdges(owner.ID, ti.SuperType, domain.EdgeDependency)
	}
	for ii := range ti.Interfaces {
		g.addRefEdges(owner.ID, &ti.Interfaces[ii], domain.EdgeDependency)
	}
}

// addRefEdges walks a type reference and its generic arguments, adding an
// edge for every declared type found.
func (g *Graph) addRefEdges(from domain.TypeID, ref *domain.TypeRef, kind domain.EdgeKind) {
	if ref == nil {
		return
	}
	if target, ok := g.resolve(ref.Qualified); ok && target != from {
		g.addEdge(domain.Edge{From: from, To: target, Kind: kind})
	}
	for i := range ref.Args {
		g.addRefEdges(from, &ref.Args[i], kind)
	}
}

// resolve reduces a raw type reference to a declaring type in the graph.
func (g *Graph) resolve(qualified string) (domain.TypeID, bool) {
	if qualified == "" || isBuiltin(qualified) {
		return "", false
	}
	id := domain.TypeID(qualified)
	if _, ok := g.types[id]; ok {
		return id, true
	}
	return "", false
}

func (g *Graph) addEdge(e domain.Edge) {
	for _, existing := range g.edges[e.From] {
		if existing.To == e.To && existing.Kind == e.Kind {
			return
		}
	}
	g.edges[e.From] = append(g.edges[e.From], e)
	g.reverseEdges[e.To] = append(g.reverseEdges[e.To], e)
}

func (g *Graph) diag(level domain.DiagnosticLevel, subject, msg string) {
	g.diagnostics = append(g.diagnostics, domain.Diagnostic{
		Level:   level,
		Subject: subject,
		Message: msg,
	})
}

func isBuiltin(qualified string) bool {
	if builtinNames[qualified] {
		return true
	}
	for _, p := range builtinPrefixes {
		if strings.HasPrefix(qualified, p) {
			return true
		}
	}
	return false
}
