// Package semantic defines the read-only input model the engine consumes.
// A frontend (the bundled Go parser, or any external extractor) produces
// one Model per analysis run; the engine never parses source text itself.
package semantic

import "github.com/pmaojo/hexalens/internal/hexalens/domain"

// FieldInfo describes one field of a type.
type FieldInfo struct {
	Name      string            `json:"name"`
	Type      domain.TypeRef    `json:"type"`
	Modifiers []domain.Modifier `json:"modifiers,omitempty"`
	Tags      []domain.Tag      `json:"tags,omitempty"`
}

// MethodInfo describes one method of a type.
type MethodInfo struct {
	Name      string            `json:"name"`
	Params    []domain.Param    `json:"params,omitempty"`
	Returns   *domain.TypeRef   `json:"returns,omitempty"`
	Throws    []domain.TypeRef  `json:"throws,omitempty"`
	Modifiers []domain.Modifier `json:"modifiers,omitempty"`
	Tags      []domain.Tag      `json:"tags,omitempty"`
}

// TypeInfo describes one declared type, already filtered to the
// namespaces of interest.
type TypeInfo struct {
	Qualified  string                 `json:"qualified"`
	Simple     string                 `json:"simple"`
	Namespace  string                 `json:"namespace"`
	Kind       domain.DeclKind        `json:"kind"`
	Modifiers  []domain.Modifier      `json:"modifiers,omitempty"`
	Tags       []domain.Tag           `json:"tags,omitempty"`
	SuperType  *domain.TypeRef        `json:"super_type,omitempty"`
	Interfaces []domain.TypeRef       `json:"interfaces,omitempty"`
	Fields     []FieldInfo            `json:"fields,omitempty"`
	Methods    []MethodInfo           `json:"methods,omitempty"`
	Location   *domain.SourceLocation `json:"location,omitempty"`
}

// Model is the full semantic model for one run, delivered in a
// deterministic order.
type Model struct {
	Types []TypeInfo `json:"types"`
}
