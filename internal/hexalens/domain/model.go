package domain

// TypeID uniquely identifies a declared type in the graph.
// It is the qualified name of the declaration.
type TypeID string

// DeclKind is the declaration form of a type.
type DeclKind string

const (
	DeclClass      DeclKind = "class"
	DeclInterface  DeclKind = "interface"
	DeclRecord     DeclKind = "record"
	DeclEnum       DeclKind = "enum"
	DeclAnnotation DeclKind = "annotation"
)

// Modifier is a declaration modifier (final, abstract, static, ...).
type Modifier string

const (
	ModAbstract Modifier = "abstract"
	ModFinal    Modifier = "final"
	ModStatic   Modifier = "static"
	ModPublic   Modifier = "public"
	ModPrivate  Modifier = "private"
)

// Tag is a metadata tag attached to a type, field or method
// (an annotation in JVM languages, a struct tag or directive in Go).
type Tag struct {
	Name  string            `json:"name"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// TypeRef points at a type by qualified name. Args carries generic
// type arguments so collection element types stay reachable.
type TypeRef struct {
	Qualified string    `json:"qualified"`
	Args      []TypeRef `json:"args,omitempty"`
}

// SourceLocation is an optional pointer back into the analyzed sources.
type SourceLocation struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// TypeNode is a declared type. Immutable once the graph is built.
type TypeNode struct {
	ID         TypeID          `json:"id"`
	Qualified  string          `json:"qualified"`
	Simple     string          `json:"simple"`
	Namespace  string          `json:"namespace"`
	Kind       DeclKind        `json:"kind"`
	Modifiers  []Modifier      `json:"modifiers,omitempty"`
	Tags       []Tag           `json:"tags,omitempty"`
	SuperType  *TypeRef        `json:"super_type,omitempty"`
	Interfaces []TypeRef       `json:"interfaces,omitempty"`
	Location   *SourceLocation `json:"location,omitempty"`
}

// IsInterface reports whether the declaration form is an interface.
func (t *TypeNode) IsInterface() bool { return t.Kind == DeclInterface }

// IsAbstract reports whether the type is abstract or an interface.
func (t *TypeNode) IsAbstract() bool {
	if t.Kind == DeclInterface {
		return true
	}
	return t.HasModifier(ModAbstract)
}

// HasModifier reports whether the given modifier is present.
func (t *TypeNode) HasModifier(m Modifier) bool {
	for _, mod := range t.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}

// HasTag reports whether a metadata tag with the given name is present.
func (t *TypeNode) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// Param is a method parameter.
type Param struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// FieldNode is a field owned by exactly one TypeNode.
type FieldNode struct {
	ID        string     `json:"id"`
	Owner     TypeID     `json:"owner"`
	Name      string     `json:"name"`
	Type      TypeRef    `json:"type"`
	Modifiers []Modifier `json:"modifiers,omitempty"`
	Tags      []Tag      `json:"tags,omitempty"`
}

// HasModifier reports whether the given modifier is present on the field.
func (f *FieldNode) HasModifier(m Modifier) bool {
	for _, mod := range f.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}

// HasTag reports whether a metadata tag with the given name is present.
func (f *FieldNode) HasTag(name string) bool {
	for _, tag := range f.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// MethodNode is a method owned by exactly one TypeNode.
type MethodNode struct {
	ID        string     `json:"id"`
	Owner     TypeID     `json:"owner"`
	Name      string     `json:"name"`
	Params    []Param    `json:"params,omitempty"`
	Returns   *TypeRef   `json:"returns,omitempty"`
	Throws    []TypeRef  `json:"throws,omitempty"`
	Modifiers []Modifier `json:"modifiers,omitempty"`
	Tags      []Tag      `json:"tags,omitempty"`
}

// EdgeKind is the relation carried by a derived edge.
type EdgeKind string

const (
	// EdgeDependency comes from supertype and implemented interfaces.
	EdgeDependency EdgeKind = "DEPENDENCY"
	// EdgeReference comes from method parameter, return and thrown types.
	EdgeReference EdgeKind = "REFERENCE"
	// EdgeComposition comes from field types.
	EdgeComposition EdgeKind = "COMPOSITION"
)

// Edge is a directed relation between two declared types,
// derived automatically during graph construction. Self-loops are excluded.
type Edge struct {
	From TypeID   `json:"from"`
	To   TypeID   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// DiagnosticLevel grades a diagnostic recorded during a run.
type DiagnosticLevel string

const (
	DiagInfo    DiagnosticLevel = "INFO"
	DiagWarning DiagnosticLevel = "WARNING"
	DiagError   DiagnosticLevel = "ERROR"
)

// Diagnostic records a structural fault that did not abort the run.
type Diagnostic struct {
	Level   DiagnosticLevel `json:"level"`
	Subject string          `json:"subject,omitempty"`
	Message string          `json:"message"`
}
