package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/semantic"
)

// markerTagKey is the struct-tag key and comment directive carrying an
// explicit classification marker, e.g. `hexalens:"AggregateRoot"` or
// //hexalens:Repository above an interface.
const markerTagKey = "hexalens"

// Frontend extracts a semantic model from a Go source tree.
type Frontend struct {
	ExcludedDirs []string
}

// ParseDir walks root, parses every .go file (tests excluded) and
// returns the model with types ordered by qualified name.
func (f *Frontend) ParseDir(root string) (*semantic.Model, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, excluded := range f.ExcludedDirs {
				if d.Name() == excluded {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)

	byQualified := make(map[string]*semantic.TypeInfo)
	var order []string
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			rel = filepath.Dir(path)
		}
		namespace := filepath.ToSlash(rel)
		if namespace == "." {
			namespace = filepath.Base(root)
		}
		if err := f.parseFile(path, namespace, content, byQualified, &order); err != nil {
			return nil, err
		}
	}

	sort.Strings(order)
	model := &semantic.Model{Types: make([]semantic.TypeInfo, 0, len(order))}
	for _, q := range order {
		model.Types = append(model.Types, *byQualified[q])
	}
	return model, nil
}

func (f *Frontend) parseFile(path, namespace string, content []byte, byQualified map[string]*semantic.TypeInfo, order *[]string) error {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	root := tree.RootNode()

	imports := collectImports(root, content)
	r := &fileReader{
		path:      path,
		namespace: namespace,
		content:   content,
		imports:   imports,
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "type_declaration":
			for _, ti := range r.typeDeclaration(child) {
				if prev, seen := byQualified[ti.Qualified]; seen {
					// keep methods collected from receiver declarations
					ti.Methods = append(ti.Methods, prev.Methods...)
				} else {
					*order = append(*order, ti.Qualified)
				}
				byQualified[ti.Qualified] = ti
			}
		case "method_declaration":
			r.methodDeclaration(child, byQualified, order)
		}
	}
	return nil
}

type fileReader struct {
	path      string
	namespace string
	content   []byte
	imports   map[string]string
}

func (r *fileReader) text(n *sitter.Node) string {
	return string(r.content[n.StartByte():n.EndByte()])
}

func (r *fileReader) typeDeclaration(decl *sitter.Node) []*semantic.TypeInfo {
	markers := directiveMarkers(decl, r.content)
	var out []*semantic.TypeInfo
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		spec := decl.NamedChild(i)
		if spec.Type() != "type_spec" {
			continue
		}
		name := spec.ChildByFieldName("name")
		typ := spec.ChildByFieldName("type")
		if name == nil || typ == nil {
			continue
		}
		simple := r.text(name)
		ti := &semantic.TypeInfo{
			Qualified: r.namespace + "." + simple,
			Simple:    simple,
			Namespace: r.namespace,
			Modifiers: visibilityModifiers(simple),
			Location: &domain.SourceLocation{
				File:      r.path,
				StartLine: int(decl.StartPoint().Row) + 1,
				EndLine:   int(decl.EndPoint().Row) + 1,
			},
		}
		for _, m := range markers {
			ti.Tags = append(ti.Tags, domain.Tag{Name: m})
		}
		switch typ.Type() {
		case "struct_type":
			ti.Kind = domain.DeclClass
			r.structMembers(typ, ti)
		case "interface_type":
			ti.Kind = domain.DeclInterface
			r.interfaceMembers(typ, ti)
		default:
			// type alias or named basic type, a value carrier
			ti.Kind = domain.DeclRecord
			ti.SuperType = r.typeRef(typ)
		}
		out = append(out, ti)
	}
	return out
}

func (r *fileReader) structMembers(structType *sitter.Node, ti *semantic.TypeInfo) {
	list := structType.NamedChild(0)
	if list == nil || list.Type() != "field_declaration_list" {
		return
	}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		fd := list.NamedChild(i)
		if fd.Type() != "field_declaration" {
			continue
		}
		typeNode := fd.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		tags := r.fieldTags(fd)
		named := false
		for j := 0; j < int(fd.NamedChildCount()); j++ {
			c := fd.NamedChild(j)
			if c.Type() != "field_identifier" {
				continue
			}
			named = true
			fieldName := r.text(c)
			ti.Fields = append(ti.Fields, semantic.FieldInfo{
				Name:      fieldName,
				Type:      *r.typeRef(typeNode),
				Modifiers: visibilityModifiers(fieldName),
				Tags:      tags,
			})
		}
		if !named {
			// embedded field doubles as a supertype marker
			ref := r.typeRef(typeNode)
			if ti.SuperType == nil {
				ti.SuperType = ref
			} else {
				ti.Interfaces = append(ti.Interfaces, *ref)
			}
		}
	}
}

func (r *fileReader) interfaceMembers(ifaceType *sitter.Node, ti *semantic.TypeInfo) {
	for i := 0; i < int(ifaceType.NamedChildCount()); i++ {
		el := ifaceType.NamedChild(i)
		switch el.Type() {
		case "method_elem", "method_spec":
			name := el.ChildByFieldName("name")
			if name == nil {
				continue
			}
			mi := semantic.MethodInfo{
				Name:      r.text(name),
				Modifiers: visibilityModifiers(r.text(name)),
			}
			if params := el.ChildByFieldName("parameters"); params != nil {
				mi.Params = r.params(params)
			}
			if result := el.ChildByFieldName("result"); result != nil {
				mi.Returns, mi.Throws = r.results(result)
			}
			ti.Methods = append(ti.Methods, mi)
		case "type_elem", "type_identifier", "qualified_type":
			ti.Interfaces = append(ti.Interfaces, *r.typeRef(el))
		}
	}
}

func (r *fileReader) methodDeclaration(decl *sitter.Node, byQualified map[string]*semantic.TypeInfo, order *[]string) {
	recv := decl.ChildByFieldName("receiver")
	name := decl.ChildByFieldName("name")
	if recv == nil || name == nil {
		return
	}
	recvType := receiverTypeName(recv, r.content)
	if recvType == "" {
		return
	}
	qualified := r.namespace + "." + recvType
	ti, ok := byQualified[qualified]
	if !ok {
		// method seen before its type declaration
		ti = &semantic.TypeInfo{
			Qualified: qualified,
			Simple:    recvType,
			Namespace: r.namespace,
			Kind:      domain.DeclClass,
			Modifiers: visibilityModifiers(recvType),
		}
		byQualified[qualified] = ti
		*order = append(*order, qualified)
	}

	mi := semantic.MethodInfo{
		Name:      r.text(name),
		Modifiers: visibilityModifiers(r.text(name)),
	}
	if params := decl.ChildByFieldName("parameters"); params != nil {
		mi.Params = r.params(params)
	}
	if result := decl.ChildByFieldName("result"); result != nil {
		mi.Returns, mi.Throws = r.results(result)
	}
	ti.Methods = append(ti.Methods, mi)
}

func (r *fileReader) params(list *sitter.Node) []domain.Param {
	var out []domain.Param
	for i := 0; i < int(list.NamedChildCount()); i++ {
		pd := list.NamedChild(i)
		if pd.Type() != "parameter_declaration" && pd.Type() != "variadic_parameter_declaration" {
			continue
		}
		typeNode := pd.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		ref := r.typeRef(typeNode)
		added := false
		for j := 0; j < int(pd.NamedChildCount()); j++ {
			c := pd.NamedChild(j)
			if c.Type() == "identifier" {
				out = append(out, domain.Param{Name: r.text(c), Type: *ref})
				added = true
			}
		}
		if !added {
			out = append(out, domain.Param{Type: *ref})
		}
	}
	return out
}

// results splits a result list into the return type and a trailing error,
// which maps onto the thrown-types slot.
func (r *fileReader) results(result *sitter.Node) (*domain.TypeRef, []domain.TypeRef) {
	var refs []*domain.TypeRef
	if result.Type() == "parameter_list" {
		for i := 0; i < int(result.NamedChildCount()); i++ {
			pd := result.NamedChild(i)
			if pd.Type() != "parameter_declaration" {
				continue
			}
			if typeNode := pd.ChildByFieldName("type"); typeNode != nil {
				refs = append(refs, r.typeRef(typeNode))
			}
		}
	} else {
		refs = append(refs, r.typeRef(result))
	}
	if len(refs) == 0 {
		return nil, nil
	}
	var throws []domain.TypeRef
	last := refs[len(refs)-1]
	if last.Qualified == "builtin.error" {
		throws = []domain.TypeRef{*last}
		refs = refs[:len(refs)-1]
	}
	if len(refs) == 0 {
		return nil, throws
	}
	return refs[0], throws
}

// typeRef resolves a syntactic type expression to a qualified reference.
// Wrappers (pointer, slice, array, channel, variadic) unwrap to the
// element type; maps and generics keep their arguments.
func (r *fileReader) typeRef(n *sitter.Node) *domain.TypeRef {
	switch n.Type() {
	case "pointer_type", "slice_type", "array_type", "channel_type", "parenthesized_type", "variadic_type":
		if el := n.ChildByFieldName("element"); el != nil {
			return r.typeRef(el)
		}
		if c := n.NamedChild(int(n.NamedChildCount()) - 1); c != nil {
			return r.typeRef(c)
		}
	case "map_type":
		ref := &domain.TypeRef{Qualified: "builtin.map"}
		if k := n.ChildByFieldName("key"); k != nil {
			ref.Args = append(ref.Args, *r.typeRef(k))
		}
		if v := n.ChildByFieldName("value"); v != nil {
			ref.Args = append(ref.Args, *r.typeRef(v))
		}
		return ref
	case "generic_type":
		base := n.ChildByFieldName("type")
		ref := &domain.TypeRef{Qualified: "builtin.any"}
		if base != nil {
			ref = r.typeRef(base)
		}
		if args := n.ChildByFieldName("type_arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				ref.Args = append(ref.Args, *r.typeRef(args.NamedChild(i)))
			}
		}
		return ref
	case "qualified_type":
		pkg := n.ChildByFieldName("package")
		name := n.ChildByFieldName("name")
		if pkg != nil && name != nil {
			alias := r.text(pkg)
			if path, ok := r.imports[alias]; ok {
				return &domain.TypeRef{Qualified: path + "." + r.text(name)}
			}
			return &domain.TypeRef{Qualified: alias + "." + r.text(name)}
		}
	case "type_identifier":
		name := r.text(n)
		if isBuiltinName(name) {
			return &domain.TypeRef{Qualified: "builtin." + name}
		}
		return &domain.TypeRef{Qualified: r.namespace + "." + name}
	}
	return &domain.TypeRef{Qualified: "builtin.any"}
}

func (r *fileReader) fieldTags(fd *sitter.Node) []domain.Tag {
	var out []domain.Tag
	for i := 0; i < int(fd.NamedChildCount()); i++ {
		c := fd.NamedChild(i)
		if c.Type() != "raw_string_literal" && c.Type() != "interpreted_string_literal" {
			continue
		}
		raw := strings.Trim(r.text(c), "`\"")
		if marker := reflect.StructTag(raw).Get(markerTagKey); marker != "" {
			out = append(out, domain.Tag{Name: marker})
		}
	}
	return out
}

func collectImports(root *sitter.Node, content []byte) map[string]string {
	imports := make(map[string]string)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "import_spec" {
			pathNode := n.ChildByFieldName("path")
			if pathNode == nil {
				return
			}
			path := strings.Trim(string(content[pathNode.StartByte():pathNode.EndByte()]), "\"")
			alias := path[strings.LastIndex(path, "/")+1:]
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				alias = string(content[nameNode.StartByte():nameNode.EndByte()])
			}
			imports[alias] = path
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return imports
}

// directiveMarkers reads //hexalens:Marker directives from the comment
// block directly above a declaration.
func directiveMarkers(decl *sitter.Node, content []byte) []string {
	var markers []string
	prev := decl.PrevNamedSibling()
	for prev != nil && prev.Type() == "comment" {
		text := strings.TrimSpace(string(content[prev.StartByte():prev.EndByte()]))
		text = strings.TrimPrefix(text, "//")
		text = strings.TrimSpace(text)
		if strings.HasPrefix(text, markerTagKey+":") {
			marker := strings.TrimSpace(strings.TrimPrefix(text, markerTagKey+":"))
			if marker != "" {
				markers = append(markers, marker)
			}
		}
		prev = prev.PrevNamedSibling()
	}
	return markers
}

func receiverTypeName(recv *sitter.Node, content []byte) string {
	var name string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "type_identifier" && name == "" {
			name = string(content[n.StartByte():n.EndByte()])
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(recv)
	return name
}

func visibilityModifiers(name string) []domain.Modifier {
	if name == "" {
		return nil
	}
	if name[0] >= 'A' && name[0] <= 'Z' {
		return []domain.Modifier{domain.ModPublic}
	}
	return []domain.Modifier{domain.ModPrivate}
}

func isBuiltinName(name string) bool {
	switch name {
	case "bool", "string", "error", "any",
		"int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"byte", "rune", "float32", "float64", "complex64", "complex128":
		return true
	}
	return false
}
