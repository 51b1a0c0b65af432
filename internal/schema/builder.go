package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/graphmock/internal/language"
)

// NewSchema returns an empty schema with the given description.
func NewSchema(description string) *Schema {
	return &Schema{
		Types:       map[string]*Type{},
		Directives:  map[string]*Directive{},
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

func (s *Schema) AddType(t *Type) *Schema {
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	s.Directives[d.Name] = d
	return s
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type        { t.Fields = append(t.Fields, f); return t }
func (t *Type) AddInterface(name string) *Type { t.Interfaces = append(t.Interfaces, name); return t }
func (t *Type) AddPossibleType(name string) *Type {
	t.PossibleTypes = append(t.PossibleTypes, name)
	return t
}
func (t *Type) AddEnumValue(v *EnumValue) *Type    { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type  { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) SetOneOf(oneOf bool) *Type          { t.OneOf = oneOf; return t }
func (t *Type) SetSpecifiedByURL(url string) *Type { t.SpecifiedByURL = &url; return t }

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) AddArgument(v *InputValue) *Field { f.Arguments = append(f.Arguments, v); return f }

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(value any) *InputValue { v.DefaultValue = value; return v }

func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (e *EnumValue) Deprecate(reason string) *EnumValue {
	e.IsDeprecated = true
	e.DeprecationReason = reason
	return e
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(r bool) *Directive { d.IsRepeatable = r; return d }
func (d *Directive) AddArgument(v *InputValue) *Directive {
	d.Arguments = append(d.Arguments, v)
	return d
}

// BuildFromSDL parses and validates SDL and returns the corresponding Schema.
// Introspection types and fields are left out of the model.
func BuildFromSDL(sdl string) (*Schema, error) {
	doc, err := language.LoadSchema("schema.graphql", sdl)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return BuildFromAST(doc)
}

// BuildFromAST converts a validated gqlparser schema.
func BuildFromAST(doc *language.SchemaAST) (*Schema, error) {
	s := NewSchema("")
	s.AST = doc
	if doc.Query == nil {
		return nil, fmt.Errorf("schema has no query type")
	}
	s.SetQueryType(doc.Query.Name)
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		s.SetSubscriptionType(doc.Subscription.Name)
	}

	names := make([]string, 0, len(doc.Types))
	for name := range doc.Types {
		if strings.HasPrefix(name, "__") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t, err := buildType(doc, doc.Types[name])
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}
	for _, def := range doc.Directives {
		s.AddDirective(buildDirective(def))
	}
	return s, nil
}

// BuildIntrospectionTypes builds the introspection types (__Schema, __Type
// and friends) that gqlparser declares in its prelude.
func BuildIntrospectionTypes(doc *language.SchemaAST) ([]*Type, error) {
	names := make([]string, 0, 8)
	for name := range doc.Types {
		if strings.HasPrefix(name, "__") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]*Type, 0, len(names))
	for _, name := range names {
		t, err := buildType(doc, doc.Types[name])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func buildType(doc *ast.Schema, def *ast.Definition) (*Type, error) {
	var t *Type
	switch def.Kind {
	case ast.Object:
		t = NewType(def.Name, TypeKindObject, def.Description)
	case ast.Interface:
		t = NewType(def.Name, TypeKindInterface, def.Description)
	case ast.Union:
		t = NewType(def.Name, TypeKindUnion, def.Description)
	case ast.Enum:
		t = NewType(def.Name, TypeKindEnum, def.Description)
	case ast.Scalar:
		t = NewType(def.Name, TypeKindScalar, def.Description)
	case ast.InputObject:
		t = NewType(def.Name, TypeKindInputObject, def.Description)
	default:
		return nil, fmt.Errorf("type %q: unsupported kind %s", def.Name, def.Kind)
	}

	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	if t.IsAbstract() {
		for _, pt := range doc.PossibleTypes[def.Name] {
			t.AddPossibleType(pt.Name)
		}
	}
	for _, v := range def.EnumValues {
		e := NewEnumValue(v.Name, v.Description)
		if d := v.Directives.ForName("deprecated"); d != nil {
			e.Deprecate(deprecationReason(d))
		}
		t.AddEnumValue(e)
	}

	for _, fd := range def.Fields {
		if strings.HasPrefix(fd.Name, "__") {
			continue
		}
		if def.Kind == ast.InputObject {
			in, err := buildInputValue(fd.Name, fd.Description, fd.Type, fd.DefaultValue)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", def.Name, fd.Name, err)
			}
			t.AddInputField(in)
			continue
		}
		f := NewField(fd.Name, fd.Description, buildTypeRef(fd.Type))
		if d := fd.Directives.ForName("deprecated"); d != nil {
			f.Deprecate(deprecationReason(d))
		}
		for _, arg := range fd.Arguments {
			in, err := buildInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue)
			if err != nil {
				return nil, fmt.Errorf("%s.%s(%s): %w", def.Name, fd.Name, arg.Name, err)
			}
			f.AddArgument(in)
		}
		t.AddField(f)
	}
	if def.Directives.ForName("oneOf") != nil {
		t.SetOneOf(true)
	}
	if d := def.Directives.ForName("specifiedBy"); d != nil {
		if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
			t.SetSpecifiedByURL(arg.Value.Raw)
		}
	}
	return t, nil
}

func buildTypeRef(t *ast.Type) *TypeRef {
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(buildTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}

func buildInputValue(name, description string, typ *ast.Type, def *ast.Value) (*InputValue, error) {
	in := NewInputValue(name, description, buildTypeRef(typ))
	if def != nil {
		v, err := def.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("default value: %w", err)
		}
		in.SetDefault(v)
	}
	return in, nil
}

func buildDirective(def *ast.DirectiveDefinition) *Directive {
	d := NewDirective(def.Name, def.Description).SetRepeatable(def.IsRepeatable)
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range def.Arguments {
		d.AddArgument(NewInputValue(arg.Name, arg.Description, buildTypeRef(arg.Type)))
	}
	return d
}

func deprecationReason(d *ast.Directive) string {
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw
	}
	return "No longer supported"
}
