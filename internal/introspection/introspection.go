// Package introspection answers the __schema and __type meta fields on top of
// another executor.Runtime.
package introspection

import (
	"context"
	"fmt"
	"strings"

	"github.com/hanpama/graphmock/internal/executor"
	"github.com/hanpama/graphmock/internal/schema"
)

// Wrapper holds the introspection runtime and the schema it executes against.
type Wrapper struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap returns a Runtime that resolves introspection fields itself and hands
// every other field to base. The returned schema is a copy of sch extended
// with the introspection types and the query type's meta fields; sch is not
// modified.
func Wrap(base executor.Runtime, sch *schema.Schema) (*Wrapper, error) {
	extended, err := extend(sch)
	if err != nil {
		return nil, err
	}
	return &Wrapper{
		Runtime: &runtime{base: base, schema: extended},
		Schema:  extended,
	}, nil
}

func extend(original *schema.Schema) (*schema.Schema, error) {
	if original.AST == nil {
		return nil, fmt.Errorf("introspection: schema was not built from SDL")
	}
	metaTypes, err := schema.BuildIntrospectionTypes(original.AST)
	if err != nil {
		return nil, fmt.Errorf("introspection: %w", err)
	}

	extended := *original
	extended.Types = make(map[string]*schema.Type, len(original.Types)+len(metaTypes))
	for name, t := range original.Types {
		extended.Types[name] = t
	}
	for _, t := range metaTypes {
		extended.Types[t.Name] = t
	}

	query := original.GetQueryType()
	if query == nil {
		return nil, fmt.Errorf("introspection: schema has no query type")
	}
	q := *query
	q.Fields = append(append([]*schema.Field(nil), query.Fields...),
		schema.NewField("__schema", "Access the current type schema of this server.",
			schema.NonNullType(schema.NamedType("__Schema"))),
		schema.NewField("__type", "Request the type information of a single type.",
			schema.NamedType("__Type")).
			AddArgument(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType("String")))),
	)
	extended.Types[q.Name] = &q
	return &extended, nil
}

type runtime struct {
	base   executor.Runtime
	schema *schema.Schema
}

func (r *runtime) ResolveSync(ctx context.Context, info executor.ResolveInfo, source any, args map[string]any) (any, error) {
	field := info.FieldName
	switch src := source.(type) {
	case *schema.Schema:
		return r.schemaField(src, field), nil
	case *schema.Type:
		return r.typeField(src, field, args), nil
	case *schema.TypeRef:
		return r.wrapperField(src, field), nil
	case *schema.Field:
		return r.fieldField(src, field, args), nil
	case *schema.InputValue:
		return r.inputValueField(src, field), nil
	case *schema.EnumValue:
		return enumValueField(src, field), nil
	case *schema.Directive:
		return directiveField(src, field, args), nil
	}

	if info.ObjectType == r.schema.QueryType {
		switch field {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := args["name"].(string)
			if t := r.schema.Types[name]; t != nil {
				return t, nil
			}
			return nil, nil
		}
	}
	return r.base.ResolveSync(ctx, info, source, args)
}

func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

func (r *runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	if strings.HasPrefix(typeName, "__") {
		return r.schema.SerializeLeaf(typeName, value)
	}
	return r.base.SerializeLeafValue(ctx, typeName, value)
}
