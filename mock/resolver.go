package mock

import (
	"context"
	"fmt"

	"github.com/hanpama/graphmock/internal/executor"
	"github.com/hanpama/graphmock/internal/schema"
)

// Source is the value threaded from a parent field to its children: the
// query override for the object and its merged parent mock.
type Source struct {
	override Value
	parent   Value
}

// RootSource returns the Source for the root operation type.
func RootSource(override Value) *Source {
	return &Source{override: override}
}

// Resolver adapts a Registry to executor.Runtime.
type Resolver struct {
	schema   *schema.Schema
	registry *Registry
	engine   engine
}

var _ executor.Runtime = (*Resolver)(nil)

// NewResolver returns a Resolver serving mocks from r. r must not be
// modified afterwards.
func NewResolver(s *schema.Schema, r *Registry) *Resolver {
	return &Resolver{schema: s, registry: r, engine: engine{schema: s}}
}

// ResolveSync merges the field's base mock with the parent mock (looked up by
// field name) and the query override (looked up by response key).
func (r *Resolver) ResolveSync(ctx context.Context, info executor.ResolveInfo, source any, args map[string]any) (any, error) {
	src, _ := source.(*Source)
	if src == nil {
		src = &Source{}
	}
	field := r.schema.Types[info.ObjectType].Field(info.FieldName)
	if field == nil {
		return nil, configError(ErrSchemaMismatch, fmt.Sprintf("field '%s.%s' is not defined in schema.", info.ObjectType, info.FieldName))
	}
	base, err := r.registry.FieldMock(r.schema, info.ObjectType, info.FieldName)
	if err != nil {
		return nil, err
	}

	a := Args(args)
	owner := info.ObjectType + "." + info.FieldName
	merged, err := r.engine.merge(&mergeNode{
		base:     base,
		override: retype(src.parent.Field(info.FieldName), field.Type),
		typ:      field.Type,
		owner:    owner,
	}, a)
	if err != nil {
		return nil, err
	}
	query, err := r.engine.resolveOverride(src.override.Field(info.ResponseKey), a, owner, pathString(info.Path))
	if err != nil {
		return nil, err
	}
	return r.complete(field.Type, merged, query, a, info)
}

// complete combines the merged base mock with the query override into the
// value handed back to the executor: a leaf, an error, a *Source for object
// values, or a slice for lists.
func (r *Resolver) complete(typ *schema.TypeRef, merged, query Value, args Args, info executor.ResolveInfo) (any, error) {
	switch {
	case query.kind == KindNull:
		return nil, nil
	case query.kind == KindError:
		return query.err, nil
	case query.IsAbsent() && merged.kind == KindError:
		return merged.err, nil
	case query.IsAbsent() && merged.kind == KindNull:
		return nil, nil
	}

	nullable := typ.Nullable()
	if nullable.Kind == schema.TypeRefKindList {
		return r.completeList(nullable, merged, query, args, info)
	}
	if r.schema.IsLeafType(nullable) {
		if !query.IsAbsent() {
			return query.Interface(), nil
		}
		return merged.Interface(), nil
	}
	if merged.kind == KindError {
		merged = Value{}
	}
	if !query.IsAbsent() && query.kind != KindObject {
		return nil, configError(ErrInvalidOverride, fmt.Sprintf(
			"mockOverride for '%s' is %s; object fields take an object.", pathString(info.Path), query.kind))
	}
	return &Source{override: query, parent: merged}, nil
}

func (r *Resolver) completeList(listType *schema.TypeRef, merged, query Value, args Args, info executor.ResolveInfo) (any, error) {
	var baseList *List
	switch merged.kind {
	case KindList:
		baseList = merged.list
	case KindArray:
		baseList = arrayList(merged.arr)
	default:
		baseList = absentList(0)
	}

	var queryList *List
	switch query.kind {
	case KindAbsent:
		queryList = absentList(baseList.Len)
	case KindList:
		queryList = query.list
	case KindArray:
		queryList = arrayList(query.arr)
	default:
		return nil, configError(ErrInvalidOverride, fmt.Sprintf(
			"mockOverride for '%s' is %s; list fields take an array.", pathString(info.Path), query.kind))
	}

	out := make([]any, queryList.Len)
	for i := range out {
		item, err := r.engine.resolve(baseList.Item(args, i), args)
		if err != nil {
			return nil, err
		}
		itemInfo := info
		itemInfo.Path = append(append(executor.Path{}, info.Path...), i)
		queryItem, err := r.engine.resolveOverride(queryList.Item(args, i), args, info.ObjectType+"."+info.FieldName, pathString(itemInfo.Path))
		if err != nil {
			return nil, err
		}
		out[i], err = r.complete(listType.OfType, item, queryItem, args, itemInfo)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ResolveType picks the concrete type of an abstract value from the
// "__typename" of the query override, then of the parent mock. Abstract types
// with a single possible type need neither.
func (r *Resolver) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if src, ok := value.(*Source); ok {
		for _, v := range []Value{src.override, src.parent} {
			tn, err := r.engine.resolve(v.Field("__typename"), Args{})
			if err != nil {
				return "", err
			}
			if name, ok := tn.raw.(string); ok && tn.kind == KindScalar && name != "" {
				return name, nil
			}
		}
	}
	if possible := r.schema.PossibleTypes(abstractType); len(possible) == 1 {
		return possible[0], nil
	}
	return "", configError(ErrUnresolvedType, "mockOverride must specify type for interface or union fields.")
}

// SerializeLeafValue implements executor.Runtime.
func (r *Resolver) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	return r.schema.SerializeLeaf(typeName, value)
}

// retype points a pending parent merge at the field type of the concrete
// object being resolved. Parents of abstract type may have guessed another
// possible type's field of the same name.
func retype(v Value, typ *schema.TypeRef) Value {
	if v.kind != kindMerge || v.node.typ == typ {
		return v
	}
	n := *v.node
	n.typ = typ
	return pending(&n)
}

func pathString(p executor.Path) string {
	s := ""
	for i, elem := range p {
		if i > 0 {
			s += "."
		}
		s += fmt.Sprint(elem)
	}
	return s
}
