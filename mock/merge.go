package mock

import (
	"fmt"
	"strconv"

	"github.com/hanpama/graphmock/internal/schema"
)

// mergeNode is a pending merge of a base mock with an override for one field
// occurrence. Nodes are created lazily, one level at a time, so mocks of
// fields the query never selects are never evaluated.
type mergeNode struct {
	base     Value
	override Value
	typ      *schema.TypeRef
	// owner is "Type.field" of the field whose base mock is being merged.
	owner string
	// path is relative to owner; nil for the field itself.
	path *Path
}

func pending(n *mergeNode) Value { return Value{kind: kindMerge, node: n} }

type engine struct {
	schema *schema.Schema
}

// resolve evaluates generators and pending merges in v. Panics raised by
// generators are not recovered here.
func (e *engine) resolve(v Value, args Args) (Value, error) {
	for {
		switch v.kind {
		case KindFunc:
			v = v.fn(args)
		case kindMerge:
			merged, err := e.merge(v.node, args)
			if err != nil {
				return Value{}, err
			}
			v = merged
		default:
			return v, nil
		}
	}
}

// merge applies override precedence to one field occurrence.
func (e *engine) merge(n *mergeNode, args Args) (Value, error) {
	base, err := e.baseValue(n, args)
	if err != nil {
		return Value{}, err
	}
	override, err := e.resolveOverride(n.override, args, n.owner, n.path.String())
	if err != nil {
		return Value{}, err
	}
	nullable := n.typ.Nullable()
	leaf := e.schema.IsLeafType(nullable)

	switch {
	case override.kind == KindNull || override.kind == KindError:
		return override, nil
	case leaf && !override.IsAbsent():
		return override, nil
	case override.IsAbsent() && (leaf || base.kind == KindError):
		return base, nil
	case base.IsAbsent() || base.kind == KindError:
		return override, nil
	case nullable.Kind == schema.TypeRefKindList:
		return e.mergeList(n, base, override)
	default:
		return e.mergeObject(n, base, override)
	}
}

func (e *engine) mergeList(n *mergeNode, base, override Value) (Value, error) {
	baseList := base.list
	var overrideList *List
	switch override.kind {
	case KindAbsent:
		overrideList = absentList(baseList.Len)
	case KindList:
		overrideList = override.list
	case KindArray:
		overrideList = arrayList(override.arr)
	default:
		return Value{}, configError(ErrInvalidOverride, fmt.Sprintf(
			"Override for '%s' at path '%s' is %s; list fields take a list or an array.", n.owner, n.path.String(), override.kind))
	}

	itemType := n.typ.Nullable().OfType
	return FromList(NewList(overrideList.Len, func(args Args, i int) Value {
		return pending(&mergeNode{
			base:     Fn(func(a Args) Value { return baseList.Item(a, i) }),
			override: Fn(func(a Args) Value { return overrideList.Item(a, i) }),
			typ:      itemType,
			owner:    n.owner,
			path:     n.path.Append(strconv.Itoa(i)),
		})
	})), nil
}

func (e *engine) mergeObject(n *mergeNode, base, override Value) (Value, error) {
	if !override.IsAbsent() && override.kind != KindObject {
		return Value{}, configError(ErrInvalidOverride, fmt.Sprintf(
			"Override for '%s' at path '%s' is %s; object fields take an object.", n.owner, n.path.String(), override.kind))
	}
	typeName := e.concreteType(n.typ.GetNamedType(), override, base)
	merged := make(map[string]Value, len(base.obj)+len(override.obj))
	add := func(key string) {
		if _, done := merged[key]; done {
			return
		}
		if key == "__typename" {
			if tn := override.obj[key]; !tn.IsAbsent() {
				merged[key] = tn
			} else {
				merged[key] = base.obj[key]
			}
			return
		}
		f := e.schema.FieldOf(typeName, key)
		if f == nil {
			// Overrides are not validated; keys the type lacks are never queried.
			return
		}
		merged[key] = pending(&mergeNode{
			base:     base.obj[key],
			override: override.obj[key],
			typ:      f.Type,
			owner:    n.owner,
			path:     n.path.Append(key),
		})
	}
	for _, key := range sortedKeys(override.obj) {
		add(key)
	}
	for _, key := range sortedKeys(base.obj) {
		add(key)
	}
	return Object(merged), nil
}

// resolveOverride is resolve for override values. A panicking override
// generator becomes an ErrOverrideThrown configuration error.
func (e *engine) resolveOverride(v Value, args Args, owner, path string) (out Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause := panicCause(r)
			err = &ConfigError{
				Code: ErrOverrideThrown,
				Message: fmt.Sprintf("Override for '%s' threw an error for path '%s'.\n"+
					"Original error:\n%v", owner, path, cause),
				Cause: cause,
			}
		}
	}()
	return e.resolve(v, args)
}

// baseValue invokes and validates the base mock of n.
func (e *engine) baseValue(n *mergeNode, args Args) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause := panicCause(r)
			err = &ConfigError{
				Code: ErrThrown,
				Message: fmt.Sprintf("Base mock for '%s' threw an error for path '%s'.\n"+
					"Base mocks are not allowed to throw errors. "+
					"In the rare case you actually want a base mock to return a GraphQL error, "+
					"have the base mock return an Error() instead of throwing one.\n"+
					"Original error:\n%v", n.owner, n.path.String(), cause),
				Cause: cause,
			}
		}
	}()
	v = n.base.Call(args)
	return v, e.validateBase(n, v)
}

// concreteType narrows an abstract type to the possible type named by the
// first __typename found in values. Other types are returned unchanged.
func (e *engine) concreteType(typeName string, values ...Value) string {
	t := e.schema.Types[typeName]
	if t == nil || !t.IsAbstract() {
		return typeName
	}
	for _, v := range values {
		name, ok := v.Field("__typename").Raw().(string)
		if ok && name != typeName && e.schema.IsPossibleType(typeName, name) {
			return name
		}
	}
	return typeName
}

func panicCause(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

func (e *engine) validateBase(n *mergeNode, v Value) error {
	nullable := n.typ.Nullable()
	var named *schema.Type
	if nullable.Kind == schema.TypeRefKindNamed {
		named = e.schema.Types[nullable.Named]
	}

	switch {
	case v.IsAbsent() && named.IsComposite():
		return nil
	case v.kind == KindError:
		return nil
	case v.kind == KindDeferred:
		return configError(ErrAsyncNotAllowed, fmt.Sprintf(
			"Base mock for '%s' returned a promise for path '%s'.\nMock functions must be synchronous.", n.owner, n.path.String()))
	case v.IsAbsent():
		if n.path != nil {
			return nil
		}
		return configError(ErrMissingValue, fmt.Sprintf(
			"Base mock for '%s' returned 'undefined'.\nBase mocks are not allowed to return 'undefined'. "+
				"Return a value compatible with type '%s'.", n.owner, nullable))
	case v.kind == KindNull:
		return configError(ErrNullNotAllowed, fmt.Sprintf(
			"Base mock for '%s' returned 'null' for path '%s'.\nBase mocks are not allowed to return 'null'. "+
				"Use 'mockOverride' to specify 'null' values instead.", n.owner, n.path.String()))
	}

	if nullable.Kind == schema.TypeRefKindList {
		if v.kind != KindList {
			return configError(ErrTypeMismatch, fmt.Sprintf(
				"Base mock for '%s' did not return a MockList for path '%s'.\n"+
					"Use 'mockList' function to mock lists in base mocks.", n.owner, n.path.String()))
		}
		return nil
	}

	if named.IsLeaf() {
		var serr error
		if v.kind == KindList {
			serr = fmt.Errorf("list given")
		} else {
			_, serr = e.schema.SerializeLeaf(named.Name, v.Interface())
		}
		if serr != nil {
			return &ConfigError{
				Code: ErrTypeMismatch,
				Message: fmt.Sprintf("Base mock for '%s' returned an invalid value for path '%s'.\n"+
					"Value '%s' is incompatible with type '%s'.", n.owner, n.path.String(), v, named.Name),
				Cause: serr,
			}
		}
		return nil
	}

	if v.kind != KindObject {
		return configError(ErrTypeMismatch, fmt.Sprintf(
			"Base mock for '%s' did not return an object for path '%s'.\n"+
				"Value '%s' is incompatible with type '%s'.", n.owner, n.path.String(), v, nullable))
	}
	owner := e.concreteType(named.Name, v)
	for _, key := range sortedKeys(v.obj) {
		if key == "__typename" || e.schema.FieldOf(owner, key) != nil {
			continue
		}
		return configError(ErrUnknownField, fmt.Sprintf(
			"Base mock for '%s' returns a value for field path '%s' that does not exist. "+
				"Base mocks should return values only for valid fields.", n.owner, n.path.Append(key).String()))
	}
	return nil
}
