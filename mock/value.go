package mock

import (
	"errors"
	"fmt"
	"reflect"
)

// Kind identifies the shape held by a Value.
type Kind uint8

const (
	// KindAbsent is the zero Value: no mock was given.
	KindAbsent Kind = iota
	KindNull
	KindScalar
	KindError
	KindObject
	KindList
	KindArray
	KindFunc
	// KindDeferred holds a value that is not yet available, such as a
	// channel. Mock generators must be synchronous so it is always rejected
	// for base mocks.
	KindDeferred
	kindMerge
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindError:
		return "error"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	case KindArray:
		return "array"
	case KindFunc:
		return "func"
	case KindDeferred:
		return "deferred"
	default:
		return "merge"
	}
}

// Args holds the coerced arguments of the field being resolved.
type Args map[string]any

// Func generates a mock from field arguments.
type Func func(args Args) Value

// ItemFunc generates the mock of one list item.
type ItemFunc func(args Args, index int) Value

// Value is a mock descriptor. The zero Value is absent.
type Value struct {
	kind Kind
	raw  any
	err  error
	obj  map[string]Value
	arr  []Value
	list *List
	fn   Func
	node *mergeNode
}

// Undefined returns the absent Value.
func Undefined() Value { return Value{} }

// Null returns an explicit null. Only overrides may use it.
func Null() Value { return Value{kind: KindNull} }

// Error returns an error marker with the given message.
func Error(message string) Value { return Err(errors.New(message)) }

// Errorf returns an error marker with a formatted message.
func Errorf(format string, args ...any) Value { return Err(fmt.Errorf(format, args...)) }

// Err wraps err as an error marker. A nil err yields Null.
func Err(err error) Value {
	if err == nil {
		return Null()
	}
	return Value{kind: KindError, err: err}
}

// Object returns a nested mock mapping field names to mocks.
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindObject, obj: fields}
}

// Array returns a literal sequence. Arrays are accepted for list fields in
// overrides only; base mocks use List.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// FromList wraps a List descriptor.
func FromList(l *List) Value {
	if l == nil {
		return Null()
	}
	return Value{kind: KindList, list: l}
}

// Fn wraps a generator.
func Fn(f Func) Value {
	if f == nil {
		return Undefined()
	}
	return Value{kind: KindFunc, fn: f}
}

// Return returns a generator that always yields Of(v).
func Return(v any) Value {
	val := Of(v)
	return Fn(func(Args) Value { return val })
}

// Deferred wraps a value that is only available asynchronously.
func Deferred(v any) Value { return Value{kind: KindDeferred, raw: v} }

// Of converts plain Go data into a Value. nil becomes Null, errors become
// error markers, maps with string keys become objects, slices become arrays,
// *List becomes a list, generator functions become Func and channels become
// Deferred. Anything else is a scalar.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case *List:
		return FromList(x)
	case error:
		return Err(x)
	case Func:
		return Fn(x)
	case func(Args) Value:
		return Fn(x)
	case func(Args) any:
		if x == nil {
			return Undefined()
		}
		return Fn(func(args Args) Value { return Of(x(args)) })
	case func() any:
		if x == nil {
			return Undefined()
		}
		return Fn(func(Args) Value { return Of(x()) })
	case map[string]Value:
		return Object(x)
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, fv := range x {
			fields[k] = Of(fv)
		}
		return Object(fields)
	case []Value:
		return Array(x...)
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = Of(item)
		}
		return Array(items...)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
	case reflect.Chan:
		return Deferred(v)
	case reflect.Map:
		if rv.IsNil() {
			return Null()
		}
		if rv.Type().Key().Kind() == reflect.String {
			fields := make(map[string]Value, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				fields[iter.Key().String()] = Of(iter.Value().Interface())
			}
			return Object(fields)
		}
	case reflect.Slice:
		if rv.IsNil() {
			return Null()
		}
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			items := make([]Value, rv.Len())
			for i := range items {
				items[i] = Of(rv.Index(i).Interface())
			}
			return Array(items...)
		}
	}
	return Value{kind: KindScalar, raw: v}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Raw returns the payload of a scalar or deferred value.
func (v Value) Raw() any { return v.raw }

// Err returns the error of an error marker.
func (v Value) Err() error { return v.err }

// Fields returns the entries of an object value.
func (v Value) Fields() map[string]Value { return v.obj }

// Field returns the entry for key of an object value, or absent.
func (v Value) Field(key string) Value {
	if v.kind != KindObject {
		return Value{}
	}
	return v.obj[key]
}

// Items returns the entries of an array value.
func (v Value) Items() []Value { return v.arr }

// List returns the descriptor of a list value.
func (v Value) List() *List { return v.list }

// Call evaluates generators with args until a non-generator value is
// produced. Other values are returned unchanged.
func (v Value) Call(args Args) Value {
	for v.kind == KindFunc {
		v = v.fn(args)
	}
	return v
}

// Interface converts the value to plain Go data: objects become
// map[string]any, arrays and lists become []any, error markers their error,
// and generators are evaluated with empty arguments.
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar, KindDeferred:
		return v.raw
	case KindError:
		return v.err
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, fv := range v.obj {
			if fv.kind == KindAbsent {
				continue
			}
			out[k] = fv.Interface()
		}
		return out
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case KindList:
		out := make([]any, v.list.Len)
		for i := range out {
			out[i] = v.list.Item(Args{}, i).Interface()
		}
		return out
	case KindFunc:
		return v.Call(Args{}).Interface()
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindAbsent:
		return "undefined"
	case KindNull:
		return "null"
	case KindError:
		return "Error: " + v.err.Error()
	case KindList:
		return fmt.Sprintf("List(%d)", v.list.Len)
	case KindFunc:
		return "func"
	case kindMerge:
		return "merge"
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
