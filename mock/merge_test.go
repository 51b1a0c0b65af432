package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const mergeSDL = `
type Query {
  object: Object
}

type Object {
  property: String
  object: Object
  listOfObjects: [Object]
}
`

func mergeField(t *testing.T, e *engine, field string, base, override Value) (Value, error) {
	t.Helper()
	f := e.schema.Types["Object"].Field(field)
	require.NotNil(t, f)
	return e.merge(&mergeNode{base: base, override: override, typ: f.Type, owner: "Object." + field}, Args{})
}

func TestMerge_Precedence(t *testing.T) {
	e := &engine{schema: mustSchema(t, mergeSDL)}
	boom := Error("boom")

	cases := []struct {
		name     string
		field    string
		base     Value
		override Value
		want     any
		kind     Kind
	}{
		{"null override wins", "property", Return("base"), Null(), nil, KindNull},
		{"error override wins", "object", Return(map[string]any{}), boom, nil, KindError},
		{"leaf override wins", "property", Return("base"), Of("override"), "override", KindScalar},
		{"absent override keeps leaf base", "property", Return("base"), Undefined(), "base", KindScalar},
		{"absent override keeps base error", "object", Fn(func(Args) Value { return boom }), Undefined(), nil, KindError},
		{"base error yields to override", "object", Fn(func(Args) Value { return boom }), Of(map[string]any{}), map[string]any{}, KindObject},
		{"absent base takes override", "object", Undefined(), Of(map[string]any{}), map[string]any{}, KindObject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := mergeField(t, e, tc.field, tc.base, tc.override)
			require.NoError(t, err)
			require.Equal(t, tc.kind, got.Kind())
			if tc.want != nil {
				require.Equal(t, tc.want, got.Interface())
			}
		})
	}
}

func TestMerge_ObjectIsLazy(t *testing.T) {
	e := &engine{schema: mustSchema(t, mergeSDL)}
	calls := 0
	base := Return(map[string]any{
		"property": "base",
		"object": Fn(func(Args) Value {
			calls++
			return Object(nil)
		}),
	})
	got, err := mergeField(t, e, "object", base, Of(map[string]any{
		"property":   "override",
		"notInQuery": "ignored",
	}))
	require.NoError(t, err)
	require.Equal(t, KindObject, got.Kind())
	require.Equal(t, 0, calls)
	require.True(t, got.Field("notInQuery").IsAbsent())

	property, err := e.resolve(got.Field("property"), Args{})
	require.NoError(t, err)
	require.Equal(t, "override", property.Raw())

	_, err = e.resolve(got.Field("object"), Args{})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestMerge_Lists(t *testing.T) {
	e := &engine{schema: mustSchema(t, mergeSDL)}
	base := MockList(1, func(_ Args, i int) Value {
		return Of(map[string]any{"property": "base"})
	})

	t.Run("override array sets length", func(t *testing.T) {
		got, err := mergeField(t, e, "listOfObjects", base, Array(Of(map[string]any{}), Null(), Undefined()))
		require.NoError(t, err)
		require.Equal(t, 3, got.List().Len)

		item, err := e.resolve(got.List().Item(Args{}, 2), Args{})
		require.NoError(t, err)
		require.Equal(t, KindObject, item.Kind())
		property, err := e.resolve(item.Field("property"), Args{})
		require.NoError(t, err)
		require.Equal(t, "base", property.Raw())

		item, err = e.resolve(got.List().Item(Args{}, 1), Args{})
		require.NoError(t, err)
		require.True(t, item.IsNull())
	})

	t.Run("absent override keeps base length", func(t *testing.T) {
		got, err := mergeField(t, e, "listOfObjects", base, Undefined())
		require.NoError(t, err)
		require.Equal(t, 1, got.List().Len)
	})

	t.Run("object override", func(t *testing.T) {
		_, err := mergeField(t, e, "listOfObjects", base, Of(map[string]any{}))
		require.ErrorIs(t, err, ErrInvalidOverride)
	})

	t.Run("item errors carry the index path", func(t *testing.T) {
		bad := MockList(2, func(_ Args, i int) Value {
			if i == 1 {
				return Of("not an object")
			}
			return Object(nil)
		})
		got, err := mergeField(t, e, "listOfObjects", bad, Undefined())
		require.NoError(t, err)
		_, err = e.resolve(got.List().Item(Args{}, 1), Args{})
		require.ErrorIs(t, err, ErrTypeMismatch)
		require.ErrorContains(t, err, "for path '1'")
	})
}

func TestMerge_BaseValidation(t *testing.T) {
	e := &engine{schema: mustSchema(t, mergeSDL)}
	cases := []struct {
		name  string
		field string
		base  Value
		code  error
	}{
		{"null", "property", Return(nil), ErrNullNotAllowed},
		{"deferred", "property", Return(make(chan int)), ErrAsyncNotAllowed},
		{"missing leaf", "property", Fn(func(Args) Value { return Undefined() }), ErrMissingValue},
		{"list for leaf", "property", MockList(1, nil), ErrTypeMismatch},
		{"scalar for list", "listOfObjects", Return(1), ErrTypeMismatch},
		{"array for list", "listOfObjects", Return([]any{}), ErrTypeMismatch},
		{"unknown key", "object", Return(map[string]any{"nope": 1}), ErrUnknownField},
		{"panic", "property", Fn(func(Args) Value { panic("boom") }), ErrThrown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := mergeField(t, e, tc.field, tc.base, Undefined())
			require.ErrorIs(t, err, tc.code)
			require.True(t, IsConfigError(err))
		})
	}

	t.Run("panic keeps its cause", func(t *testing.T) {
		cause := errors.New("cause")
		_, err := mergeField(t, e, "property", Fn(func(Args) Value { panic(cause) }), Undefined())
		require.ErrorIs(t, err, cause)
	})

	t.Run("override panic", func(t *testing.T) {
		cause := errors.New("override cause")
		_, err := mergeField(t, e, "property", Return("base"), Fn(func(Args) Value { panic(cause) }))
		require.ErrorIs(t, err, ErrOverrideThrown)
		require.ErrorIs(t, err, cause)
		require.True(t, IsConfigError(err))
	})

	t.Run("absent object is allowed", func(t *testing.T) {
		got, err := mergeField(t, e, "object", Fn(func(Args) Value { return Undefined() }), Undefined())
		require.NoError(t, err)
		require.True(t, got.IsAbsent())
	})

	t.Run("typename is accepted", func(t *testing.T) {
		_, err := mergeField(t, e, "object", Return(map[string]any{"__typename": "Object"}), Undefined())
		require.NoError(t, err)
	})
}

func TestResolver_ResolveType(t *testing.T) {
	s := mustSchema(t, registrySDL)
	r := NewResolver(s, NewRegistry(nil))
	ctx := context.Background()

	name, err := r.ResolveType(ctx, "SearchResult", &Source{override: Of(map[string]any{"__typename": "Twice"})})
	require.NoError(t, err)
	require.Equal(t, "Twice", name)

	name, err = r.ResolveType(ctx, "SearchResult", &Source{parent: Of(map[string]any{"__typename": "Object"})})
	require.NoError(t, err)
	require.Equal(t, "Object", name)

	_, err = r.ResolveType(ctx, "SearchResult", &Source{})
	require.ErrorIs(t, err, ErrUnresolvedType)
}
