package mock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/graphmock/internal/schema"
)

const registrySDL = `
type Query {
  object: Object
  listOfObjects: [Object]
  scalar: Int
  search: SearchResult
  twice: Twice
}

interface ObjectInterface {
  scalar: String
  object: Object
  listOfScalars: [String]
}

interface Other {
  scalar: String
}

type Object implements ObjectInterface {
  scalar: String
  object: Object
  listOfScalars: [String]
  property: String
}

type Twice implements ObjectInterface & Other {
  scalar: String
  object: Object
  listOfScalars: [String]
}

union SearchResult = Object | Twice

enum Enum { VALUE }
`

func mustSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(sdl)
	require.NoError(t, err)
	return s
}

func TestRegistry_Validate(t *testing.T) {
	s := mustSchema(t, registrySDL)
	noop := Return("x")
	cases := []struct {
		name    string
		mocks   Map
		code    error
		message string
	}{
		{
			name:    "unknown type",
			mocks:   Map{"DoesNotExist": {}},
			code:    ErrSchemaMismatch,
			message: "mocks['DoesNotExist'] is not defined in schema.",
		},
		{
			name:    "nil field map",
			mocks:   Map{"Object": nil},
			code:    ErrShape,
			message: "mocks should be an object of object of functions.",
		},
		{
			name:    "unknown field",
			mocks:   Map{"Object": {"doesNotExist": noop}},
			code:    ErrSchemaMismatch,
			message: "mocks['Object']['doesNotExist'] is not defined in schema.",
		},
		{
			name:    "enum",
			mocks:   Map{"Enum": {"VALUE": noop}},
			code:    ErrSchemaMismatch,
			message: "baseMock can only define field mocks on Type or Interface or Union.",
		},
		{
			name:    "not a generator",
			mocks:   Map{"Object": {"property": Object(nil)}},
			code:    ErrShape,
			message: "mocks should be an object of object of functions.",
		},
		{
			name:    "interface object field",
			mocks:   Map{"ObjectInterface": {"object": noop}},
			code:    ErrInterfaceLeafOnly,
			message: "It is not allowed to define mocks for non-leaf fields on interfaces or unions.",
		},
		{
			name:    "interface list of scalars",
			mocks:   Map{"ObjectInterface": {"listOfScalars": MockList(1, nil)}},
			code:    ErrInterfaceLeafOnly,
			message: "It is not allowed to define mocks for non-leaf fields on interfaces or unions.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewRegistry(tc.mocks).Validate(s)
			require.ErrorIs(t, err, tc.code)
			require.EqualError(t, err, tc.message)
		})
	}

	t.Run("valid", func(t *testing.T) {
		err := NewRegistry(Map{
			"Query":           {"object": Return(map[string]any{})},
			"Object":          {"property": noop},
			"ObjectInterface": {"scalar": noop},
		}).Validate(s)
		require.NoError(t, err)
	})
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry(Map{"Object": {"property": Return("user")}})
	require.False(t, r.Register("Object", "property", Return("auto")))
	require.True(t, r.Register("Object", "scalar", Return("auto")))
	require.True(t, r.Register("Query", "scalar", Return(1)))
	require.Equal(t, 3, r.Len())

	v, ok := r.Lookup("Object", "property")
	require.True(t, ok)
	require.Equal(t, "user", v.Call(nil).Raw())

	_, ok = r.Lookup("Object", "missing")
	require.False(t, ok)
}

func TestNewRegistry_Copies(t *testing.T) {
	m := Map{"Object": {"property": Return("a")}}
	r := NewRegistry(m)
	m["Object"]["scalar"] = Return("b")
	_, ok := r.Lookup("Object", "scalar")
	require.False(t, ok)
}

func TestRegistry_FieldMock(t *testing.T) {
	s := mustSchema(t, registrySDL)
	r := NewRegistry(Map{
		"ObjectInterface": {"scalar": Return("ObjectInterface.scalar")},
		"Query":           {"scalar": Return(1)},
	})

	t.Run("own mock", func(t *testing.T) {
		v, err := r.FieldMock(s, "Query", "scalar")
		require.NoError(t, err)
		require.Equal(t, 1, v.Call(nil).Raw())
	})

	t.Run("interface fallback", func(t *testing.T) {
		v, err := r.FieldMock(s, "Object", "scalar")
		require.NoError(t, err)
		require.Equal(t, "ObjectInterface.scalar", v.Call(nil).Raw())
	})

	t.Run("ambiguous interface", func(t *testing.T) {
		_, err := r.FieldMock(s, "Twice", "scalar")
		require.ErrorIs(t, err, ErrAmbiguousInterface)
		require.EqualError(t, err, "More than 1 interface for this field. Define base mock on the type.")
	})

	t.Run("object field may be absent", func(t *testing.T) {
		v, err := r.FieldMock(s, "Query", "object")
		require.NoError(t, err)
		require.True(t, v.IsAbsent())

		v, err = r.FieldMock(s, "Query", "search")
		require.NoError(t, err)
		require.True(t, v.IsAbsent())
	})

	t.Run("list without mock", func(t *testing.T) {
		_, err := r.FieldMock(s, "Query", "listOfObjects")
		require.ErrorIs(t, err, ErrNoBaseMock)
		require.EqualError(t, err, "There is no base mock for 'Query.listOfObjects'. "+
			"All queried list fields must have a base mock defined using mockList.")
	})

	t.Run("leaf without mock", func(t *testing.T) {
		_, err := r.FieldMock(s, "Object", "property")
		require.ErrorIs(t, err, ErrNoBaseMock)
		require.EqualError(t, err, "There is no base mock for 'Object.property'. All queried fields must have a base mock.")
	})
}

func TestRegistry_Automock(t *testing.T) {
	s := mustSchema(t, registrySDL)
	stringsOnly := func(_ *schema.Schema, _ *schema.Type, field *schema.Field, _ []Provider) Value {
		if ref := field.Type.Nullable(); ref.Kind == schema.TypeRefKindNamed && ref.Named == "String" {
			return Return("auto")
		}
		return Undefined()
	}
	r := NewRegistry(Map{"Object": {"property": Return("user")}})
	added := r.Automock(s, []Provider{stringsOnly})
	// Object.scalar and Twice.scalar; interfaces are not automocked.
	require.Equal(t, 2, added)

	v, _ := r.Lookup("Object", "property")
	require.Equal(t, "user", v.Call(nil).Raw())
	v, _ = r.Lookup("Twice", "scalar")
	require.Equal(t, "auto", v.Call(nil).Raw())
	_, ok := r.Lookup("ObjectInterface", "scalar")
	require.False(t, ok)

	require.Equal(t, 0, NewRegistry(nil).Automock(s, nil))
}

func TestProvide_FirstWins(t *testing.T) {
	s := mustSchema(t, registrySDL)
	var calls []string
	p := func(name string, v Value) Provider {
		return func(*schema.Schema, *schema.Type, *schema.Field, []Provider) Value {
			calls = append(calls, name)
			return v
		}
	}
	chain := []Provider{p("a", Undefined()), p("b", Return("b")), p("c", Return("c"))}
	obj := s.Types["Object"]
	got := Provide(chain, s, obj, obj.Field("property"))
	require.Equal(t, "b", got.Call(nil).Raw())
	require.Equal(t, []string{"a", "b"}, calls)
}
