// Package automock provides the default base-mock providers: random values
// for built-in scalars and enums, lists of generated items, and Relay
// connection shapes.
package automock

import (
	"github.com/hanpama/graphmock/internal/schema"
	"github.com/hanpama/graphmock/mock"
	"github.com/hanpama/graphmock/random"
)

// DefaultListSize is the length of automocked lists.
const DefaultListSize = 2

// Defaults returns the standard provider chain: scalars, enums, lists, relay.
func Defaults(src random.Source) []mock.Provider {
	return []mock.Provider{
		Scalars(ScalarMocks(src)),
		Enums(src),
		Lists,
		Relay(src),
	}
}

// ScalarMocks returns generators for the built-in scalar types.
func ScalarMocks(src random.Source) map[string]mock.Func {
	return map[string]mock.Func{
		"Boolean": func(mock.Args) mock.Value { return mock.Of(src.Boolean()) },
		"ID":      func(mock.Args) mock.Value { return mock.Of(src.UUID()) },
		"Int":     func(mock.Args) mock.Value { return mock.Of(src.Int(-100, 100)) },
		"Float":   func(mock.Args) mock.Value { return mock.Of(src.Float(-100, 100)) },
		"String":  func(mock.Args) mock.Value { return mock.Of(src.String(5)) },
	}
}

// Scalars mocks fields whose type, ignoring Non-Null, is a scalar named in
// mocks.
func Scalars(mocks map[string]mock.Func) mock.Provider {
	return func(s *schema.Schema, parent *schema.Type, field *schema.Field, chain []mock.Provider) mock.Value {
		t := field.Type.Nullable()
		if t.Kind != schema.TypeRefKindNamed {
			return mock.Undefined()
		}
		if f, ok := mocks[t.Named]; ok {
			return mock.Fn(f)
		}
		return mock.Undefined()
	}
}

// Enums mocks enum fields with a random declared value.
func Enums(src random.Source) mock.Provider {
	return func(s *schema.Schema, parent *schema.Type, field *schema.Field, chain []mock.Provider) mock.Value {
		t := field.Type.Nullable()
		if t.Kind != schema.TypeRefKindNamed {
			return mock.Undefined()
		}
		enum := s.Types[t.Named]
		if enum == nil || enum.Kind != schema.TypeKindEnum || len(enum.EnumValues) == 0 {
			return mock.Undefined()
		}
		return mock.Fn(func(mock.Args) mock.Value {
			return mock.Of(enum.EnumValues[src.Int(0, len(enum.EnumValues)-1)].Name)
		})
	}
}

// Lists mocks list fields with DefaultListSize items. Item mocks come from
// running the chain on the element type; items without one are empty objects.
func Lists(s *schema.Schema, parent *schema.Type, field *schema.Field, chain []mock.Provider) mock.Value {
	t := field.Type.Nullable()
	if t.Kind != schema.TypeRefKindList {
		return mock.Undefined()
	}
	elem := *field
	elem.Type = t.OfType
	itemMock := mock.Provide(chain, s, parent, &elem)
	if itemMock.IsAbsent() {
		return mock.MockList(DefaultListSize, nil)
	}
	return mock.MockList(DefaultListSize, func(args mock.Args, _ int) mock.Value {
		return itemMock.Call(args)
	})
}
