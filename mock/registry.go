package mock

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hanpama/graphmock/internal/schema"
)

// Map holds base mocks keyed by type name, then field name. Every field entry
// must be a generator (see Fn, Return, MockList).
type Map map[string]map[string]Value

// Registry is the set of base mocks used by a server. It is populated before
// serving and read-only afterwards.
type Registry struct {
	mocks Map
}

// NewRegistry copies m into a new Registry.
func NewRegistry(m Map) *Registry {
	r := &Registry{mocks: make(Map, len(m))}
	for typeName, fields := range m {
		if fields == nil {
			r.mocks[typeName] = nil
			continue
		}
		copied := make(map[string]Value, len(fields))
		for name, v := range fields {
			copied[name] = v
		}
		r.mocks[typeName] = copied
	}
	return r
}

// Register stores v for typeName.fieldName unless an entry already exists.
// It reports whether v was stored.
func (r *Registry) Register(typeName, fieldName string, v Value) bool {
	if _, ok := r.Lookup(typeName, fieldName); ok {
		return false
	}
	fields := r.mocks[typeName]
	if fields == nil {
		fields = map[string]Value{}
		r.mocks[typeName] = fields
	}
	fields[fieldName] = v
	return true
}

// Lookup returns the entry for typeName.fieldName.
func (r *Registry) Lookup(typeName, fieldName string) (Value, bool) {
	v, ok := r.mocks[typeName][fieldName]
	if !ok || v.IsAbsent() {
		return Value{}, false
	}
	return v, true
}

// Len returns the number of field entries.
func (r *Registry) Len() int {
	n := 0
	for _, fields := range r.mocks {
		n += len(fields)
	}
	return n
}

// Automock registers, for every field of every object type that has no
// entry, the first mock produced by the provider chain. It returns the number
// of entries added.
func (r *Registry) Automock(s *schema.Schema, providers []Provider) int {
	if len(providers) == 0 {
		return 0
	}
	added := 0
	for _, typeName := range sortedKeys(s.Types) {
		t := s.Types[typeName]
		if t.Kind != schema.TypeKindObject || strings.HasPrefix(t.Name, "__") {
			continue
		}
		for _, f := range t.Fields {
			if _, ok := r.Lookup(t.Name, f.Name); ok {
				continue
			}
			if v := Provide(providers, s, t, f); !v.IsAbsent() {
				r.Register(t.Name, f.Name, v)
				added++
			}
		}
	}
	return added
}

// Validate checks the registry against s. Types and fields are visited in
// name order so the first reported error is deterministic.
func (r *Registry) Validate(s *schema.Schema) error {
	for _, typeName := range sortedKeys(r.mocks) {
		t := s.Types[typeName]
		if t == nil {
			return configError(ErrSchemaMismatch, fmt.Sprintf("mocks['%s'] is not defined in schema.", typeName))
		}
		if !t.IsComposite() {
			return configError(ErrSchemaMismatch, "baseMock can only define field mocks on Type or Interface or Union.")
		}
		fields := r.mocks[typeName]
		if fields == nil {
			return configError(ErrShape, "mocks should be an object of object of functions.")
		}
		for _, fieldName := range sortedKeys(fields) {
			f := t.Field(fieldName)
			if f == nil {
				return configError(ErrSchemaMismatch, fmt.Sprintf("mocks['%s']['%s'] is not defined in schema.", typeName, fieldName))
			}
			if fields[fieldName].Kind() != KindFunc {
				return configError(ErrShape, "mocks should be an object of object of functions.")
			}
			if t.IsAbstract() && !s.IsLeafType(f.Type) {
				return configError(ErrInterfaceLeafOnly, "It is not allowed to define mocks for non-leaf fields on interfaces or unions.")
			}
		}
	}
	return nil
}

// FieldMock returns the base mock for a field of an object type. Fields
// without an entry fall back to the single implemented interface declaring
// the field. Leaf and list fields must end up with a mock; object, interface
// and union fields may be absent.
func (r *Registry) FieldMock(s *schema.Schema, typeName, fieldName string) (Value, error) {
	if v, ok := r.Lookup(typeName, fieldName); ok {
		return v, nil
	}
	t := s.Types[typeName]
	if t == nil {
		return Value{}, configError(ErrSchemaMismatch, fmt.Sprintf("type '%s' is not defined in schema.", typeName))
	}
	f := t.Field(fieldName)
	if f == nil {
		return Value{}, configError(ErrSchemaMismatch, fmt.Sprintf("field '%s.%s' is not defined in schema.", typeName, fieldName))
	}

	var declaring []string
	for _, name := range t.Interfaces {
		if s.Types[name].Field(fieldName) != nil {
			declaring = append(declaring, name)
		}
	}
	if len(declaring) > 1 {
		return Value{}, configError(ErrAmbiguousInterface, "More than 1 interface for this field. Define base mock on the type.")
	}
	if len(declaring) == 1 {
		if v, ok := r.Lookup(declaring[0], fieldName); ok {
			return v, nil
		}
	}

	if f.Type.Nullable().Kind == schema.TypeRefKindList {
		return Value{}, configError(ErrNoBaseMock, fmt.Sprintf(
			"There is no base mock for '%s.%s'. All queried list fields must have a base mock defined using mockList.", typeName, fieldName))
	}
	if s.NamedTypeOf(f.Type).IsLeaf() {
		return Value{}, configError(ErrNoBaseMock, fmt.Sprintf(
			"There is no base mock for '%s.%s'. All queried fields must have a base mock.", typeName, fieldName))
	}
	return Value{}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
