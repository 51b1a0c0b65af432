package executor

import (
	"context"
	"fmt"
	"sync"
)

// MockResolver resolves a single field occurrence for MockRuntime.
type MockResolver func(ctx context.Context, source any, args map[string]any) (any, error)

// NewMockValueResolver returns a MockResolver that always returns the provided value.
func NewMockValueResolver(val any) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return val, nil
	}
}

// NewMockFieldErrorResolver returns a MockResolver that resolves to err as a
// field error.
func NewMockFieldErrorResolver(err error) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return err, nil
	}
}

// Call represents a single ResolveSync invocation record.
type Call struct {
	ObjectType  string
	Field       string
	ResponseKey string
	Path        Path
	Source      any
	Args        map[string]any
}

// MockRuntime implements Runtime with a resolver registry keyed by
// "ObjectType.Field" and a call log. Unregistered fields project the key of a
// map[string]any source.
type MockRuntime struct {
	mu        sync.Mutex
	resolvers map[string]MockResolver
	calls     []Call

	typeResolver func(value any) (string, error)
	serializer   func(typeName string, val any) (any, error)
}

// NewMockRuntime creates a MockRuntime with the provided resolvers.
func NewMockRuntime(resolvers map[string]MockResolver) *MockRuntime {
	m := &MockRuntime{
		resolvers: make(map[string]MockResolver, len(resolvers)),
		typeResolver: func(value any) (string, error) {
			if m, ok := value.(map[string]any); ok {
				if typename, ok := m["__typename"].(string); ok {
					return typename, nil
				}
			}
			return "", fmt.Errorf("cannot resolve type")
		},
	}
	for k, v := range resolvers {
		m.resolvers[k] = v
	}
	return m
}

// SetTypeResolver replaces the ResolveType hook.
func (m *MockRuntime) SetTypeResolver(f func(value any) (string, error)) {
	m.mu.Lock()
	m.typeResolver = f
	m.mu.Unlock()
}

// SetSerializer replaces the SerializeLeafValue hook.
func (m *MockRuntime) SetSerializer(f func(typeName string, val any) (any, error)) {
	m.mu.Lock()
	m.serializer = f
	m.mu.Unlock()
}

// ResolveSync implements Runtime.ResolveSync.
func (m *MockRuntime) ResolveSync(ctx context.Context, info ResolveInfo, source any, args map[string]any) (any, error) {
	m.mu.Lock()
	r := m.resolvers[info.ObjectType+"."+info.FieldName]
	m.calls = append(m.calls, Call{
		ObjectType:  info.ObjectType,
		Field:       info.FieldName,
		ResponseKey: info.ResponseKey,
		Path:        info.Path,
		Source:      source,
		Args:        args,
	})
	m.mu.Unlock()

	if r != nil {
		return r(ctx, source, args)
	}
	if src, ok := source.(map[string]any); ok {
		return src[info.FieldName], nil
	}
	return nil, nil
}

// ResolveType implements Runtime.ResolveType
func (m *MockRuntime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	m.mu.Lock()
	f := m.typeResolver
	m.mu.Unlock()
	return f(value)
}

// SerializeLeafValue implements Runtime.SerializeLeafValue
func (m *MockRuntime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	m.mu.Lock()
	f := m.serializer
	m.mu.Unlock()
	if f == nil {
		return value, nil
	}
	return f(scalarOrEnumTypeName, value)
}

// GetCalls returns a copy of the recorded calls in order.
func (m *MockRuntime) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}
