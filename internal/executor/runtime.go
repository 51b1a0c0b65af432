package executor

import (
	"context"

	schema "github.com/hanpama/graphmock/internal/schema"
)

// Runtime defines the host integration surface for field resolution, abstract
// type resolution, and leaf-value serialization used by the Executor.
//
// General contract
//   - The Executor walks the selection set depth-first and in document order,
//     calling ResolveSync once per field occurrence and completing the value
//     (including nested selection sets) before moving to the next sibling.
//   - A value returned from ResolveSync that implements error is a field error:
//     the Executor records it as a located GraphQL error and completes the
//     field as null, propagating through Non-Null parents.
//   - A non-nil error returned from ResolveSync or ResolveType stops the whole
//     execution; ExecuteRequest returns it instead of a result.
//   - Implementations must be safe for concurrent use across operations and
//     must not mutate source or args values.
//
// Abstract types and leaf values
//   - ResolveType must return the concrete type name for interface/union values.
//   - SerializeLeafValue must coerce/serialize scalars and enums into JSON-safe
//     Go values. Its errors are field errors.
type Runtime interface {
	// ResolveSync resolves a field value.
	//
	// Return (nil, nil) to produce a GraphQL null for nullable fields.
	ResolveSync(ctx context.Context, info ResolveInfo, source any, args map[string]any) (any, error)

	// ResolveType determines the concrete runtime type name for a value of an
	// abstract GraphQL type (interface or union).
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeafValue serializes a scalar or enum value to a JSON-safe Go
	// value according to the GraphQL schema.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

// ResolveInfo describes the field occurrence being resolved.
type ResolveInfo struct {
	// ObjectType is the parent GraphQL object type name for the field.
	ObjectType string
	// FieldName is the schema field name.
	FieldName string
	// ResponseKey is the alias if one was given, otherwise the field name.
	ResponseKey string
	// Path is the response path of the field, including ResponseKey.
	Path Path
	// ReturnType is the declared type of the field.
	ReturnType *schema.TypeRef
}
