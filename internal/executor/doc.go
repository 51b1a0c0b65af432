// Package executor implements a synchronous, depth-first GraphQL executor with
// explicit runtime hooks for field resolution, abstract-type resolution, and
// leaf serialization.
//
// # Preparation
//
// Before execution, the executor:
//  1. Chooses the operation (by name or by uniqueness when unnamed). The
//     document is assumed to be validated against the schema by the caller.
//  2. Coerces variables from the provided input against operation variable
//     definitions. Errors here stop execution and are reported in the result.
//  3. Determines the root object type from the operation (Query/Mutation/
//     Subscription) and collects the root selection set.
//
// # Execution Model
//
// Fields are collected per object type (merging same response keys, applying
// @skip/@include, and matching fragment type conditions against the concrete
// type, the interfaces it implements and the unions listing it). Each field
// group is resolved with Runtime.ResolveSync and completed immediately, so the
// runtime observes fields in document order, parents before children.
//
// # Value Completion
//
//   - Field error: a resolved value implementing error becomes a located error
//     and the field completes to null.
//   - Non-Null: unwrap and complete the inner type. If the inner completion
//     produced null, record a Non-Null violation and propagate null upwards.
//   - List: complete each element recursively with index-aware paths. A null
//     element for a Non-Null inner type nullifies the entire list value.
//   - Leaf (Scalar/Enum): defer to Runtime.SerializeLeafValue.
//   - Abstract (Interface/Union): defer to Runtime.ResolveType, check the name
//     is a possible type, then complete as an object.
//
// # Errors
//
// Field errors are accumulated as located GraphQL errors (message + path) while
// sibling fields keep resolving. Errors returned by Runtime.ResolveSync or
// Runtime.ResolveType are not field errors: they abort execution and are
// returned by ExecuteRequest, so a misconfigured runtime never hides behind a
// partial result.
package executor
