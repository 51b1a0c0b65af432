// Package mock implements mock descriptors and the merge engine that turns
// them into field values during GraphQL execution.
//
// Three layers contribute to every field value, in increasing precedence:
// automocks generated from the schema, base mocks registered per type and
// field, and a per-query override tree keyed by response key. Base mocks are
// generators validated as they run; overrides are caller data and are never
// validated.
//
// A Value is a tagged union over the descriptor shapes: absent, null, scalar,
// error marker, nested object, List, literal array, generator and deferred.
// Generators are invoked with the field arguments and may return any shape.
//
// Errors come in two classes. Misconfigured mocks produce a *ConfigError which
// aborts the query. Error markers (see Error, Err) are data: the field
// resolves to null and the message is reported at the field's response path.
package mock
