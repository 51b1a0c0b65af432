package mock

import "errors"

// Configuration error codes. Match them with errors.Is.
var (
	// ErrSchemaMismatch: a registry entry names a type or field the schema
	// does not define, or a type that cannot carry field mocks.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrShape: the registry is not a map of maps of generators.
	ErrShape = errors.New("invalid mock shape")
	// ErrInterfaceLeafOnly: an interface or union mock targets a non-leaf field.
	ErrInterfaceLeafOnly = errors.New("interface mocks are leaf only")
	// ErrThrown: a base mock generator panicked.
	ErrThrown = errors.New("base mock panicked")
	// ErrOverrideThrown: an override generator panicked.
	ErrOverrideThrown = errors.New("override panicked")
	// ErrAsyncNotAllowed: a base mock returned a deferred value.
	ErrAsyncNotAllowed = errors.New("asynchronous base mock")
	// ErrMissingValue: a base mock returned nothing for a queried field.
	ErrMissingValue = errors.New("missing base mock value")
	// ErrNullNotAllowed: a base mock returned null.
	ErrNullNotAllowed = errors.New("null base mock value")
	// ErrTypeMismatch: a base mock value does not fit the field type.
	ErrTypeMismatch = errors.New("base mock type mismatch")
	// ErrUnknownField: a base mock object has a key the type does not define.
	ErrUnknownField = errors.New("unknown field in base mock")
	// ErrAmbiguousInterface: several interfaces could supply the field mock.
	ErrAmbiguousInterface = errors.New("ambiguous interface mock")
	// ErrNoBaseMock: a queried leaf or list field has no base mock.
	ErrNoBaseMock = errors.New("no base mock")
	// ErrUnresolvedType: the concrete type of an abstract value is unknown.
	ErrUnresolvedType = errors.New("unresolved abstract type")
	// ErrInvalidOverride: an override does not fit the field's shape.
	ErrInvalidOverride = errors.New("invalid override")
)

// ConfigError reports a mistake in the mock setup. It is never turned into a
// GraphQL field error.
type ConfigError struct {
	Code    error
	Message string
	// Cause is the recovered panic value or underlying error, if any.
	Cause error
}

func (e *ConfigError) Error() string { return e.Message }

func (e *ConfigError) Is(target error) bool { return target == e.Code }

func (e *ConfigError) Unwrap() error { return e.Cause }

func configError(code error, message string) *ConfigError {
	return &ConfigError{Code: code, Message: message}
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
