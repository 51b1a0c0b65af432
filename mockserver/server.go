// Package mockserver builds a queryable GraphQL server whose data comes
// entirely from mocks.
package mockserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hanpama/graphmock/automock"
	"github.com/hanpama/graphmock/internal/executor"
	"github.com/hanpama/graphmock/internal/introspection"
	"github.com/hanpama/graphmock/internal/language"
	"github.com/hanpama/graphmock/internal/logging"
	"github.com/hanpama/graphmock/internal/schema"
	"github.com/hanpama/graphmock/mock"
	"github.com/hanpama/graphmock/random"
)

// Result is the outcome of a query.
type Result = executor.ExecutionResult

// Request is a single GraphQL operation.
type Request struct {
	Query         string
	OperationName string
	Variables     map[string]any
	// Override is the mock override tree for this request, keyed by response
	// key. Plain Go data is converted with mock.Of.
	Override any
}

// Server answers queries against a schema with mocked data. It is safe for
// concurrent use.
type Server struct {
	schema   *schema.Schema
	registry *mock.Registry
	exec     *executor.Executor
	logger   *slog.Logger
}

type options struct {
	providers    []mock.Provider
	providersSet bool
	random       random.Source
	logger       *slog.Logger
	noIntrospect bool
}

// Option configures New.
type Option func(*options)

// WithProviders replaces the automock provider chain. Calling it with no
// providers disables automocking.
func WithProviders(providers ...mock.Provider) Option {
	return func(o *options) {
		o.providers = providers
		o.providersSet = true
	}
}

// WithRandom sets the random source of the default providers.
func WithRandom(src random.Source) Option {
	return func(o *options) { o.random = src }
}

// WithLogger sets the logger. Logging is disabled by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithoutIntrospection makes __schema and __type unavailable.
func WithoutIntrospection() Option {
	return func(o *options) { o.noIntrospect = true }
}

// New parses sdl, registers automocks for fields mocks leaves unset and
// validates the result against the schema.
func New(sdl string, mocks mock.Map, opts ...Option) (*Server, error) {
	s, err := schema.BuildFromSDL(sdl)
	if err != nil {
		return nil, err
	}
	return NewFromSchema(s, mocks, opts...)
}

// NewFromSchema is New for an already built schema. The schema must carry
// its AST so queries can be validated.
func NewFromSchema(s *schema.Schema, mocks mock.Map, opts ...Option) (*Server, error) {
	o := options{logger: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if s.AST == nil {
		return nil, fmt.Errorf("schema was not built from SDL")
	}
	if !o.providersSet {
		src := o.random
		if src == nil {
			src = random.Default()
		}
		o.providers = automock.Defaults(src)
	}

	registry := mock.NewRegistry(mocks)
	added := registry.Automock(s, o.providers)
	if err := registry.Validate(s); err != nil {
		return nil, err
	}
	o.logger.Debug("mock registry ready",
		slog.Int("types", len(s.Types)),
		slog.Int("mocks", registry.Len()),
		slog.Int("automocks", added),
	)

	var runtime executor.Runtime = mock.NewResolver(s, registry)
	execSchema := s
	if !o.noIntrospect {
		w, err := introspection.Wrap(runtime, s)
		if err != nil {
			return nil, err
		}
		runtime, execSchema = w.Runtime, w.Schema
	}

	return &Server{
		schema:   s,
		registry: registry,
		exec:     executor.NewExecutor(runtime, execSchema),
		logger:   o.logger,
	}, nil
}

// Schema returns the server's schema.
func (s *Server) Schema() *schema.Schema { return s.schema }

// Query executes query with variables and an optional override tree.
func (s *Server) Query(ctx context.Context, query string, variables map[string]any, override any) (*Result, error) {
	return s.Execute(ctx, Request{Query: query, Variables: variables, Override: override})
}

// Execute runs req. Syntax, validation and variable errors are reported in
// the result; mock configuration errors are returned as error.
func (s *Server) Execute(ctx context.Context, req Request) (res *Result, err error) {
	doc, errs := language.LoadQuery(s.schema.AST, req.Query)
	if len(errs) > 0 {
		out := make([]executor.GraphQLError, len(errs))
		for i, e := range errs {
			out[i] = executor.GraphQLError{Message: e.Message}
		}
		return &Result{Errors: out}, nil
	}

	override := mock.Of(req.Override)
	switch override.Kind() {
	case mock.KindNull:
		override = mock.Undefined()
	case mock.KindAbsent, mock.KindObject:
	default:
		return nil, &mock.ConfigError{
			Code:    mock.ErrInvalidOverride,
			Message: fmt.Sprintf("mockOverride must be an object, got %s.", override.Kind()),
		}
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("query execution panicked: %v", r)
		}
	}()
	res, err = s.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, mock.RootSource(override))
	if err != nil {
		s.logger.Debug("query failed", slog.String("operation", req.OperationName), slog.Any("error", err))
		return nil, err
	}
	return res, nil
}
