package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"github.com/hanpama/graphmock/internal/eventbus"
	"github.com/hanpama/graphmock/internal/logging"
	"github.com/hanpama/graphmock/internal/mockfile"
	"github.com/hanpama/graphmock/internal/otel"
	"github.com/hanpama/graphmock/internal/server"
	"github.com/hanpama/graphmock/mock"
	"github.com/hanpama/graphmock/mockserver"
	"github.com/hanpama/graphmock/random"
)

const rootUsage = `graphmock: mock GraphQL server

USAGE:
  graphmock <command> [flags]

COMMANDS:
  serve            Serve mocked data for a schema over HTTP
  query            Run one query against mocked data and print the result
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -schema <file>                 GraphQL SDL file (required)
  -mocks <file>                  YAML/JSON mock file; its override is ignored
  -seed <string>                 Seed for generated values (default: graphql!)
  -automock <bool>               Generate mocks for unmocked fields (default: true)
  -introspection <bool>          Answer __schema and __type queries (default: true)
  -server.addr <addr>            HTTP listen address (default: :8080)
  -server.pretty                 Pretty-print JSON responses
  -server.timeout <duration>     Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body <bytes>       Request body limit, 0 for none (default: 1048576)
  -server.cors <origin>          Allowed CORS origin, * for any. Repeatable
  -log.level <level>             debug, info, warn or error (default: info)
  -log.format <format>           text or json (default: text)
  -otel.endpoint <addr>          OTLP collector endpoint
  -otel.service <name>           OpenTelemetry service name (default: graphmock)
`

const queryUsage = `query FLAGS:
  -schema <file>                 GraphQL SDL file (required)
  -mocks <file>                  YAML/JSON mock file
  -seed <string>                 Seed for generated values (default: graphql!)
  -automock <bool>               Generate mocks for unmocked fields (default: true)
  -introspection <bool>          Answer __schema and __type queries (default: true)
  -query <query|@file>           Query text, or @path to read it from a file (required)
  -operation <name>              Operation to run
  -variables <json>              Variables as a JSON object
  -override <file>               YAML/JSON override; replaces the mock file's override
  -pretty                        Pretty-print the result
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "graphmock:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("graphmock", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs, stderr)
	case "query":
		return cmdQuery(cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Fprint(stdout, serveUsage)
	case "query":
		fmt.Fprint(stdout, queryUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return strings.Join(*s, ",") }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// mockFlags are the flags shared by serve and query.
type mockFlags struct {
	schema        string
	mocks         string
	seed          string
	automock      bool
	introspection bool
}

func (m *mockFlags) register(fs *flag.FlagSet) {
	m.automock = true
	m.introspection = true
	fs.StringVar(&m.schema, "schema", "", "GraphQL SDL file")
	fs.StringVar(&m.mocks, "mocks", "", "YAML/JSON mock file")
	fs.StringVar(&m.seed, "seed", "", "Seed for generated values")
	fs.BoolVar(&m.automock, "automock", m.automock, "Generate mocks for unmocked fields")
	fs.BoolVar(&m.introspection, "introspection", m.introspection, "Answer __schema and __type")
}

// build loads the schema and mock file and returns the mock server along
// with the mock file's override.
func (m *mockFlags) build(logger *slog.Logger) (*mockserver.Server, mock.Value, error) {
	if m.schema == "" {
		return nil, mock.Undefined(), fmt.Errorf("-schema is required")
	}
	sdl, err := os.ReadFile(m.schema)
	if err != nil {
		return nil, mock.Undefined(), fmt.Errorf("read schema: %w", err)
	}
	file := &mockfile.File{}
	if m.mocks != "" {
		if file, err = mockfile.Load(m.mocks); err != nil {
			return nil, mock.Undefined(), fmt.Errorf("load mocks: %w", err)
		}
	}

	opts := []mockserver.Option{mockserver.WithLogger(logger)}
	if !m.automock {
		opts = append(opts, mockserver.WithProviders())
	}
	if !m.introspection {
		opts = append(opts, mockserver.WithoutIntrospection())
	}
	if m.seed != "" {
		opts = append(opts, mockserver.WithRandom(random.New(m.seed)))
	}
	srv, err := mockserver.New(string(sdl), file.Mocks, opts...)
	if err != nil {
		return nil, mock.Undefined(), fmt.Errorf("build mock server: %w", err)
	}
	return srv, file.Override, nil
}

func cmdServe(args []string, stderr io.Writer) error {
	var mf mockFlags
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	maxBody := int64(1 << 20)
	var cors stringListFlag
	logLevel := "info"
	logFormat := "text"
	otelEndpoint := ""
	otelService := "graphmock"

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	mf.register(fs)
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Int64Var(&maxBody, "server.max-body", maxBody, "Request body limit")
	fs.Var(&cors, "server.cors", "Allowed CORS origin")
	fs.StringVar(&logLevel, "log.level", logLevel, "Log level")
	fs.StringVar(&logFormat, "log.format", logFormat, "Log format")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, serveUsage)
		return err
	}
	logger, err := newLogger(logLevel, logFormat, stderr)
	if err != nil {
		fmt.Fprint(stderr, serveUsage)
		return err
	}
	if mf.schema == "" {
		fmt.Fprint(stderr, serveUsage)
		return fmt.Errorf("-schema is required")
	}

	srv, _, err := mf.build(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventbus.Use(eventbus.New())
	defer logging.SubscribeOperations(logger)()
	shutdown, err := otel.Setup(ctx, otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	sopts := []server.Option{server.WithLogger(logger), server.WithMaxBodyBytes(maxBody)}
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if len(cors) > 0 {
		sopts = append(sopts, server.WithCORS(cors...))
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", server.New(srv, sopts...))
	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	logger.Info("GraphQL mock server listening", slog.String("addr", addr), slog.String("schema", mf.schema))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func cmdQuery(args []string, stdout, stderr io.Writer) error {
	var mf mockFlags
	query := ""
	operation := ""
	variables := ""
	overrideFile := ""
	pretty := false

	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	mf.register(fs)
	fs.StringVar(&query, "query", query, "Query text or @file")
	fs.StringVar(&operation, "operation", operation, "Operation to run")
	fs.StringVar(&variables, "variables", variables, "Variables as JSON")
	fs.StringVar(&overrideFile, "override", overrideFile, "Override file")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print the result")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, queryUsage)
		return err
	}
	if mf.schema == "" || query == "" {
		fmt.Fprint(stderr, queryUsage)
		if mf.schema == "" {
			return fmt.Errorf("-schema is required")
		}
		return fmt.Errorf("-query is required")
	}
	if path, ok := strings.CutPrefix(query, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read query: %w", err)
		}
		query = string(b)
	}
	vars := map[string]any{}
	if variables != "" {
		if err := json.Unmarshal([]byte(variables), &vars); err != nil {
			return fmt.Errorf("parse variables: %w", err)
		}
	}

	srv, override, err := mf.build(logging.Nop())
	if err != nil {
		return err
	}
	if overrideFile != "" {
		if override, err = mockfile.LoadOverride(overrideFile); err != nil {
			return fmt.Errorf("load override: %w", err)
		}
	}

	res, err := srv.Execute(context.Background(), mockserver.Request{
		Query:         query,
		OperationName: operation,
		Variables:     vars,
		Override:      override,
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

func newLogger(level, format string, out io.Writer) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	f, err := logging.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Config{Level: lvl, Format: f, Output: out}), nil
}
