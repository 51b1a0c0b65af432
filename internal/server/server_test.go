package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/graphmock/internal/eventbus"
	"github.com/hanpama/graphmock/internal/events"
	"github.com/hanpama/graphmock/internal/reqid"
	"github.com/hanpama/graphmock/mock"
	"github.com/hanpama/graphmock/mockserver"
)

const testSDL = `
type Query {
  hello: String
  user(id: ID!): User
}

type User {
  id: ID!
  name: String
}
`

func newTestHandler(t *testing.T, mocks mock.Map, opts ...Option) *Handler {
	t.Helper()
	if mocks == nil {
		mocks = mock.Map{
			"Query": {"hello": mock.Return("world")},
			"User": {
				"id":   mock.Fn(func(args mock.Args) mock.Value { return mock.Of("u1") }),
				"name": mock.Return("base"),
			},
		}
	}
	srv, err := mockserver.New(testSDL, mocks, mockserver.WithProviders())
	require.NoError(t, err)
	return New(srv, opts...)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()
	var out any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func requireBody(t *testing.T, want any, w *httptest.ResponseRecorder) {
	t.Helper()
	if diff := cmp.Diff(want, decode(t, w)); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery(t *testing.T) {
	h := newTestHandler(t, nil)
	w := post(t, h, `{"query":"{ hello user(id: \"1\") { id name } }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	requireBody(t, map[string]any{
		"data": map[string]any{
			"hello": "world",
			"user":  map[string]any{"id": "u1", "name": "base"},
		},
	}, w)
}

func TestOverrideExtension(t *testing.T) {
	h := newTestHandler(t, nil)

	t.Run("post", func(t *testing.T) {
		w := post(t, h, `{
			"query": "{ hello me: user(id: \"1\") { name } }",
			"extensions": {"mockOverride": {"hello": null, "me": {"name": "override"}}}
		}`)
		require.Equal(t, http.StatusOK, w.Code)
		requireBody(t, map[string]any{
			"data": map[string]any{
				"hello": nil,
				"me":    map[string]any{"name": "override"},
			},
		}, w)
	})

	t.Run("get", func(t *testing.T) {
		q := url.Values{}
		q.Set("query", "{ hello }")
		q.Set("extensions", `{"mockOverride":{"hello":"from get"}}`)
		req := httptest.NewRequest("GET", "/?"+q.Encode(), nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		requireBody(t, map[string]any{"data": map[string]any{"hello": "from get"}}, w)
	})
}

func TestFieldErrors(t *testing.T) {
	h := newTestHandler(t, mock.Map{
		"Query": {"hello": mock.Return(mock.Error("broken"))},
	})
	w := post(t, h, `{"query":"{ hello }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	requireBody(t, map[string]any{
		"data":   map[string]any{"hello": nil},
		"errors": []any{map[string]any{"message": "broken", "path": []any{"hello"}}},
	}, w)
}

func TestConfigurationError(t *testing.T) {
	h := newTestHandler(t, mock.Map{
		"Query": {"hello": mock.Return(nil)},
	})
	w := post(t, h, `{"query":"{ hello }"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w).(map[string]any)
	require.Nil(t, body["data"])
	require.Len(t, body["errors"], 1)
}

func TestInvalidOverride(t *testing.T) {
	h := newTestHandler(t, nil)
	w := post(t, h, `{"query":"{ hello }","extensions":{"mockOverride":"nope"}}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	requireBody(t, map[string]any{
		"data":   nil,
		"errors": []any{map[string]any{"message": "mockOverride must be an object, got scalar."}},
	}, w)
}

func TestValidationErrors(t *testing.T) {
	h := newTestHandler(t, nil)
	w := post(t, h, `{"query":"{ nope }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w).(map[string]any)
	require.Nil(t, body["data"])
	require.NotEmpty(t, body["errors"])
}

func TestBatch(t *testing.T) {
	h := newTestHandler(t, nil)
	w := post(t, h, `[{"query":"{ hello }"},{"query":"{ hello }","extensions":{"mockOverride":{"hello":"b"}}}]`)
	require.Equal(t, http.StatusOK, w.Code)
	requireBody(t, []any{
		map[string]any{"data": map[string]any{"hello": "world"}},
		map[string]any{"data": map[string]any{"hello": "b"}},
	}, w)

	w = post(t, h, `[]`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBadRequests(t *testing.T) {
	h := newTestHandler(t, nil)
	for _, tc := range []struct {
		name    string
		method  string
		ct      string
		body    string
		status  int
		message string
	}{
		{"missing query", "POST", "application/json", `{}`, http.StatusBadRequest, "missing 'query'"},
		{"invalid json", "POST", "application/json", `{`, http.StatusBadRequest, "invalid JSON"},
		{"content type", "POST", "text/plain", `{ hello }`, http.StatusBadRequest, "unsupported Content-Type"},
		{"method", "PUT", "application/json", `{}`, http.StatusMethodNotAllowed, "method not allowed"},
		{"get without query", "GET", "", ``, http.StatusBadRequest, "missing 'query'"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/", bytes.NewBufferString(tc.body))
			if tc.ct != "" {
				req.Header.Set("Content-Type", tc.ct)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			require.Equal(t, tc.status, w.Code)
			requireBody(t, map[string]any{
				"data":   nil,
				"errors": []any{map[string]any{"message": tc.message}},
			}, w)
		})
	}
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(t, nil, WithCORS("*"))

	// simple request
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	// preflight
	pre := httptest.NewRequest("OPTIONS", "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	require.Equal(t, http.StatusNoContent, pw.Code)
	require.Equal(t, "*", pw.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "X-Test", pw.Header().Get("Access-Control-Allow-Headers"))

	// origin outside the allow list
	h = newTestHandler(t, nil, WithCORS("http://allowed.test"))
	req = httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set("Origin", "http://example.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMaxBodyBytes(t *testing.T) {
	h := newTestHandler(t, nil, WithMaxBodyBytes(10))
	w := post(t, h, `{"query":"1234567890"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestPretty(t *testing.T) {
	h := newTestHandler(t, nil, WithPretty())
	w := post(t, h, `{"query":"{ hello }"}`)
	require.Contains(t, w.Body.String(), "\n  \"data\"")
}

func TestEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var (
		httpStatus int
		start      events.GraphQLStart
		finish     events.GraphQLFinish
		ids        []int64
	)
	defer eventbus.Subscribe(func(_ context.Context, e events.GraphQLStart) { start = e })()
	defer eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		httpStatus = e.Status
		id, _ := reqid.FromContext(ctx)
		ids = append(ids, id)
	})()
	defer eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		finish = e
		id, _ := reqid.FromContext(ctx)
		ids = append(ids, id)
	})()

	h := newTestHandler(t, mock.Map{"Query": {"hello": mock.Return(nil)}})
	post(t, h, `query Greeting { hello }`)
	require.Equal(t, http.StatusBadRequest, httpStatus)

	w := post(t, h, `{"query":"query Greeting { hello }","operationName":"Greeting"}`)
	require.Equal(t, http.StatusInternalServerError, httpStatus)
	require.Equal(t, "Greeting", finish.OperationName)
	require.Equal(t, "query", finish.OperationType)
	require.Error(t, finish.ConfigError)
	require.Empty(t, finish.Errors)
	require.Len(t, ids, 3)
	require.NotZero(t, ids[1])
	require.Equal(t, ids[1], ids[2])
	require.Equal(t, reqid.Format(ids[2]), w.Header().Get(reqid.Header))
	require.False(t, start.Overridden)

	h = newTestHandler(t, nil)
	post(t, h, `{"query":"{ hello }","extensions":{"mockOverride":{}}}`)
	require.Equal(t, http.StatusOK, httpStatus)
	require.True(t, start.Overridden)
	require.Nil(t, finish.ConfigError)
}
