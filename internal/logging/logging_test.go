package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/graphmock/internal/eventbus"
	"github.com/hanpama/graphmock/internal/events"
	"github.com/hanpama/graphmock/internal/reqid"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: FormatJSON, Output: &buf})
	logger.Debug("hello", slog.String("k", "v"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["msg"])
	require.Equal(t, "v", entry["k"])
	require.Equal(t, "DEBUG", entry["level"])
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})
	logger.Info("dropped")
	require.Empty(t, buf.String())
	logger.Warn("kept")
	require.Contains(t, buf.String(), "msg=kept")
}

func TestParse(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, lvl)
	_, err = ParseLevel("loud")
	require.Error(t, err)

	f, err := ParseFormat("json")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)
	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	require.False(t, Nop().Enabled(context.Background(), slog.LevelError))
}

func TestSubscribeOperations(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: FormatJSON, Output: &buf})
	defer SubscribeOperations(logger)()

	ctx, rid := reqid.NewContext(context.Background())
	eventbus.Publish(ctx, events.GraphQLFinish{OperationName: "Q", OperationType: "query", ConfigError: errors.New("bad mock")})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "WARN", entry["level"])
	require.Equal(t, "graphql operation failed", entry["msg"])
	require.Equal(t, "Q", entry["operation"])
	require.Equal(t, "bad mock", entry["error"])
	require.Equal(t, reqid.Format(rid), entry["request_id"])

	buf.Reset()
	eventbus.Publish(context.Background(), events.GraphQLFinish{OperationName: "Q"})
	require.Contains(t, buf.String(), `"level":"DEBUG"`)
	require.NotContains(t, buf.String(), "request_id")
}
