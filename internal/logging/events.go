package logging

import (
	"context"
	"log/slog"

	"github.com/hanpama/graphmock/internal/eventbus"
	"github.com/hanpama/graphmock/internal/events"
	"github.com/hanpama/graphmock/internal/reqid"
)

// SubscribeOperations logs every finished GraphQL operation published on the
// global bus: at debug level normally, at warn level when the mocks failed.
func SubscribeOperations(logger *slog.Logger) (unsubscribe func()) {
	return eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		attrs := []slog.Attr{
			slog.String("operation", e.OperationName),
			slog.String("type", e.OperationType),
			slog.Int("errors", len(e.Errors)),
			slog.Duration("duration", e.Duration),
		}
		if rid, ok := reqid.FromContext(ctx); ok {
			attrs = append(attrs, slog.String("request_id", reqid.Format(rid)))
		}
		if e.ConfigError != nil {
			attrs = append(attrs, slog.Any("error", e.ConfigError))
			logger.LogAttrs(ctx, slog.LevelWarn, "graphql operation failed", attrs...)
			return
		}
		logger.LogAttrs(ctx, slog.LevelDebug, "graphql operation", attrs...)
	})
}
