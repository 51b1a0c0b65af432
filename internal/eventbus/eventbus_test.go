package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ n int }

type pong struct{}

func TestPublishSubscribe(t *testing.T) {
	Use(New())
	t.Cleanup(func() { Use(nil) })

	var got []string
	unsubA := Subscribe(func(_ context.Context, p ping) { got = append(got, "a") })
	unsubB := Subscribe(func(_ context.Context, p ping) { got = append(got, "b") })
	defer Subscribe(func(context.Context, pong) { got = append(got, "pong") })()

	Publish(context.Background(), ping{n: 1})
	require.Equal(t, []string{"a", "b"}, got)

	// Unsubscribing one handler keeps the other of the same type.
	unsubA()
	got = nil
	Publish(context.Background(), ping{n: 2})
	Publish(context.Background(), pong{})
	require.Equal(t, []string{"b", "pong"}, got)

	unsubB()
	unsubB()
	got = nil
	Publish(context.Background(), ping{n: 3})
	require.Empty(t, got)
}

func TestWithoutBus(t *testing.T) {
	Use(nil)
	called := false
	unsub := Subscribe(func(context.Context, ping) { called = true })
	Publish(context.Background(), ping{})
	unsub()
	require.False(t, called)
}

func TestContextIsForwarded(t *testing.T) {
	Use(New())
	t.Cleanup(func() { Use(nil) })

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	var seen any
	defer Subscribe(func(ctx context.Context, _ ping) { seen = ctx.Value(key{}) })()
	Publish(ctx, ping{})
	require.Equal(t, "v", seen)
}
