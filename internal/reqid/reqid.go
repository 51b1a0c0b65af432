// Package reqid tags request contexts with a random id so events of one
// request can be correlated.
package reqid

import (
	"context"
	"math/rand/v2"
	"strconv"
)

// Header is the response header carrying the request id.
const Header = "X-Request-Id"

type key struct{}

// NewContext returns a copy of parent carrying a new positive request id,
// and the id.
func NewContext(parent context.Context) (context.Context, int64) {
	id := rand.Int64N(1<<63-1) + 1
	return context.WithValue(parent, key{}, id), id
}

// FromContext extracts the request ID from ctx.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(key{}).(int64)
	return id, ok
}

// Format renders id for the Header value.
func Format(id int64) string { return strconv.FormatInt(id, 16) }
