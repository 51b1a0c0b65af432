package automock

import (
	"fmt"
	"strings"

	"github.com/hanpama/graphmock/internal/schema"
	"github.com/hanpama/graphmock/mock"
	"github.com/hanpama/graphmock/random"
)

// ConnectionOptions configures Connection.
type ConnectionOptions struct {
	// MaxSize bounds the total number of items. Without it every page is
	// assumed to have more pages after it.
	MaxSize *int
	// NodeMock produces the node of the edge at index. Nodes are left to
	// the node type's base mocks when nil.
	NodeMock mock.ItemFunc
}

// Connection returns a base mock for a Relay connection field. It reads the
// first, last, before and after arguments and produces a page of edges with
// cursors "cursor_<index>" plus matching pageInfo. Invalid pagination
// arguments produce an error marker.
func Connection(opts ConnectionOptions) mock.Value {
	return mock.Fn(func(args mock.Args) mock.Value {
		first, hasFirst := intArg(args, "first")
		last, hasLast := intArg(args, "last")
		if hasFirst == hasLast {
			return mock.Error("Either first xor last should be set.")
		}
		if (hasFirst && first < 0) || (hasLast && last < 0) {
			return mock.Error("First and last cannot be negative.")
		}
		if stringArg(args, "before") != "" && stringArg(args, "after") != "" {
			return mock.Error("Before and after cannot be both set.")
		}

		forward := hasFirst
		pageSize := last
		if forward {
			pageSize = first
		}
		hasMorePages := true
		if opts.MaxSize != nil {
			if *opts.MaxSize > 0 && pageSize > *opts.MaxSize {
				pageSize = *opts.MaxSize
			}
			hasMorePages = pageSize < *opts.MaxSize
		}

		nodeMock := opts.NodeMock
		// Node mocks see the connection's arguments, not the edges field's.
		edges := mock.MockList(pageSize, func(_ mock.Args, i int) mock.Value {
			edge := map[string]mock.Value{"cursor": mock.Of(cursor(i))}
			if nodeMock != nil {
				edge["node"] = nodeMock(args, i)
			}
			return mock.Object(edge)
		})
		pageInfo := map[string]mock.Value{
			"hasNextPage":     mock.Of(forward && hasMorePages),
			"hasPreviousPage": mock.Of(!forward && hasMorePages),
		}
		if pageSize > 0 {
			pageInfo["startCursor"] = mock.Of(cursor(0))
			pageInfo["endCursor"] = mock.Of(cursor(pageSize - 1))
		}
		return mock.Object(map[string]mock.Value{
			"edges":    edges,
			"pageInfo": mock.Object(pageInfo),
		})
	})
}

func cursor(i int) string { return fmt.Sprintf("cursor_%d", i) }

// Relay mocks Relay conventions: connection-typed fields get Connection, the
// id of Node implementations gets a UUID, and the fields of connection, edge
// and PageInfo types get placeholder values.
func Relay(src random.Source) mock.Provider {
	return func(s *schema.Schema, parent *schema.Type, field *schema.Field, chain []mock.Provider) mock.Value {
		if t := field.Type.Nullable(); t.Kind == schema.TypeRefKindNamed && IsConnectionType(s.Types[t.Named]) {
			return Connection(ConnectionOptions{})
		}
		switch {
		case IsNode(parent) && field.Name == "id":
			return mock.Fn(func(mock.Args) mock.Value { return mock.Of(src.UUID()) })
		case IsConnectionType(parent) && field.Name == "edges":
			return mock.MockList(0, nil)
		case IsEdgeType(parent) && field.Name == "cursor":
			return mock.Return("")
		case IsPageInfoType(parent):
			switch field.Name {
			case "hasNextPage", "hasPreviousPage":
				return mock.Return(false)
			case "startCursor", "endCursor":
				return mock.Return("")
			}
		}
		return mock.Undefined()
	}
}

// IsConnectionType reports whether t is an object named "<X>Connection"
// with edges and pageInfo fields.
func IsConnectionType(t *schema.Type) bool {
	return t != nil && t.Kind == schema.TypeKindObject &&
		strings.HasSuffix(t.Name, "Connection") && len(t.Name) > len("Connection") &&
		t.Field("edges") != nil && t.Field("pageInfo") != nil
}

// IsEdgeType reports whether t is an object named "<X>Edge" with node and
// cursor fields.
func IsEdgeType(t *schema.Type) bool {
	return t != nil && t.Kind == schema.TypeKindObject &&
		strings.HasSuffix(t.Name, "Edge") && len(t.Name) > len("Edge") &&
		t.Field("node") != nil && t.Field("cursor") != nil
}

// IsPageInfoType reports whether t is the PageInfo object.
func IsPageInfoType(t *schema.Type) bool {
	return t != nil && t.Kind == schema.TypeKindObject && t.Name == "PageInfo" &&
		t.Field("hasNextPage") != nil && t.Field("hasPreviousPage") != nil
}

// IsNode reports whether t is an object implementing Node.
func IsNode(t *schema.Type) bool {
	return t != nil && t.Kind == schema.TypeKindObject && t.Implements("Node")
}

// intArg reads an integer argument. Arguments arrive as int from literals,
// int64 from schema defaults and float64 from JSON.
func intArg(args mock.Args, name string) (int, bool) {
	switch v := args[name].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func stringArg(args mock.Args, name string) string {
	s, _ := args[name].(string)
	return s
}
