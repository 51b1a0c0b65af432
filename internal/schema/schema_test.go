package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

const testSDL = `
interface Node { id: ID! }

"A person"
type User implements Node {
  id: ID!
  name(upper: Boolean = false): String
  friends(first: Int = 2): [User!]!
  role: Role
  old: String @deprecated(reason: "use name")
}

type Group implements Node {
  id: ID!
  members: [User]
}

union Member = User | Group

enum Role { ADMIN GUEST }

input Filter { role: Role = GUEST, limit: Int }

scalar Date

type Query {
  node(id: ID!): Node
  member: Member
  users(filter: Filter): [User]
  today: Date
}
`

func TestBuildFromSDL(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)
	require.Equal(t, "Query", s.QueryType)
	require.Empty(t, s.MutationType)
	require.NotNil(t, s.AST)

	for name := range s.Types {
		require.NotContains(t, name, "__", "introspection types are not modelled")
	}

	user := s.Types["User"]
	require.Equal(t, TypeKindObject, user.Kind)
	require.Equal(t, "A person", user.Description)
	require.Equal(t, []string{"Node"}, user.Interfaces)

	var names []string
	for _, f := range user.Fields {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"id", "name", "friends", "role", "old"}, names); diff != "" {
		t.Errorf("field order mismatch (-want +got):\n%s", diff)
	}

	friends := user.Field("friends")
	require.Equal(t, "[User!]!", friends.Type.String())
	require.Equal(t, int64(2), friends.Arguments[0].DefaultValue)
	require.True(t, user.Field("old").IsDeprecated)
	require.Equal(t, "use name", user.Field("old").DeprecationReason)

	node := s.Types["Node"]
	require.Equal(t, TypeKindInterface, node.Kind)
	if diff := cmp.Diff([]string{"Group", "User"}, node.PossibleTypes, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("possible types mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"User", "Group"}, s.Types["Member"].PossibleTypes)

	var roles []string
	for _, v := range s.Types["Role"].EnumValues {
		roles = append(roles, v.Name)
	}
	require.Equal(t, []string{"ADMIN", "GUEST"}, roles)

	filter := s.Types["Filter"]
	require.Equal(t, TypeKindInputObject, filter.Kind)
	require.Equal(t, "GUEST", filter.InputFields[0].DefaultValue)

	require.Equal(t, TypeKindScalar, s.Types["Date"].Kind)
	require.Equal(t, TypeKindScalar, s.Types["String"].Kind)
	require.Contains(t, s.Directives, "skip")
}

func TestBuildFromSDL_Invalid(t *testing.T) {
	_, err := BuildFromSDL(`type Query { a: Missing }`)
	require.Error(t, err)
}

func TestTypeHelpers(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)

	require.True(t, s.IsLeafType(s.Types["User"].Field("role").Type))
	require.True(t, s.IsLeafType(s.Types["User"].Field("id").Type))
	require.False(t, s.IsLeafType(s.Types["User"].Field("friends").Type))
	require.False(t, s.IsLeafType(s.Types["Query"].Field("node").Type))

	require.True(t, s.IsPossibleType("Node", "User"))
	require.True(t, s.IsPossibleType("Member", "Group"))
	require.True(t, s.IsPossibleType("User", "User"))
	require.False(t, s.IsPossibleType("Member", "Query"))

	require.NotNil(t, s.FieldOf("Member", "members"), "union fields resolve through possible types")
	require.NotNil(t, s.FieldOf("Node", "id"))
	require.Nil(t, s.FieldOf("User", "missing"))

	ref := NonNullType(ListType(NonNullType(NamedType("User"))))
	require.Equal(t, "User", ref.GetNamedType())
	require.True(t, ref.IsList())
	require.Equal(t, TypeRefKindList, ref.Nullable().Kind)
	require.Equal(t, s.Types["User"], s.NamedTypeOf(ref))
}

func TestSerializeLeaf(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)

	ok := []struct {
		typ  string
		in   any
		want any
	}{
		{"Int", 3, 3},
		{"Int", 3.0, 3},
		{"Int", "42", 42},
		{"Int", true, 1},
		{"Int", int64(5), 5},
		{"Int", uint8(6), 6},
		{"Float", 1, 1.0},
		{"Float", "1.5", 1.5},
		{"Float", float32(0.5), 0.5},
		{"String", "x", "x"},
		{"String", 12, "12"},
		{"String", 1.5, "1.5"},
		{"String", false, "false"},
		{"Boolean", true, true},
		{"Boolean", 0, false},
		{"ID", 7, "7"},
		{"ID", "abc", "abc"},
		{"ID", int64(9), "9"},
		{"Role", "ADMIN", "ADMIN"},
		{"Date", map[string]any{"y": 1}, map[string]any{"y": 1}},
	}
	for _, tc := range ok {
		got, err := s.SerializeLeaf(tc.typ, tc.in)
		require.NoError(t, err, "%s(%v)", tc.typ, tc.in)
		require.Equal(t, tc.want, got, "%s(%v)", tc.typ, tc.in)
	}

	bad := []struct {
		typ string
		in  any
	}{
		{"Int", 1.5},
		{"Int", "abc"},
		{"Int", int64(1) << 40},
		{"Int", []any{1}},
		{"Float", "abc"},
		{"String", map[string]any{}},
		{"Boolean", "true"},
		{"ID", 1.5},
		{"Role", "OTHER"},
		{"Role", 1},
		{"User", "x"},
		{"Nope", "x"},
	}
	for _, tc := range bad {
		_, err := s.SerializeLeaf(tc.typ, tc.in)
		require.Error(t, err, "%s(%v)", tc.typ, tc.in)
	}
}
