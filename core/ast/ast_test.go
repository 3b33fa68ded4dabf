package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindStringKnownAndUnknown(t *testing.T) {
	require.Equal(t, "NUMBER", NUMBER.String())
	require.Equal(t, "FN-DYNAMIC", FNDYNAMIC.String())
	require.Equal(t, "Kind(999)", Kind(999).String())
}

func TestParamsReturnsNilForNonParamValue(t *testing.T) {
	n := New(NAME, Position{}, "x")
	require.Nil(t, n.Params())
}

func TestParamsReturnsStoredSlice(t *testing.T) {
	params := []Param{{Name: "a"}, {Name: "b", Rest: true}}
	n := New(FN, Position{}, params)
	require.Equal(t, params, n.Params())
}

func TestIdentReturnsStringValue(t *testing.T) {
	n := New(NAME, Position{}, "counter")
	require.Equal(t, "counter", n.Ident())
}

func TestIdentReturnsEmptyForNonStringValue(t *testing.T) {
	n := New(FN, Position{}, []Param{{Name: "a"}})
	require.Equal(t, "", n.Ident())
}

func TestMatchBinderPresentAndAbsent(t *testing.T) {
	withBinder := New(MATCH, Position{}, "result")
	require.Equal(t, "result", withBinder.MatchBinder())

	withoutBinder := New(MATCH, Position{}, nil)
	require.Equal(t, "", withoutBinder.MatchBinder())
}

func TestStringPrintsIndentedTree(t *testing.T) {
	leaf := New(NUMBER, Position{Line: 1, Col: 1}, "1")
	root := New(OP, Position{Line: 1, Col: 3}, "+", leaf, leaf)

	want := "OP +\n  NUMBER 1\n  NUMBER 1\n"
	require.Equal(t, want, root.String())
}

func TestStringOnNilNode(t *testing.T) {
	var n *Node
	require.Equal(t, "<nil>", n.String())
}
