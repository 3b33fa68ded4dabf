package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    *Value
		want bool
	}{
		{"nil", Nil(), false},
		{"zero", Number(0), false},
		{"nonzero", Number(0.5), true},
		{"emptyString", String(""), false},
		{"nonEmptyString", String("a"), true},
		{"emptyTable", NewTable(), false},
		{"nonEmptyTable", func() *Value { tbl := NewTable(); tbl.Table.Append(Number(1)); return tbl }(), true},
		{"builtin", NewBuiltin("f", false, func(args []*Value, env *Env) *Value { return Nil() }), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, c.v.Truthy())
		})
	}
}

func TestEqualStructuralExceptClosure(t *testing.T) {
	require.True(t, Equal(Number(1), Number(1)))
	require.False(t, Equal(Number(1), Number(2)))
	require.True(t, Equal(String("a"), String("a")))
	require.False(t, Equal(Number(1), String("1")))

	a := NewTable()
	a.Table.Append(Number(1))
	b := NewTable()
	b.Table.Append(Number(1))
	require.True(t, Equal(a, b), "structurally-equal tables with different identities are still Equal")

	c1 := &Value{Tag: TagClosure, ID: "x"}
	c2 := &Value{Tag: TagClosure, ID: "x"}
	c3 := &Value{Tag: TagClosure, ID: "y"}
	require.True(t, Equal(c1, c2))
	require.False(t, Equal(c1, c3), "closures compare by identity, not structure")
}

func TestToStringNumberFormatting(t *testing.T) {
	require.Equal(t, "3", ToString(Number(3)))
	require.Equal(t, "-2", ToString(Number(-2)))
	require.Equal(t, "0", ToString(Number(0)))
	require.Equal(t, "0.5", ToString(Number(0.5)))
}

func TestToStringString(t *testing.T) {
	require.Equal(t, "hi", ToString(String("hi")))
}

func TestToNumber(t *testing.T) {
	require.Equal(t, 3.0, ToNumber(Number(3)).Num)
	n := ToNumber(String("3.5"))
	require.Equal(t, TagNumber, n.Tag)
	require.Equal(t, 3.5, n.Num)

	errVal := ToNumber(String("not a number"))
	require.True(t, errVal.IsError())

	errVal2 := ToNumber(NewTable())
	require.True(t, errVal2.IsError())
}

func TestPropagatesErrorAndBubble(t *testing.T) {
	require.True(t, Error("Runtime Error", "boom").Propagates())
	require.True(t, Bubble(BubbleReturn, Number(1)).Propagates())
	require.False(t, ValError("Runtime Error", "boom").Propagates())
	require.False(t, Number(1).Propagates())
}
