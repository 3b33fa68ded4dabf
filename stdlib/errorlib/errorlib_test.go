package errorlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IANYEYZ/teeny/runtime/value"
)

func TestCallBuiltinBuildsValError(t *testing.T) {
	e := New()
	callFn, ok := e.Meta["_call_"]
	require.True(t, ok)
	v := callFn.Builtin.Fn([]*value.Value{value.String("BoundsError"), value.String("out of range")}, nil)
	require.Equal(t, value.TagValError, v.Tag)
	require.Equal(t, "BoundsError", v.ErrType)
	require.Equal(t, "out of range", v.ErrMsg)
}

func TestRaiseBuiltinBuildsPropagatingError(t *testing.T) {
	e := New()
	raiseFn, ok := e.Table.Get(value.String("raise"))
	require.True(t, ok)
	v := raiseFn.Builtin.Fn([]*value.Value{value.String("IOError"), value.String("disk full")}, nil)
	require.True(t, v.IsError())
	require.Equal(t, "IOError", v.ErrType)
}

func TestPanicPromotesValErrorToError(t *testing.T) {
	e := New()
	panicFn, ok := e.Table.Get(value.String("panic"))
	require.True(t, ok)
	ve := value.ValError("BoundsError", "nope")
	v := panicFn.Builtin.Fn([]*value.Value{ve}, nil)
	require.True(t, v.IsError())
	require.Equal(t, "BoundsError", v.ErrType)
	require.Equal(t, "nope", v.ErrMsg)
}

func TestPanicRejectsNonValError(t *testing.T) {
	e := New()
	panicFn, ok := e.Table.Get(value.String("panic"))
	require.True(t, ok)
	v := panicFn.Builtin.Fn([]*value.Value{value.Number(1)}, nil)
	require.True(t, v.IsError())
	require.Equal(t, "Runtime Error", v.ErrType)
}
