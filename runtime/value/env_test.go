package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvDefineReadWrite(t *testing.T) {
	e := NewEnv(nil)
	e.Define("a", Number(1))
	require.Equal(t, 1.0, e.Read("a").Num)

	e.Write("a", Number(2))
	require.Equal(t, 2.0, e.Read("a").Num)
}

func TestEnvReadUndefinedIsError(t *testing.T) {
	e := NewEnv(nil)
	v := e.Read("missing")
	require.True(t, v.IsError())
}

func TestEnvReadSuggestsCloseName(t *testing.T) {
	e := NewEnv(nil)
	e.Define("counter", Number(1))
	v := e.Read("countr")
	require.True(t, v.IsError())
	require.Contains(t, v.ErrMsg, "counter")
}

func TestEnvWriteUndefinedIsError(t *testing.T) {
	e := NewEnv(nil)
	v := e.Write("missing", Number(1))
	require.True(t, v.IsError())
}

func TestEnvOuterChainLookup(t *testing.T) {
	outer := NewEnv(nil)
	outer.Define("a", Number(1))
	inner := NewEnv(outer)
	require.Equal(t, 1.0, inner.Read("a").Num)

	inner.Write("a", Number(5))
	require.Equal(t, 5.0, outer.Read("a").Num, "Write mutates the shared cell in the defining frame")
}

func TestEnvDefineShadowsOuter(t *testing.T) {
	outer := NewEnv(nil)
	outer.Define("a", Number(1))
	inner := NewEnv(outer)
	inner.Define("a", Number(99))
	require.Equal(t, 99.0, inner.Read("a").Num)
	require.Equal(t, 1.0, outer.Read("a").Num)
}

func TestSnapshotSharesCellsForExistingBindings(t *testing.T) {
	outer := NewEnv(nil)
	outer.Define("a", Number(1))

	snap := outer.Snapshot()
	// A write through the snapshot must be visible from the live chain
	// and vice versa, since both hold the same *cell for "a".
	snap.Write("a", Number(2))
	require.Equal(t, 2.0, outer.Read("a").Num)

	outer.Write("a", Number(3))
	require.Equal(t, 3.0, snap.Read("a").Num)
}

func TestSnapshotDoesNotSeeBindingsDefinedAfterCapture(t *testing.T) {
	outer := NewEnv(nil)
	outer.Define("a", Number(1))
	snap := outer.Snapshot()

	outer.Define("b", Number(2))
	require.False(t, snap.Has("b"), "a binding introduced after Snapshot must be invisible to the snapshot")
	require.True(t, outer.Has("b"))
}

func TestNamesListsVisibleBindings(t *testing.T) {
	outer := NewEnv(nil)
	outer.Define("a", Number(1))
	inner := NewEnv(outer)
	inner.Define("b", Number(2))

	names := inner.Names()
	require.ElementsMatch(t, []string{"a", "b"}, names)
}
