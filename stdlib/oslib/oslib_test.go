package oslib

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IANYEYZ/teeny/runtime/value"
)

func call(t *testing.T, tbl *value.Value, name string, args ...*value.Value) *value.Value {
	t.Helper()
	fn, ok := tbl.Table.Get(value.String(name))
	require.True(t, ok, "os.%s is not defined", name)
	return fn.Builtin.Fn(args, nil)
}

func TestPlatformMatchesGOOS(t *testing.T) {
	tbl := New(t.TempDir())
	require.Equal(t, runtime.GOOS, call(t, tbl, "platform").Str)
}

func TestRunCapturesStdout(t *testing.T) {
	tbl := New(t.TempDir())
	v := call(t, tbl, "run", value.String("echo hello"))
	require.False(t, v.IsError())
	require.Contains(t, v.Str, "hello")
}

func TestRunUnknownCommandIsOSError(t *testing.T) {
	tbl := New(t.TempDir())
	v := call(t, tbl, "run", value.String("this-command-does-not-exist-xyz"))
	require.True(t, v.IsError())
	require.Equal(t, "OSError", v.ErrType)
}

func TestShellIsAliasForRun(t *testing.T) {
	tbl := New(t.TempDir())
	runFn, _ := tbl.Table.Get(value.String("run"))
	shellFn, _ := tbl.Table.Get(value.String("shell"))
	require.Equal(t, runFn.Builtin, shellFn.Builtin)
}

func TestSetEnvThenGetEnvRoundTrip(t *testing.T) {
	tbl := New(t.TempDir())
	result := call(t, tbl, "setEnv", value.String("TOKEN"), value.String("secret"))
	require.False(t, result.IsError())

	v := call(t, tbl, "getEnv", value.String("TOKEN"))
	require.Equal(t, "secret", v.Str)
}

func TestGetEnvUndefinedReturnsNil(t *testing.T) {
	tbl := New(t.TempDir())
	v := call(t, tbl, "getEnv", value.String("MISSING"))
	require.Equal(t, value.TagNil, v.Tag)
}
