package stdlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IANYEYZ/teeny/runtime/value"
	"github.com/IANYEYZ/teeny/stdlib/module"
)

func builtin(t *testing.T, env *value.Env, name string) *value.Value {
	t.Helper()
	v := env.Read(name)
	require.False(t, v.IsError(), "global %q not defined", name)
	return v
}

func seedForTest(t *testing.T) *value.Env {
	t.Helper()
	cfg := Config{SourcePath: t.TempDir(), GlobalPackagePath: t.TempDir()}
	it := Seed(cfg, module.NewCache())
	return it.Global
}

func TestSeedDefinesEveryStandardGlobal(t *testing.T) {
	global := seedForTest(t)
	for _, name := range []string{
		"math", "error", "fs", "json", "http", "os", "time", "benchmark", "sql",
		"import", "importPython", "importRaw", "mix", "include",
		"argv", "export",
		"print", "println", "input", "type", "copy", "string", "number", "bool", "table", "eval", "range",
	} {
		require.True(t, global.Has(name), "global %q must be defined", name)
	}
}

func TestTypeBuiltin(t *testing.T) {
	global := seedForTest(t)
	typeFn := builtin(t, global, "type")
	require.Equal(t, "number", typeFn.Builtin.Fn([]*value.Value{value.Number(1)}, nil).Str)
	require.Equal(t, "string", typeFn.Builtin.Fn([]*value.Value{value.String("x")}, nil).Str)
	require.Equal(t, "table", typeFn.Builtin.Fn([]*value.Value{value.NewTable()}, nil).Str)
	require.Equal(t, "nil", typeFn.Builtin.Fn([]*value.Value{value.Nil()}, nil).Str)
}

func TestCopyBuiltinDeepCopiesTables(t *testing.T) {
	global := seedForTest(t)
	copyFn := builtin(t, global, "copy")

	inner := value.NewTable()
	inner.Table.Append(value.Number(1))
	outer := value.NewTable()
	outer.Table.Define(value.String("inner"), inner)

	copied := copyFn.Builtin.Fn([]*value.Value{outer}, nil)
	require.True(t, value.Equal(outer, copied))

	innerCopy, _ := copied.Table.Get(value.String("inner"))
	innerCopy.Table.Append(value.Number(99))
	require.Equal(t, 1, inner.Table.Len(), "mutating the copy must not affect the original")
}

func TestNumberBuiltin(t *testing.T) {
	global := seedForTest(t)
	numberFn := builtin(t, global, "number")
	require.Equal(t, 3.0, numberFn.Builtin.Fn([]*value.Value{value.String("3")}, nil).Num)
	require.True(t, numberFn.Builtin.Fn([]*value.Value{value.String("nope")}, nil).IsError())
}

func TestBoolBuiltin(t *testing.T) {
	global := seedForTest(t)
	boolFn := builtin(t, global, "bool")
	require.True(t, boolFn.Builtin.Fn([]*value.Value{value.Number(1)}, nil).Truthy())
	require.False(t, boolFn.Builtin.Fn([]*value.Value{value.Number(0)}, nil).Truthy())
}

func TestTableBuiltinCollectsArgs(t *testing.T) {
	global := seedForTest(t)
	tableFn := builtin(t, global, "table")
	tbl := tableFn.Builtin.Fn([]*value.Value{value.Number(1), value.Number(2)}, nil)
	require.Equal(t, "[1, 2]", value.ToString(tbl))
}

func TestRangeBuiltin(t *testing.T) {
	global := seedForTest(t)
	rangeFn := builtin(t, global, "range")
	out := rangeFn.Builtin.Fn([]*value.Value{value.Number(0), value.Number(5), value.Number(2)}, nil)
	require.Equal(t, "[0, 2, 4]", value.ToString(out))

	stepZero := rangeFn.Builtin.Fn([]*value.Value{value.Number(0), value.Number(5), value.Number(0)}, nil)
	require.True(t, stepZero.IsError())
}

func TestEvalBuiltinRunsSource(t *testing.T) {
	global := seedForTest(t)
	evalFn := builtin(t, global, "eval")
	result := evalFn.Builtin.Fn([]*value.Value{value.String("1 + 2")}, nil)
	require.Equal(t, 3.0, result.Num)
}
