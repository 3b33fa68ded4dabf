package pattern

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IANYEYZ/teeny/core/ast"
	"github.com/IANYEYZ/teeny/runtime/lexer"
	"github.com/IANYEYZ/teeny/runtime/parser"
	"github.com/IANYEYZ/teeny/runtime/value"
)

// miniEval evaluates the tiny slice of expression forms non-structural
// patterns in these tests need: number literals and name lookups. The
// real evaluator used in production is runtime/interpreter's Eval,
// which cannot be imported here without an import cycle (it imports
// this package).
func miniEval(n *ast.Node, env *value.Env) *value.Value {
	switch n.Kind {
	case ast.NUMBER:
		f, _ := strconv.ParseFloat(n.Ident(), 64)
		return value.Number(f)
	case ast.NAME:
		return env.Read(n.Ident())
	default:
		return value.Error("Runtime Error", "miniEval: unsupported node kind "+n.Kind.String())
	}
}

func newEnvWithParityPredicates() *value.Env {
	env := value.NewEnv(nil)
	env.Define("isEven", value.NewBuiltin("isEven", false, func(args []*value.Value, env *value.Env) *value.Value {
		return value.Bool(int64(args[0].Num)%2 == 0)
	}))
	env.Define("isOdd", value.NewBuiltin("isOdd", false, func(args []*value.Value, env *value.Env) *value.Value {
		return value.Bool(int64(args[0].Num)%2 != 0)
	}))
	return env
}

func init() {
	value.Call = func(fn *value.Value, args []*value.Value) *value.Value {
		return fn.Builtin.Fn(args, nil)
	}
}

func parsePattern(t *testing.T, src string) *ast.Node {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	n, _, err := parser.ParseOne(toks)
	require.NoError(t, err)
	return n
}

func TestMatchLiteral(t *testing.T) {
	env := value.NewEnv(nil)
	pat := parsePattern(t, "1")
	require.True(t, Match(pat, value.Number(1), env, miniEval))
	require.False(t, Match(pat, value.Number(2), env, miniEval))
}

func TestMatchWildcard(t *testing.T) {
	env := value.NewEnv(nil)
	pat := parsePattern(t, "_")
	require.True(t, Match(pat, value.Number(1), env, miniEval))
	require.True(t, Match(pat, value.String("anything"), env, miniEval))
}

func TestMatchTableStructural(t *testing.T) {
	env := value.NewEnv(nil)
	pat := parsePattern(t, "[0, _]")

	match := value.NewTable()
	match.Table.Append(value.Number(0))
	match.Table.Append(value.Number(5))
	require.True(t, Match(pat, match, env, miniEval))

	noMatch := value.NewTable()
	noMatch.Table.Append(value.Number(1))
	noMatch.Table.Append(value.Number(5))
	require.False(t, Match(pat, noMatch, env, miniEval))
}

func TestMatchPredicateClosure(t *testing.T) {
	env := newEnvWithParityPredicates()
	pat := parsePattern(t, "isEven")
	require.True(t, Match(pat, value.Number(4), env, miniEval))
	require.False(t, Match(pat, value.Number(3), env, miniEval))
}

func TestMatchLogicalOr(t *testing.T) {
	env := newEnvWithParityPredicates()
	pat := parsePattern(t, "isEven || isOdd")
	require.True(t, Match(pat, value.Number(3), env, miniEval))
	require.True(t, Match(pat, value.Number(4), env, miniEval))
}

func TestMatchLogicalAnd(t *testing.T) {
	env := newEnvWithParityPredicates()
	pat := parsePattern(t, "isEven && isOdd")
	require.False(t, Match(pat, value.Number(4), env, miniEval))
}

func TestMatchLogicalNot(t *testing.T) {
	env := newEnvWithParityPredicates()
	pat := parsePattern(t, "!isEven")
	require.True(t, Match(pat, value.Number(3), env, miniEval))
	require.False(t, Match(pat, value.Number(4), env, miniEval))
}

func TestMatchNestedTablePattern(t *testing.T) {
	// Mirrors the language's worked-example match on "[a%3, a%5]" with a
	// literal positional pattern.
	env := value.NewEnv(nil)
	pat := parsePattern(t, "[1, 1]")

	scrutinee := value.NewTable()
	scrutinee.Table.Append(value.Number(1))
	scrutinee.Table.Append(value.Number(1))
	require.True(t, Match(pat, scrutinee, env, miniEval))

	other := value.NewTable()
	other.Table.Append(value.Number(0))
	other.Table.Append(value.Number(2))
	require.False(t, Match(pat, other, env, miniEval))
}
