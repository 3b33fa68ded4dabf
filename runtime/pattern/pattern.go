// Package pattern implements Teeny's match-arm pattern matcher
// (spec.md §4.5). Patterns are ordinary parsed AST fragments: a
// predicate closure, a structural table pattern, a literal, or a
// logical composition of these, evaluated lazily against the
// scrutinee rather than compiled into a separate pattern language.
package pattern

import (
	"github.com/IANYEYZ/teeny/core/ast"
	"github.com/IANYEYZ/teeny/runtime/value"
)

// Evaluator is the subset of the interpreter's evaluation entry point
// the matcher needs to evaluate non-structural pattern expressions and
// invoke predicate closures. Injected to avoid an import cycle with
// runtime/interpreter.
type Evaluator func(n *ast.Node, env *value.Env) *value.Value

// Match reports whether pattern (an AST fragment) matches scrutinee
// under env, using eval for any sub-expression that is not itself a
// structural pattern.
func Match(pat *ast.Node, scrutinee *value.Value, env *value.Env, eval Evaluator) bool {
	switch pat.Kind {
	case ast.NAME:
		if pat.Ident() == "_" {
			return true
		}
	case ast.PREOP:
		if pat.Ident() == "!" {
			return !Match(pat.Children[0], scrutinee, env, eval)
		}
	case ast.OP:
		switch pat.Ident() {
		case "||":
			return Match(pat.Children[0], scrutinee, env, eval) || Match(pat.Children[1], scrutinee, env, eval)
		case "&&":
			return Match(pat.Children[0], scrutinee, env, eval) && Match(pat.Children[1], scrutinee, env, eval)
		}
	case ast.TABLE:
		return matchTable(pat, scrutinee, env, eval)
	case ast.FN, ast.FNDYNAMIC:
		fn := eval(pat, env)
		if fn.Propagates() {
			return false
		}
		return value.Call(fn, []*value.Value{scrutinee}).Truthy()
	}

	result := eval(pat, env)
	if result.Propagates() {
		return false
	}
	if result.Tag == value.TagClosure || result.Tag == value.TagBuiltin {
		return value.Call(result, []*value.Value{scrutinee}).Truthy()
	}
	return value.Equal(result, scrutinee)
}

// matchTable implements "a TABLE pattern matches a Table whose entries
// are a superset of the pattern's entries, recursively matching each
// specified key" (spec.md §4.5).
func matchTable(pat *ast.Node, scrutinee *value.Value, env *value.Env, eval Evaluator) bool {
	if scrutinee.Tag != value.TagTable {
		return false
	}
	posIdx := 0
	for _, child := range pat.Children {
		switch child.Kind {
		case ast.PAIR:
			key := pairKey(child, env, eval)
			sv, ok := scrutinee.Table.Get(key)
			if !ok {
				return false
			}
			if !Match(child.Children[1], sv, env, eval) {
				return false
			}
		case ast.SPREAD:
			// A spread in a table pattern matches "the rest"; accept
			// unconditionally since remaining keys are already a
			// superset check by construction.
		default:
			sv, ok := scrutinee.Table.Get(value.Number(float64(posIdx)))
			posIdx++
			if !ok {
				return false
			}
			if !Match(child, sv, env, eval) {
				return false
			}
		}
	}
	return true
}

func pairKey(pair *ast.Node, env *value.Env, eval Evaluator) *value.Value {
	keyNode := pair.Children[0]
	if keyNode != nil && keyNode.Kind == ast.NAME {
		return value.String(keyNode.Ident())
	}
	return eval(keyNode, env)
}
