// Package errorlib implements the `error` global: calling it builds a
// ValError, `.raise` builds a propagating Error directly, and `.panic`
// promotes an existing ValError into a propagating Error. Grounded on
// original_source/src/teeny/glob.py's Err table.
package errorlib

import "github.com/IANYEYZ/teeny/runtime/value"

// New builds the error table. It is callable itself (via the _call_
// metamethod the interpreter recognizes on Table values) so both
// `error(typ, msg)` and `error.raise(typ, msg)` work.
func New() *value.Value {
	t := value.NewTable()
	call := value.NewBuiltin("_call_", false, callBuiltin)
	t.Meta["_call_"] = call
	t.Table.Define(value.String("raise"), value.NewBuiltin("raise", false, raiseBuiltin))
	t.Table.Define(value.String("panic"), value.NewBuiltin("panic", false, panicBuiltin))
	return t
}

func callBuiltin(args []*value.Value, env *value.Env) *value.Value {
	typ, msg := argPair(args)
	return value.ValError(typ, msg)
}

func raiseBuiltin(args []*value.Value, env *value.Env) *value.Value {
	typ, msg := argPair(args)
	return value.Error(typ, msg)
}

func panicBuiltin(args []*value.Value, env *value.Env) *value.Value {
	if len(args) == 0 || args[0].Tag != value.TagValError {
		return value.Error("Runtime Error", "panic requires a ValError")
	}
	return value.Error(args[0].ErrType, args[0].ErrMsg)
}

func argPair(args []*value.Value) (typ, msg string) {
	if len(args) > 0 {
		typ = value.ToString(args[0])
	}
	if len(args) > 1 {
		msg = value.ToString(args[1])
	}
	return
}
