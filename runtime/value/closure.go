package value

import "github.com/IANYEYZ/teeny/core/ast"

// Closure is a Teeny function value: its declared parameters, body,
// captured environment, and whether it is a dynamic (late-binding)
// closure. Lexical closures capture env.Snapshot(); dynamic closures
// keep the live Env pointer, per spec.md §4.6.
type Closure struct {
	Params   []ast.Param
	Defaults []*Value // parallel to Params; nil entry means no default
	Body     *ast.Node
	Env      *Env
	Dynamic  bool
}

func NewClosure(params []ast.Param, defaults []*Value, body *ast.Node, env *Env, dynamic bool) *Value {
	return &Value{
		Tag:     TagClosure,
		Closure: &Closure{Params: params, Defaults: defaults, Body: body, Env: env, Dynamic: dynamic},
		ID:      newID(),
	}
}

// BuiltinFunc is a host-implemented callable. The interpreter passes
// the calling Env as env to every builtin, whatever HasEnv says;
// HasEnv marks the builtins that use it (mix/include, which bind into
// the caller's scope).
type BuiltinFunc func(args []*Value, env *Env) *Value

type BuiltinClosure struct {
	Name   string
	HasEnv bool
	Fn     BuiltinFunc
}
