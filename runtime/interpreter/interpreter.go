// Package interpreter implements Teeny's tree-walking evaluator: a
// single recursive Eval(ast.Node, env) -> Value, using Error/Bubble
// values as the calling convention for non-local control flow instead
// of Go panics/exceptions, per spec.md §4.4/§9.
package interpreter

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/IANYEYZ/teeny/core/ast"
	"github.com/IANYEYZ/teeny/runtime/pattern"
	"github.com/IANYEYZ/teeny/runtime/value"
)

// Interpreter holds the global environment and wires itself into
// value.Call so metatable methods (map/filter/sort) and the pattern
// matcher can invoke closures without runtime/value importing this
// package.
type Interpreter struct {
	Global *value.Env
	Log    *slog.Logger
}

func New(global *value.Env, log *slog.Logger) *Interpreter {
	if log == nil {
		log = slog.Default()
	}
	it := &Interpreter{Global: global, Log: log}
	value.Call = func(fn *value.Value, args []*value.Value) *value.Value {
		return it.invoke(fn, args, nil, it.Global)
	}
	return it
}

// Run evaluates a whole parsed program in Global, in order. A leftover
// Bubble at the top level surfaces its carried value, per spec.md §5.
func (it *Interpreter) Run(program []*ast.Node) *value.Value {
	var last *value.Value = value.Nil()
	for _, stmt := range program {
		last = it.Eval(stmt, it.Global)
		if last.IsError() {
			return last
		}
		if last.IsBubble() {
			last = last.BubbleVal
		}
	}
	return last
}

// Eval is the single recursive evaluator. Every arm must, after
// computing any sub-result, check for Error/Bubble and propagate.
func (it *Interpreter) Eval(n *ast.Node, env *value.Env) *value.Value {
	switch n.Kind {
	case ast.NUMBER:
		f, _ := strconv.ParseFloat(n.Ident(), 64)
		return value.Number(f)
	case ast.STRING:
		return it.evalString(n, env)
	case ast.REGEX:
		return value.Regex(n.Ident())
	case ast.NAME:
		switch n.Ident() {
		case "nil":
			return value.Nil()
		case "_":
			return value.Underscore()
		default:
			return env.Read(n.Ident())
		}
	case ast.TABLE:
		return it.evalTable(n, env)
	case ast.FN, ast.FNDYNAMIC:
		return it.evalFn(n, env)
	case ast.CALL:
		return it.evalCall(n, env, nil)
	case ast.IF:
		return it.evalIf(n, env)
	case ast.WHILE:
		return it.evalWhile(n, env)
	case ast.FOR:
		return it.evalFor(n, env)
	case ast.BLOCK:
		return it.evalBlock(n, env)
	case ast.MATCH:
		return it.evalMatch(n, env)
	case ast.TRY:
		return it.evalTry(n, env)
	case ast.RETURN:
		return it.evalControlFlow(n, env, value.BubbleReturn)
	case ast.BREAK:
		return it.evalControlFlow(n, env, value.BubbleBreak)
	case ast.CONTINUE:
		return it.evalControlFlow(n, env, value.BubbleContinue)
	case ast.OP:
		return it.evalOp(n, env)
	case ast.PREOP:
		return it.evalPreOp(n, env)
	case ast.SUFOP:
		return it.evalSufOp(n, env)
	default:
		return value.Error("Runtime Error", "cannot evaluate node kind "+n.Kind.String())
	}
}

// evalString implements spec.md §4.4: a non-interpolated STRING node
// carries its literal text as Value; an interpolated one carries nil
// Value and alternating STRING/expr children to render and join.
func (it *Interpreter) evalString(n *ast.Node, env *value.Env) *value.Value {
	if n.Value != nil {
		return value.String(n.Ident())
	}
	var sb strings.Builder
	for _, c := range n.Children {
		if c.Kind == ast.STRING {
			sb.WriteString(c.Ident())
			continue
		}
		v := it.Eval(c, env)
		if v.Propagates() {
			return v
		}
		sb.WriteString(value.ToString(v))
	}
	return value.String(sb.String())
}

func (it *Interpreter) evalControlFlow(n *ast.Node, env *value.Env, kind value.BubbleKind) *value.Value {
	val := value.Nil()
	if len(n.Children) > 0 {
		val = it.Eval(n.Children[0], env)
		if val.Propagates() {
			return val
		}
	}
	return value.Bubble(kind, val)
}

func (it *Interpreter) evalTable(n *ast.Node, env *value.Env) *value.Value {
	out := value.NewTable()
	for _, c := range n.Children {
		switch c.Kind {
		case ast.PAIR:
			if c.Children[0] == nil {
				v := it.Eval(c.Children[1], env)
				if v.Propagates() {
					return v
				}
				out.Table.Append(v)
				continue
			}
			var key *value.Value
			if c.Children[0].Kind == ast.NAME {
				key = value.String(c.Children[0].Ident())
			} else {
				key = it.Eval(c.Children[0], env)
				if key.Propagates() {
					return key
				}
			}
			v := it.Eval(c.Children[1], env)
			if v.Propagates() {
				return v
			}
			out.Table.Define(key, v)
		case ast.SPREAD:
			sv := it.Eval(c.Children[0], env)
			if sv.Propagates() {
				return sv
			}
			if sv.Tag != value.TagTable {
				return value.Error("Runtime Error", "spread requires a table")
			}
			for _, k := range sv.Table.Keys() {
				v, _ := sv.Table.Get(k)
				if k.Tag == value.TagNumber {
					out.Table.Append(v)
				} else {
					out.Table.Define(k, v)
				}
			}
		default:
			v := it.Eval(c, env)
			if v.Propagates() {
				return v
			}
			out.Table.Append(v)
		}
	}
	return out
}

// evalFn evaluates default expressions eagerly and captures the
// environment: a Snapshot() for lexical (FN) closures, the live chain
// for FN-DYNAMIC, per spec.md §4.4/§4.6.
func (it *Interpreter) evalFn(n *ast.Node, env *value.Env) *value.Value {
	params := n.Params()
	defaults := make([]*value.Value, len(params))
	for i, p := range params {
		if p.Default != nil {
			d := it.Eval(p.Default, env)
			if d.Propagates() {
				return d
			}
			defaults[i] = d
		}
	}
	dynamic := n.Kind == ast.FNDYNAMIC
	capturedEnv := env
	if !dynamic {
		capturedEnv = env.Snapshot()
	}
	return value.NewClosure(params, defaults, n.Children[0], capturedEnv, dynamic)
}

func (it *Interpreter) evalBlock(n *ast.Node, env *value.Env) *value.Value {
	child := value.NewEnv(env)
	last := value.Nil()
	for _, c := range n.Children {
		last = it.Eval(c, child)
		if last.Propagates() {
			return last
		}
	}
	return last
}

func (it *Interpreter) evalIf(n *ast.Node, env *value.Env) *value.Value {
	cond := it.Eval(n.Children[0], env)
	if cond.Propagates() {
		return cond
	}
	if cond.Truthy() {
		return it.Eval(n.Children[1], env)
	}
	for _, c := range n.Children[2:] {
		switch c.Kind {
		case ast.ELIF:
			econd := it.Eval(c.Children[0], env)
			if econd.Propagates() {
				return econd
			}
			if econd.Truthy() {
				return it.Eval(c.Children[1], env)
			}
		case ast.ELSE:
			return it.Eval(c.Children[0], env)
		}
	}
	return value.Nil()
}

func (it *Interpreter) evalWhile(n *ast.Node, env *value.Env) *value.Value {
	cond, body := n.Children[0], n.Children[1]
	last := value.Nil()
	for {
		c := it.Eval(cond, env)
		if c.Propagates() {
			return c
		}
		if !c.Truthy() {
			break
		}
		r := it.Eval(body, env)
		if r.IsBubble() {
			switch r.BubbleKind {
			case value.BubbleBreak:
				return r.BubbleVal
			case value.BubbleContinue:
				last = r.BubbleVal
				continue
			default: // BubbleReturn propagates to the enclosing function call
				return r
			}
		}
		if r.IsError() {
			return r
		}
		last = r
	}
	return last
}

// evalFor drives the "_iter_" protocol: a zero-arg generator closure
// returns successive keys (nil terminates); each key is looked up in
// the iterable to produce the bound value, per spec.md §4.4.
func (it *Interpreter) evalFor(n *ast.Node, env *value.Env) *value.Value {
	binder, iterNode, body := n.Children[0], n.Children[1], n.Children[2]
	iterVal := it.Eval(iterNode, env)
	if iterVal.Propagates() {
		return iterVal
	}
	iterFn := it.member(iterVal, value.String("_iter_"))
	if iterFn.Propagates() {
		return iterFn
	}
	if iterFn.Tag != value.TagClosure && iterFn.Tag != value.TagBuiltin {
		return value.Error("Runtime Error", "value is not iterable")
	}
	gen := it.invoke(iterFn, nil, nil, env)
	if gen.Propagates() {
		return gen
	}
	result := value.NewTable()
	for {
		k := it.invoke(gen, nil, nil, env)
		if k.Propagates() {
			return k
		}
		if k.Tag == value.TagNil {
			break
		}
		elem, ok := iterVal.Table.Get(k)
		if !ok {
			elem = value.Nil()
		}
		scoped := value.NewEnv(env)
		if r := it.bindDestructure(binder, scoped, elem, true); r.Propagates() {
			return r
		}
		bodyRes := it.Eval(body, scoped)
		if bodyRes.IsBubble() {
			switch bodyRes.BubbleKind {
			case value.BubbleBreak:
				result.Table.Append(bodyRes.BubbleVal)
				return result
			case value.BubbleContinue:
				result.Table.Append(bodyRes.BubbleVal)
				continue
			default:
				return bodyRes
			}
		}
		if bodyRes.IsError() {
			return bodyRes
		}
		result.Table.Append(bodyRes)
	}
	return result
}

func (it *Interpreter) evalMatch(n *ast.Node, env *value.Env) *value.Value {
	scrutinee := it.Eval(n.Children[0], env)
	if scrutinee.Propagates() {
		return scrutinee
	}
	matchEnv := env
	if binder := n.MatchBinder(); binder != "" {
		matchEnv = value.NewEnv(env)
		matchEnv.Define(binder, scrutinee)
	}
	for _, arm := range n.Children[1:] {
		if pattern.Match(arm.Children[0], scrutinee, matchEnv, it.Eval) {
			return it.Eval(arm.Children[1], matchEnv)
		}
	}
	return value.Nil()
}

func (it *Interpreter) evalTry(n *ast.Node, env *value.Env) *value.Value {
	result := it.Eval(n.Children[0], env)
	if !result.IsError() {
		return result
	}
	handler := it.Eval(n.Children[1], env)
	if handler.Propagates() {
		return handler
	}
	if handler.Tag != value.TagClosure && handler.Tag != value.TagBuiltin {
		return value.Error("Runtime Error", "uncallable catch expression")
	}
	return it.invoke(handler, []*value.Value{value.ValError(result.ErrType, result.ErrMsg)}, nil, env)
}

// member implements table/string get with metatable fallback, plus the
// Error/ValError ".type"/".value" accessors scenarios 6-7 rely on.
func (it *Interpreter) member(container, key *value.Value) *value.Value {
	if container.Tag == value.TagTable {
		if v, ok := container.Table.Get(key); ok {
			return v
		}
	}
	if container.Tag == value.TagError || container.Tag == value.TagValError {
		switch value.ToString(key) {
		case "type":
			return value.String(container.ErrType)
		case "value":
			return value.String(container.ErrMsg)
		}
	}
	if container.Meta != nil {
		if m, ok := container.Meta[value.ToString(key)]; ok {
			return m
		}
	}
	if container.Tag != value.TagTable && container.Tag != value.TagString {
		return value.Error("Runtime Error", "cannot index value of type "+container.Tag.String())
	}
	return value.Nil()
}

// --- calls -----------------------------------------------------------

// evalCall evaluates a CALL node. piped is non-nil only when this call
// is the direct right-hand side of "|>"; a bare "_" argument then
// consumes it instead of evaluating to the Underscore sentinel.
func (it *Interpreter) evalCall(n *ast.Node, env *value.Env, piped *value.Value) *value.Value {
	callee := it.Eval(n.Children[0], env)
	if callee.Propagates() {
		return callee
	}
	var positional []*value.Value
	kwargs := map[string]*value.Value{}
	consumed := false
	for _, arg := range n.Children[1:] {
		switch {
		case arg.Kind == ast.SPREAD:
			sv := it.Eval(arg.Children[0], env)
			if sv.Propagates() {
				return sv
			}
			if sv.Tag != value.TagTable {
				return value.Error("Runtime Error", "spread requires a table")
			}
			for _, k := range sv.Table.Keys() {
				v, _ := sv.Table.Get(k)
				if k.Tag == value.TagNumber {
					positional = append(positional, v)
				} else {
					kwargs[value.ToString(k)] = v
				}
			}
		case arg.Kind == ast.KWARG:
			v := it.Eval(arg.Children[0], env)
			if v.Propagates() {
				return v
			}
			kwargs[arg.Ident()] = v
		case piped != nil && !consumed && arg.Kind == ast.NAME && arg.Ident() == "_":
			positional = append(positional, piped)
			consumed = true
		default:
			v := it.Eval(arg, env)
			if v.Propagates() {
				return v
			}
			positional = append(positional, v)
		}
	}
	if piped != nil && !consumed {
		positional = append([]*value.Value{piped}, positional...)
	}
	return it.invoke(callee, positional, kwargs, env)
}

func (it *Interpreter) invoke(callee *value.Value, positional []*value.Value, kwargs map[string]*value.Value, env *value.Env) *value.Value {
	switch callee.Tag {
	case value.TagClosure:
		return it.callClosure(callee, positional, kwargs)
	case value.TagBuiltin:
		return callee.Builtin.Fn(positional, env)
	case value.TagTable:
		if callee.Meta != nil {
			if fn, ok := callee.Meta["_call_"]; ok {
				return it.invoke(fn, positional, kwargs, env)
			}
		}
		return value.Error("Runtime Error", "attempt to call a non-callable value")
	default:
		return value.Error("Runtime Error", "attempt to call a non-callable value")
	}
}

// callClosure binds defaults, then positional arguments up to arity
// (the last Rest parameter gathers the remainder into a table), then
// keyword arguments, then "this", per spec.md §4.4.
func (it *Interpreter) callClosure(callee *value.Value, positional []*value.Value, kwargs map[string]*value.Value) *value.Value {
	c := callee.Closure
	it.Log.Debug("call closure", "args", len(positional), "kwargs", len(kwargs), "dynamic", c.Dynamic)
	fresh := value.NewEnv(c.Env)
	for i, p := range c.Params {
		if p.Rest {
			continue
		}
		if i < len(c.Defaults) && c.Defaults[i] != nil {
			fresh.Define(p.Name, c.Defaults[i])
		} else {
			fresh.Define(p.Name, value.Nil())
		}
	}
	for i, p := range c.Params {
		if p.Rest {
			rest := value.NewTable()
			if i < len(positional) {
				for _, a := range positional[i:] {
					rest.Table.Append(a)
				}
			}
			fresh.Define(p.Name, rest)
			break
		}
		if i < len(positional) {
			fresh.Define(p.Name, positional[i])
		}
	}
	for name, v := range kwargs {
		fresh.Define(name, v)
	}
	fresh.Define("this", callee)
	result := it.Eval(c.Body, fresh)
	if result.IsBubble() && result.BubbleKind == value.BubbleReturn {
		return result.BubbleVal
	}
	return result
}

// --- operators ---------------------------------------------------------

func (it *Interpreter) evalOp(n *ast.Node, env *value.Env) *value.Value {
	sym := n.Ident()
	switch sym {
	case "=", ":=", "?=", "+=", "-=", "*=", "/=", "%=":
		return it.evalAssign(n, env, sym)
	case "|>":
		return it.evalPipe(n, env)
	case "&&":
		l := it.Eval(n.Children[0], env)
		if l.Propagates() {
			return l
		}
		if !l.Truthy() {
			return value.Bool(false)
		}
		r := it.Eval(n.Children[1], env)
		if r.Propagates() {
			return r
		}
		return value.Bool(r.Truthy())
	case "||":
		l := it.Eval(n.Children[0], env)
		if l.Propagates() {
			return l
		}
		if l.Truthy() {
			return value.Bool(true)
		}
		r := it.Eval(n.Children[1], env)
		if r.Propagates() {
			return r
		}
		return value.Bool(r.Truthy())
	case "??":
		l := it.Eval(n.Children[0], env)
		if l.Propagates() {
			return l
		}
		if l.Tag != value.TagNil {
			return l
		}
		return it.Eval(n.Children[1], env)
	case "?:":
		l := it.Eval(n.Children[0], env)
		if l.Propagates() {
			return l
		}
		if l.Truthy() {
			return l
		}
		return it.Eval(n.Children[1], env)
	case ".":
		left := it.Eval(n.Children[0], env)
		if left.Propagates() {
			return left
		}
		return it.member(left, value.String(n.Children[1].Ident()))
	case "[]":
		left := it.Eval(n.Children[0], env)
		if left.Propagates() {
			return left
		}
		idx := it.Eval(n.Children[1], env)
		if idx.Propagates() {
			return idx
		}
		return it.member(left, idx)
	case "..":
		return it.evalRange(n, env)
	case "=~":
		return it.evalMatchOp(n, env)
	case "==", "!=", ">", "<", ">=", "<=":
		return it.evalCompare(sym, n, env)
	case "+", "-", "*", "/", "%":
		l := it.Eval(n.Children[0], env)
		if l.Propagates() {
			return l
		}
		r := it.Eval(n.Children[1], env)
		if r.Propagates() {
			return r
		}
		return it.arith(sym, l, r)
	default:
		if strings.HasPrefix(sym, "<") && strings.HasSuffix(sym, ">") {
			return it.evalCustomInfix(sym, n, env)
		}
		return value.Error("Runtime Error", "unknown operator "+sym)
	}
}

func (it *Interpreter) evalPipe(n *ast.Node, env *value.Env) *value.Value {
	left := it.Eval(n.Children[0], env)
	if left.Propagates() {
		return left
	}
	rhs := n.Children[1]
	if rhs.Kind == ast.CALL {
		return it.evalCall(rhs, env, left)
	}
	callee := it.Eval(rhs, env)
	if callee.Propagates() {
		return callee
	}
	return it.invoke(callee, []*value.Value{left}, nil, env)
}

func (it *Interpreter) evalRange(n *ast.Node, env *value.Env) *value.Value {
	l := it.Eval(n.Children[0], env)
	if l.Propagates() {
		return l
	}
	r := it.Eval(n.Children[1], env)
	if r.Propagates() {
		return r
	}
	if l.Tag != value.TagNumber || r.Tag != value.TagNumber {
		return value.Error("Runtime Error", "range requires two numbers")
	}
	out := value.NewTable()
	lo, hi := int(l.Num), int(r.Num)
	if lo <= hi {
		for i := lo; i <= hi; i++ {
			out.Table.Append(value.Number(float64(i)))
		}
	} else {
		for i := lo; i >= hi; i-- {
			out.Table.Append(value.Number(float64(i)))
		}
	}
	return out
}

func (it *Interpreter) evalMatchOp(n *ast.Node, env *value.Env) *value.Value {
	l := it.Eval(n.Children[0], env)
	if l.Propagates() {
		return l
	}
	r := it.Eval(n.Children[1], env)
	if r.Propagates() {
		return r
	}
	if l.Tag != value.TagString || r.Tag != value.TagRegex {
		return value.Error("Runtime Error", "=~ requires a string and a regex")
	}
	re, err := regexp.Compile(r.Str)
	if err != nil {
		return value.Error("Runtime Error", "invalid regex: "+err.Error())
	}
	return value.Bool(re.MatchString(l.Str))
}

func (it *Interpreter) evalCompare(sym string, n *ast.Node, env *value.Env) *value.Value {
	l := it.Eval(n.Children[0], env)
	if l.Propagates() {
		return l
	}
	r := it.Eval(n.Children[1], env)
	if r.Propagates() {
		return r
	}
	switch sym {
	case "==":
		return value.Bool(value.Equal(l, r))
	case "!=":
		return value.Bool(!value.Equal(l, r))
	}
	if l.Tag == value.TagNumber && r.Tag == value.TagNumber {
		switch sym {
		case ">":
			return value.Bool(l.Num > r.Num)
		case "<":
			return value.Bool(l.Num < r.Num)
		case ">=":
			return value.Bool(l.Num >= r.Num)
		case "<=":
			return value.Bool(l.Num <= r.Num)
		}
	}
	if l.Tag == value.TagString && r.Tag == value.TagString {
		switch sym {
		case ">":
			return value.Bool(l.Str > r.Str)
		case "<":
			return value.Bool(l.Str < r.Str)
		case ">=":
			return value.Bool(l.Str >= r.Str)
		case "<=":
			return value.Bool(l.Str <= r.Str)
		}
	}
	return value.Error("Runtime Error", "cannot compare values of type "+l.Tag.String()+" and "+r.Tag.String())
}

func (it *Interpreter) arith(sym string, l, r *value.Value) *value.Value {
	switch sym {
	case "+":
		if l.Tag == value.TagNumber && r.Tag == value.TagNumber {
			return value.Number(l.Num + r.Num)
		}
		if l.Tag == value.TagString {
			return value.String(l.Str + value.ToString(r))
		}
		if l.Tag == value.TagTable && r.Tag == value.TagTable {
			return value.Add(l, r)
		}
	case "-":
		if l.Tag == value.TagNumber && r.Tag == value.TagNumber {
			return value.Number(l.Num - r.Num)
		}
	case "*":
		if l.Tag == value.TagNumber && r.Tag == value.TagNumber {
			return value.Number(l.Num * r.Num)
		}
		if l.Tag == value.TagString && r.Tag == value.TagNumber {
			return value.String(strings.Repeat(l.Str, max(int(r.Num), 0)))
		}
		if l.Tag == value.TagNumber && r.Tag == value.TagString {
			return value.String(strings.Repeat(r.Str, max(int(l.Num), 0)))
		}
	case "/":
		if l.Tag == value.TagNumber && r.Tag == value.TagNumber {
			if r.Num == 0 {
				return value.Error("Runtime Error", "division by zero")
			}
			return value.Number(l.Num / r.Num)
		}
	case "%":
		if l.Tag == value.TagNumber && r.Tag == value.TagNumber {
			if r.Num == 0 {
				return value.Error("Runtime Error", "division by zero")
			}
			return value.Number(math.Mod(l.Num, r.Num))
		}
	}
	return value.Error("Runtime Error", "cannot apply "+sym+" to "+l.Tag.String()+" and "+r.Tag.String())
}

func (it *Interpreter) evalCustomInfix(sym string, n *ast.Node, env *value.Env) *value.Value {
	name := sym[1 : len(sym)-1]
	fn := env.Read("infix_" + name)
	if fn.Propagates() {
		return fn
	}
	l := it.Eval(n.Children[0], env)
	if l.Propagates() {
		return l
	}
	r := it.Eval(n.Children[1], env)
	if r.Propagates() {
		return r
	}
	return it.invoke(fn, []*value.Value{l, r}, nil, env)
}

func (it *Interpreter) evalPreOp(n *ast.Node, env *value.Env) *value.Value {
	v := it.Eval(n.Children[0], env)
	if v.Propagates() {
		return v
	}
	switch n.Ident() {
	case "+":
		if v.Tag != value.TagNumber {
			return value.Error("Runtime Error", "unary + requires a number")
		}
		return value.Number(+v.Num)
	case "-":
		if v.Tag != value.TagNumber {
			return value.Error("Runtime Error", "unary - requires a number")
		}
		return value.Number(-v.Num)
	case "!":
		return value.Bool(!v.Truthy())
	default:
		return value.Error("Runtime Error", "unknown prefix operator "+n.Ident())
	}
}

func (it *Interpreter) evalSufOp(n *ast.Node, env *value.Env) *value.Value {
	v := it.Eval(n.Children[0], env)
	if v.Propagates() {
		return v
	}
	if n.Ident() != "!" {
		return value.Error("Runtime Error", "unknown suffix operator "+n.Ident())
	}
	if v.Tag != value.TagNumber || v.Num < 0 || v.Num != math.Trunc(v.Num) {
		return value.Error("Runtime Error", "factorial requires a non-negative integer")
	}
	result := 1.0
	for i := 2; i <= int(v.Num); i++ {
		result *= float64(i)
	}
	return value.Number(result)
}

// --- assignment ----------------------------------------------------

func (it *Interpreter) evalAssign(n *ast.Node, env *value.Env, op string) *value.Value {
	lhs := n.Children[0]
	switch op {
	case ":=":
		val := it.Eval(n.Children[1], env)
		if val.Propagates() {
			return val
		}
		return it.bindDestructure(lhs, env, val, true)
	case "=":
		val := it.Eval(n.Children[1], env)
		if val.Propagates() {
			return val
		}
		return it.bindDestructure(lhs, env, val, false)
	case "?=":
		cur := it.readLValue(lhs, env)
		undefined := cur.IsError()
		if !undefined && cur.Tag != value.TagNil {
			return cur
		}
		val := it.Eval(n.Children[1], env)
		if val.Propagates() {
			return val
		}
		return it.bindDestructure(lhs, env, val, undefined)
	default: // += -= *= /= %=
		cur := it.readLValue(lhs, env)
		if cur.Propagates() {
			return cur
		}
		rhs := it.Eval(n.Children[1], env)
		if rhs.Propagates() {
			return rhs
		}
		combined := it.arith(strings.TrimSuffix(op, "="), cur, rhs)
		if combined.Propagates() {
			return combined
		}
		return it.bindDestructure(lhs, env, combined, false)
	}
}

func (it *Interpreter) readLValue(lhs *ast.Node, env *value.Env) *value.Value {
	switch lhs.Kind {
	case ast.NAME:
		return env.Read(lhs.Ident())
	case ast.OP:
		switch lhs.Ident() {
		case ".":
			container := it.Eval(lhs.Children[0], env)
			if container.Propagates() {
				return container
			}
			return it.member(container, value.String(lhs.Children[1].Ident()))
		case "[]":
			container := it.Eval(lhs.Children[0], env)
			if container.Propagates() {
				return container
			}
			key := it.Eval(lhs.Children[1], env)
			if key.Propagates() {
				return key
			}
			return it.member(container, key)
		}
	}
	return value.Error("Runtime Error", "invalid assignment target")
}

// bindDestructure writes val into the lvalue lhs: a NAME, a member
// access, or a TABLE destructuring pattern (named keys first, then
// remaining children fill positionally), per spec.md §4.4.
func (it *Interpreter) bindDestructure(lhs *ast.Node, env *value.Env, val *value.Value, declare bool) *value.Value {
	switch lhs.Kind {
	case ast.NAME:
		if declare {
			env.Define(lhs.Ident(), val)
			return val
		}
		return env.Write(lhs.Ident(), val)
	case ast.OP:
		switch lhs.Ident() {
		case ".":
			container := it.Eval(lhs.Children[0], env)
			if container.Propagates() {
				return container
			}
			if container.Tag != value.TagTable {
				return value.Error("Runtime Error", "cannot assign member on a non-table")
			}
			key := value.String(lhs.Children[1].Ident())
			return it.storeMember(container, key, val, declare)
		case "[]":
			container := it.Eval(lhs.Children[0], env)
			if container.Propagates() {
				return container
			}
			if container.Tag != value.TagTable {
				return value.Error("Runtime Error", "cannot index-assign on a non-table")
			}
			key := it.Eval(lhs.Children[1], env)
			if key.Propagates() {
				return key
			}
			return it.storeMember(container, key, val, declare)
		}
	case ast.TABLE:
		return it.destructureTable(lhs, env, val, declare)
	}
	return value.Error("Runtime Error", "invalid assignment target")
}

func (it *Interpreter) storeMember(container, key, val *value.Value, declare bool) *value.Value {
	if declare {
		container.Table.Define(key, val)
		return val
	}
	if !container.Table.Set(key, val) {
		return value.Error("Runtime Error", "set on non-existing key")
	}
	return val
}

func (it *Interpreter) destructureTable(pat *ast.Node, env *value.Env, val *value.Value, declare bool) *value.Value {
	if val.Tag != value.TagTable {
		return value.Error("Runtime Error", "cannot destructure a non-table value")
	}
	for _, c := range pat.Children {
		if c.Kind != ast.PAIR {
			continue
		}
		var key *value.Value
		if c.Children[0].Kind == ast.NAME {
			key = value.String(c.Children[0].Ident())
		} else {
			key = it.Eval(c.Children[0], env)
			if key.Propagates() {
				return key
			}
		}
		sv, ok := val.Table.Get(key)
		if !ok {
			sv = value.Nil()
		}
		if r := it.bindDestructure(c.Children[1], env, sv, declare); r.Propagates() {
			return r
		}
	}
	posIdx := 0
	for _, c := range pat.Children {
		if c.Kind == ast.PAIR || c.Kind == ast.SPREAD {
			continue
		}
		sv, ok := val.Table.Get(value.Number(float64(posIdx)))
		posIdx++
		if !ok {
			sv = value.Nil()
		}
		if r := it.bindDestructure(c, env, sv, declare); r.Propagates() {
			return r
		}
	}
	return val
}
