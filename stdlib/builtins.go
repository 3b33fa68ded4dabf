package stdlib

import (
	"bufio"
	"fmt"
	"os"

	"github.com/IANYEYZ/teeny/runtime/interpreter"
	"github.com/IANYEYZ/teeny/runtime/lexer"
	"github.com/IANYEYZ/teeny/runtime/parser"
	"github.com/IANYEYZ/teeny/runtime/processor"
	"github.com/IANYEYZ/teeny/runtime/value"
	"github.com/IANYEYZ/teeny/stdlib/benchlib"
	"github.com/IANYEYZ/teeny/stdlib/errorlib"
	"github.com/IANYEYZ/teeny/stdlib/fslib"
	"github.com/IANYEYZ/teeny/stdlib/httplib"
	"github.com/IANYEYZ/teeny/stdlib/jsonlib"
	"github.com/IANYEYZ/teeny/stdlib/mathlib"
	"github.com/IANYEYZ/teeny/stdlib/module"
	"github.com/IANYEYZ/teeny/stdlib/oslib"
	"github.com/IANYEYZ/teeny/stdlib/sqllib"
	"github.com/IANYEYZ/teeny/stdlib/timelib"
)

var stdin = bufio.NewReader(os.Stdin)

// Seed builds a fresh global Env carrying every standard global
// spec.md §6 names, then wraps it in an Interpreter. cache is the
// module system's process-wide path→value cache; pass the same Cache
// to every Seed call within one process so import's "re-imports
// return the same value" guarantee holds across file/REPL/nested
// import boundaries.
func Seed(cfg Config, cache *module.Cache) *interpreter.Interpreter {
	global := value.NewEnv(nil)
	it := interpreter.New(global, cfg.logger())

	resolver := &module.Resolver{
		SourcePath:        cfg.SourcePath,
		GlobalPackagePath: cfg.GlobalPackagePath,
		Cache:             cache,
		Run: func(path string) *value.Value {
			return runModule(path, cfg, cache)
		},
	}

	global.Define("math", mathlib.New())
	global.Define("error", errorlib.New())
	global.Define("fs", fslib.New(cfg.SourcePath))
	global.Define("json", jsonlib.New())
	global.Define("http", httplib.New())
	global.Define("os", oslib.New(cfg.SourcePath))
	global.Define("time", timelib.New())
	global.Define("benchmark", benchlib.New())
	global.Define("sql", sqllib.New(cfg.SQLitePath))

	for name, fn := range module.New(resolver) {
		global.Define(name, fn)
	}

	argv := value.NewTable()
	for _, a := range cfg.Argv {
		argv.Table.Append(value.String(a))
	}
	global.Define("argv", argv)
	global.Define("export", value.NewTable())

	seedBuiltins(global, it)
	return it
}

// runModule lexes, parses, and evaluates the Teeny source at path in
// a fresh seeded global env, returning whatever "export" is bound to
// there, per spec.md §5's "the file is run in a fresh global env and
// the value bound to export in that env is returned".
func runModule(path string, cfg Config, cache *module.Cache) *value.Value {
	src, err := os.ReadFile(path)
	if err != nil {
		return value.Error("Import Error", err.Error())
	}
	toks, err := lexer.Tokenize(string(src))
	if err != nil {
		return value.Error("Syntax Error", err.Error())
	}
	program, err := parser.ParseProgram(toks)
	if err != nil {
		return value.Error("Syntax Error", err.Error())
	}
	program = processor.ProcessAll(program)

	moduleCfg := cfg
	moduleCfg.SourcePath = parentDir(path)
	it := Seed(moduleCfg, cache)
	if res := it.Run(program); res.IsError() {
		return res
	}
	return it.Global.Read("export")
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

// seedBuiltins registers the bare global builtins: print, println,
// input, type, copy, string, number, bool, table, eval, range.
// Grounded on original_source/src/teeny/glob.py's makeGlobal.
func seedBuiltins(global *value.Env, it *interpreter.Interpreter) {
	global.Define("print", value.NewBuiltin("print", false, func(args []*value.Value, env *value.Env) *value.Value {
		for _, a := range args {
			fmt.Print(value.ToString(a))
		}
		return value.Nil()
	}))
	global.Define("println", value.NewBuiltin("println", false, func(args []*value.Value, env *value.Env) *value.Value {
		for _, a := range args {
			fmt.Print(value.ToString(a))
		}
		fmt.Println()
		return value.Nil()
	}))
	global.Define("input", value.NewBuiltin("input", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) > 0 {
			fmt.Print(value.ToString(args[0]))
		}
		line, _ := stdin.ReadString('\n')
		return value.String(trimNewline(line))
	}))
	global.Define("type", value.NewBuiltin("type", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 {
			return value.String("nil")
		}
		return value.String(typeName(args[0]))
	}))
	global.Define("copy", value.NewBuiltin("copy", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 {
			return value.Nil()
		}
		return deepCopy(args[0])
	}))
	global.Define("string", value.NewBuiltin("string", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 {
			return value.String("nil")
		}
		return value.String(value.ToString(args[0]))
	}))
	global.Define("number", value.NewBuiltin("number", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 {
			return value.Error("Runtime Error", "convert non-Number to Number")
		}
		return value.ToNumber(args[0])
	}))
	global.Define("bool", value.NewBuiltin("bool", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 {
			return value.Bool(false)
		}
		return value.Bool(args[0].Truthy())
	}))
	global.Define("table", value.NewBuiltin("table", false, func(args []*value.Value, env *value.Env) *value.Value {
		out := value.NewTable()
		for _, a := range args {
			out.Table.Append(a)
		}
		return out
	}))
	global.Define("eval", value.NewBuiltin("eval", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 || args[0].Tag != value.TagString {
			return value.Error("Runtime Error", "eval requires a string")
		}
		return evalSource(args[0].Str, it)
	}))
	global.Define("range", value.NewBuiltin("range", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 2 || args[0].Tag != value.TagNumber || args[1].Tag != value.TagNumber {
			return value.Error("Runtime Error", "range requires (l, r, step?)")
		}
		step := 1.0
		if len(args) > 2 && args[2].Tag == value.TagNumber {
			step = args[2].Num
		}
		out := value.NewTable()
		if step == 0 {
			return value.Error("Runtime Error", "range step must not be zero")
		}
		for v := args[0].Num; (step > 0 && v < args[1].Num) || (step < 0 && v > args[1].Num); v += step {
			out.Table.Append(value.Number(v))
		}
		return out
	}))
}

func evalSource(src string, it *interpreter.Interpreter) *value.Value {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return value.Error("Syntax Error", err.Error())
	}
	program, err := parser.ParseProgram(toks)
	if err != nil {
		return value.Error("Syntax Error", err.Error())
	}
	program = processor.ProcessAll(program)
	return it.Run(program)
}

func typeName(v *value.Value) string {
	switch v.Tag {
	case value.TagNumber:
		return "number"
	case value.TagTable:
		return "table"
	case value.TagString:
		return "string"
	case value.TagValError, value.TagError:
		return "error"
	case value.TagClosure, value.TagBuiltin:
		return "closure"
	case value.TagNil:
		return "nil"
	default:
		return "unknown"
	}
}

func deepCopy(v *value.Value) *value.Value {
	if v.Tag != value.TagTable {
		return v
	}
	out := value.NewTable()
	for _, k := range v.Table.Keys() {
		val, _ := v.Table.Get(k)
		out.Table.Define(k, deepCopy(val))
	}
	return out
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
