// Package mathlib implements the `math` global table: constants and
// functions mirroring Python's math/random modules, grounded on
// original_source/src/teeny/glob.py's Math table.
package mathlib

import (
	"math"
	"math/rand"

	"github.com/IANYEYZ/teeny/runtime/value"
)

func unary(fn func(float64) float64) value.BuiltinFunc {
	return func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 || args[0].Tag != value.TagNumber {
			return value.Error("Runtime Error", "expected a Number argument")
		}
		return value.Number(fn(args[0].Num))
	}
}

func binary(fn func(a, b float64) float64) value.BuiltinFunc {
	return func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 2 || args[0].Tag != value.TagNumber || args[1].Tag != value.TagNumber {
			return value.Error("Runtime Error", "expected two Number arguments")
		}
		return value.Number(fn(args[0].Num, args[1].Num))
	}
}

// New builds the math table.
func New() *value.Value {
	t := value.NewTable()
	d := t.Table.Define

	d(value.String("pi"), value.Number(math.Pi))
	d(value.String("e"), value.Number(math.E))
	d(value.String("tau"), value.Number(math.Pi*2))

	d(value.String("abs"), value.NewBuiltin("abs", false, unary(math.Abs)))
	d(value.String("floor"), value.NewBuiltin("floor", false, unary(math.Floor)))
	d(value.String("ceil"), value.NewBuiltin("ceil", false, unary(math.Ceil)))
	d(value.String("round"), value.NewBuiltin("round", false, unary(math.Round)))
	d(value.String("trunc"), value.NewBuiltin("trunc", false, unary(math.Trunc)))
	d(value.String("min"), value.NewBuiltin("min", false, binary(math.Min)))
	d(value.String("max"), value.NewBuiltin("max", false, binary(math.Max)))
	d(value.String("sign"), value.NewBuiltin("sign", false, unary(func(x float64) float64 { return math.Copysign(1, x) })))
	d(value.String("sin"), value.NewBuiltin("sin", false, unary(math.Sin)))
	d(value.String("cos"), value.NewBuiltin("cos", false, unary(math.Cos)))
	d(value.String("tan"), value.NewBuiltin("tan", false, unary(math.Tan)))
	d(value.String("asin"), value.NewBuiltin("asin", false, unary(math.Asin)))
	d(value.String("acos"), value.NewBuiltin("acos", false, unary(math.Acos)))
	d(value.String("atan"), value.NewBuiltin("atan", false, unary(math.Atan)))
	d(value.String("atan2"), value.NewBuiltin("atan2", false, binary(math.Atan2)))
	d(value.String("degrees"), value.NewBuiltin("degrees", false, unary(func(x float64) float64 { return x * 180 / math.Pi })))
	d(value.String("radians"), value.NewBuiltin("radians", false, unary(func(x float64) float64 { return x * math.Pi / 180 })))
	d(value.String("exp"), value.NewBuiltin("exp", false, unary(math.Exp)))
	d(value.String("pow"), value.NewBuiltin("pow", false, binary(math.Pow)))
	d(value.String("log"), value.NewBuiltin("log", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 || args[0].Tag != value.TagNumber {
			return value.Error("Runtime Error", "expected a Number argument")
		}
		base := math.E
		if len(args) > 1 && args[1].Tag == value.TagNumber {
			base = args[1].Num
		}
		return value.Number(math.Log(args[0].Num) / math.Log(base))
	}))
	d(value.String("log10"), value.NewBuiltin("log10", false, unary(math.Log10)))
	d(value.String("log2"), value.NewBuiltin("log2", false, unary(math.Log2)))
	d(value.String("hypot"), value.NewBuiltin("hypot", false, func(args []*value.Value, env *value.Env) *value.Value {
		var sumSq float64
		for _, a := range args {
			if a.Tag != value.TagNumber {
				return value.Error("Runtime Error", "expected Number arguments")
			}
			sumSq += a.Num * a.Num
		}
		return value.Number(math.Sqrt(sumSq))
	}))
	d(value.String("random"), value.NewBuiltin("random", false, func(args []*value.Value, env *value.Env) *value.Value {
		return value.Number(rand.Float64())
	}))
	d(value.String("uniform"), value.NewBuiltin("uniform", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 2 || args[0].Tag != value.TagNumber || args[1].Tag != value.TagNumber {
			return value.Error("Runtime Error", "expected two Number arguments")
		}
		a, b := int(args[0].Num), int(args[1].Num)
		if a >= b {
			return value.Number(float64(a))
		}
		return value.Number(float64(a + rand.Intn(b-a)))
	}))
	d(value.String("randint"), value.NewBuiltin("randint", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 2 || args[0].Tag != value.TagNumber || args[1].Tag != value.TagNumber {
			return value.Error("Runtime Error", "expected two Number arguments")
		}
		a, b := int(args[0].Num), int(args[1].Num)
		if a >= b {
			return value.Number(float64(a))
		}
		return value.Number(float64(a + rand.Intn(b-a+1)))
	}))
	d(value.String("clamp"), value.NewBuiltin("clamp", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 3 {
			return value.Error("Runtime Error", "clamp requires (a, lo, hi)")
		}
		a, lo, hi := args[0], args[1], args[2]
		if value.Less(a, lo) {
			return lo
		}
		if value.Less(hi, a) {
			return hi
		}
		return a
	}))
	d(value.String("lerp"), value.NewBuiltin("lerp", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 3 || args[0].Tag != value.TagNumber || args[1].Tag != value.TagNumber || args[2].Tag != value.TagNumber {
			return value.Error("Runtime Error", "lerp requires three Numbers")
		}
		a, b, t := args[0].Num, args[1].Num, args[2].Num
		return value.Number(a + (b-a)*t)
	}))
	d(value.String("eq"), compareBuiltin(func(a, b *value.Value) bool { return value.Equal(a, b) }))
	d(value.String("lt"), compareBuiltin(value.Less))
	d(value.String("gt"), compareBuiltin(func(a, b *value.Value) bool { return value.Less(b, a) }))
	d(value.String("le"), compareBuiltin(func(a, b *value.Value) bool { return !value.Less(b, a) }))
	d(value.String("ge"), compareBuiltin(func(a, b *value.Value) bool { return !value.Less(a, b) }))
	d(value.String("neq"), compareBuiltin(func(a, b *value.Value) bool { return !value.Equal(a, b) }))

	return t
}

// compareBuiltin wires a comparison built on value.Equal/value.Less.
// For two Numbers or two Strings math.lt(a,b) agrees with the
// interpreter's "<"; for values of different types "<" is a Runtime
// Error, while these order them by value.Less's tag rank.
func compareBuiltin(cmp func(a, b *value.Value) bool) *value.Value {
	return value.NewBuiltin("cmp", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 2 {
			return value.Error("Runtime Error", "expected two arguments")
		}
		return value.Bool(cmp(args[0], args[1]))
	})
}
