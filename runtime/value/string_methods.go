package value

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// stringMetatable registers the string methods spec.md §3 requires:
// len, slice, find, upper, lower, cap, trim, split, join, format.
// upper/lower/cap use golang.org/x/text/cases for Unicode-aware
// casing instead of ASCII-only strings.ToUpper/ToLower.
func stringMetatable(self *Value) map[string]*Value {
	m := make(map[string]*Value)
	runes := func() []rune { return []rune(self.Str) }

	m["len"] = NewBuiltin("len", false, func(args []*Value, env *Env) *Value {
		return Number(float64(len(runes())))
	})
	// slice(start, count?) takes count runes starting at start (e.g.
	// "abcde".slice(1,3) == "bcd"), not a Python-style exclusive end
	// index; count defaults to "rest of the string".
	m["slice"] = NewBuiltin("slice", false, func(args []*Value, env *Env) *Value {
		rs := runes()
		start, count := 0, len(rs)
		if len(args) > 0 {
			start = clampIndex(int(args[0].Num), len(rs))
		}
		if len(args) > 1 {
			count = int(args[1].Num)
		} else {
			count = len(rs) - start
		}
		end := clampIndex(start+count, len(rs))
		if start > end {
			start = end
		}
		return String(string(rs[start:end]))
	})
	m["find"] = NewBuiltin("find", false, func(args []*Value, env *Env) *Value {
		if len(args) == 0 {
			return Number(-1)
		}
		idx := strings.Index(self.Str, args[0].Str)
		return Number(float64(idx))
	})
	m["upper"] = NewBuiltin("upper", false, func(args []*Value, env *Env) *Value {
		return String(cases.Upper(language.Und).String(self.Str))
	})
	m["lower"] = NewBuiltin("lower", false, func(args []*Value, env *Env) *Value {
		return String(cases.Lower(language.Und).String(self.Str))
	})
	m["cap"] = NewBuiltin("cap", false, func(args []*Value, env *Env) *Value {
		return String(cases.Title(language.Und).String(self.Str))
	})
	m["trim"] = NewBuiltin("trim", false, func(args []*Value, env *Env) *Value {
		return String(strings.TrimSpace(self.Str))
	})
	m["split"] = NewBuiltin("split", false, func(args []*Value, env *Env) *Value {
		sep := " "
		if len(args) > 0 {
			sep = args[0].Str
		}
		out := NewTable()
		var parts []string
		if sep == "" {
			for _, r := range self.Str {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(self.Str, sep)
		}
		for _, p := range parts {
			out.Table.Append(String(p))
		}
		return out
	})
	m["join"] = NewBuiltin("join", false, func(args []*Value, env *Env) *Value {
		if len(args) == 0 || args[0].Tag != TagTable {
			return String(self.Str)
		}
		var parts []string
		for _, v := range args[0].Table.Values() {
			parts = append(parts, ToString(v))
		}
		return String(strings.Join(parts, self.Str))
	})
	m["format"] = NewBuiltin("format", false, func(args []*Value, env *Env) *Value {
		anys := make([]any, len(args))
		for i, a := range args {
			anys[i] = ToString(a)
		}
		return String(fmt.Sprintf(self.Str, anys...))
	})
	return m
}

func clampIndex(i, length int) int {
	if i < 0 {
		i = length + i
	}
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}
