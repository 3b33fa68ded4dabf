package value

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// tableEntry pairs a key Value with its bound Value, keeping the
// original key around so iteration can hand back real Value keys
// rather than their canonical hash strings.
type tableEntry struct {
	Key *Value
	Val *Value
}

// Table is Teeny's ordered associative/array hybrid: canonical key
// strings index entries, insertion order is tracked separately so
// keys/values/pairs/toString all iterate in the order spec.md §3
// requires.
type Table struct {
	order   []string
	entries map[string]*tableEntry
	size    int // next integer append index
	meta    map[string]*Value
}

func NewTable() *Value {
	t := &Table{entries: make(map[string]*tableEntry)}
	v := &Value{Tag: TagTable, Table: t, ID: newID()}
	t.meta = tableMetatable(v)
	v.Meta = t.meta
	return v
}

// keyString produces a canonical, content-based hash for a Value used
// as a table key; tables/closures hash by identity.
func keyString(k *Value) string {
	switch k.Tag {
	case TagNil:
		return "nil"
	case TagNumber:
		return "n:" + formatNumber(k.Num)
	case TagString:
		return "s:" + k.Str
	case TagRegex:
		return "r:" + k.Str
	case TagTable:
		return "t:" + k.ID
	case TagClosure:
		return "c:" + k.ID
	case TagBuiltin:
		return fmt.Sprintf("b:%p", k.Builtin)
	default:
		return fmt.Sprintf("x:%p", k)
	}
}

func (t *Table) Len() int { return len(t.order) }

func (t *Table) Get(key *Value) (*Value, bool) {
	e, ok := t.entries[keyString(key)]
	if !ok {
		return nil, false
	}
	return e.Val, true
}

// Define creates or overwrites key=val, tracking insertion order and
// bumping the append cursor when key is the next sequential integer.
func (t *Table) Define(key, val *Value) {
	ks := keyString(key)
	if _, exists := t.entries[ks]; !exists {
		t.order = append(t.order, ks)
	}
	t.entries[ks] = &tableEntry{Key: key, Val: val}
	if key.Tag == TagNumber && key.Num == float64(t.size) && key.Num == math.Trunc(key.Num) {
		t.size = int(key.Num) + 1
	}
}

// Set requires key to already exist; returns false otherwise so the
// caller can surface a Runtime Error.
func (t *Table) Set(key, val *Value) bool {
	ks := keyString(key)
	if _, exists := t.entries[ks]; !exists {
		return false
	}
	t.entries[ks].Val = val
	return true
}

// Append inserts at key Number(size) then increments size.
func (t *Table) Append(val *Value) {
	t.Define(Number(float64(t.size)), val)
}

func (t *Table) Has(key *Value) bool {
	_, ok := t.entries[keyString(key)]
	return ok
}

func (t *Table) Keys() []*Value {
	out := make([]*Value, 0, len(t.order))
	for _, ks := range t.order {
		out = append(out, t.entries[ks].Key)
	}
	return out
}

func (t *Table) Values() []*Value {
	out := make([]*Value, 0, len(t.order))
	for _, ks := range t.order {
		out = append(out, t.entries[ks].Val)
	}
	return out
}

func tableToString(t *Table) string {
	// Render as an array literal when every key is the dense integer
	// sequence 0..n-1 (the common case), else as "[k: v, ...]".
	dense := true
	for i, ks := range t.order {
		e := t.entries[ks]
		if e.Key.Tag != TagNumber || e.Key.Num != float64(i) {
			dense = false
			break
		}
	}
	parts := make([]string, 0, len(t.order))
	if dense {
		for _, ks := range t.order {
			parts = append(parts, ToString(t.entries[ks].Val))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	for _, ks := range t.order {
		e := t.entries[ks]
		parts = append(parts, fmt.Sprintf("%s: %s", ToString(e.Key), ToString(e.Val)))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Add implements "+" on tables: array part first (appended), then
// merged associative parts, per spec.md §3/§8.
func Add(a, b *Value) *Value {
	out := NewTable()
	for _, ks := range a.Table.order {
		e := a.Table.entries[ks]
		if e.Key.Tag == TagNumber {
			out.Table.Append(e.Val)
		}
	}
	for _, ks := range b.Table.order {
		e := b.Table.entries[ks]
		if e.Key.Tag == TagNumber {
			out.Table.Append(e.Val)
		}
	}
	for _, src := range []*Table{a.Table, b.Table} {
		for _, ks := range src.order {
			if e := src.entries[ks]; e.Key.Tag != TagNumber {
				out.Table.Define(e.Key, e.Val)
			}
		}
	}
	return out
}

// --- metatable: registered once at construction, never rebound -----

func tableMetatable(self *Value) map[string]*Value {
	m := make(map[string]*Value)
	m["push"] = NewBuiltin("push", false, func(args []*Value, env *Env) *Value {
		for _, a := range args {
			self.Table.Append(a)
		}
		return self
	})
	m["keys"] = NewBuiltin("keys", false, func(args []*Value, env *Env) *Value {
		out := NewTable()
		for _, k := range self.Table.Keys() {
			out.Table.Append(k)
		}
		return out
	})
	m["values"] = NewBuiltin("values", false, func(args []*Value, env *Env) *Value {
		out := NewTable()
		for _, v := range self.Table.Values() {
			out.Table.Append(v)
		}
		return out
	})
	m["pairs"] = NewBuiltin("pairs", false, func(args []*Value, env *Env) *Value {
		out := NewTable()
		for _, ks := range self.Table.order {
			e := self.Table.entries[ks]
			pair := NewTable()
			pair.Table.Append(e.Key)
			pair.Table.Append(e.Val)
			out.Table.Append(pair)
		}
		return out
	})
	m["has"] = NewBuiltin("has", false, func(args []*Value, env *Env) *Value {
		if len(args) == 0 {
			return Bool(false)
		}
		return Bool(self.Table.Has(args[0]))
	})
	m["map"] = NewBuiltin("map", false, func(args []*Value, env *Env) *Value {
		out := NewTable()
		if len(args) == 0 {
			return out
		}
		fn := args[0]
		for _, v := range self.Table.Values() {
			out.Table.Append(Call(fn, []*Value{v}))
		}
		return out
	})
	m["filter"] = NewBuiltin("filter", false, func(args []*Value, env *Env) *Value {
		out := NewTable()
		if len(args) == 0 {
			return out
		}
		fn := args[0]
		for _, v := range self.Table.Values() {
			if Call(fn, []*Value{v}).Truthy() {
				out.Table.Append(v)
			}
		}
		return out
	})
	m["sum"] = NewBuiltin("sum", false, func(args []*Value, env *Env) *Value {
		total := 0.0
		for _, v := range self.Table.Values() {
			if v.Tag == TagNumber {
				total += v.Num
			}
		}
		return Number(total)
	})
	m["mean"] = NewBuiltin("mean", false, func(args []*Value, env *Env) *Value {
		vals := numericValues(self.Table)
		if len(vals) == 0 {
			return Number(0)
		}
		return Number(mean(vals))
	})
	m["median"] = NewBuiltin("median", false, func(args []*Value, env *Env) *Value {
		vals := numericValues(self.Table)
		return Number(median(vals))
	})
	m["stdev"] = NewBuiltin("stdev", false, func(args []*Value, env *Env) *Value {
		vals := numericValues(self.Table)
		return Number(stdev(vals))
	})
	m["describe"] = NewBuiltin("describe", false, func(args []*Value, env *Env) *Value {
		vals := numericValues(self.Table)
		out := NewTable()
		out.Table.Define(String("count"), Number(float64(len(vals))))
		out.Table.Define(String("mean"), Number(mean(vals)))
		out.Table.Define(String("median"), Number(median(vals)))
		out.Table.Define(String("stdev"), Number(stdev(vals)))
		if len(vals) > 0 {
			lo, hi := vals[0], vals[0]
			for _, v := range vals {
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			out.Table.Define(String("min"), Number(lo))
			out.Table.Define(String("max"), Number(hi))
		}
		return out
	})
	m["sort"] = NewBuiltin("sort", false, func(args []*Value, env *Env) *Value {
		vals := append([]*Value(nil), self.Table.Values()...)
		sort.SliceStable(vals, func(i, j int) bool { return Less(vals[i], vals[j]) })
		out := NewTable()
		for _, v := range vals {
			out.Table.Append(v)
		}
		return out
	})
	m["_iter_"] = NewBuiltin("_iter_", false, func(args []*Value, env *Env) *Value {
		keys := self.Table.Keys()
		i := 0
		return NewBuiltin("_iter_next_", false, func(args []*Value, env *Env) *Value {
			if i >= len(keys) {
				return Nil()
			}
			k := keys[i]
			i++
			return k
		})
	})
	return m
}

func numericValues(t *Table) []float64 {
	var out []float64
	for _, v := range t.Values() {
		if v.Tag == TagNumber {
			out = append(out, v.Num)
		}
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total / float64(len(vals))
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func stdev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sumSq float64
	for _, v := range vals {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)-1))
}

// tagRank gives cross-tag sort.md §9's pinned total order:
// Nil < Number < String < Table < Closure < everything else.
func tagRank(t Tag) int {
	switch t {
	case TagNil:
		return 0
	case TagNumber:
		return 1
	case TagString:
		return 2
	case TagTable:
		return 3
	case TagClosure:
		return 4
	default:
		return 5
	}
}

// Less implements the natural order "sort" uses: same-tag Numbers and
// Strings by their payload (other same-tag pairs are unordered),
// cross-tag by tagRank, resolving spec.md §9's open question on
// cross-tag ordering.
func Less(a, b *Value) bool {
	if a.Tag != b.Tag {
		return tagRank(a.Tag) < tagRank(b.Tag)
	}
	switch a.Tag {
	case TagNumber:
		return a.Num < b.Num
	case TagString:
		return a.Str < b.Str
	default:
		return false
	}
}
