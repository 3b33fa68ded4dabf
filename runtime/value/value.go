// Package value implements Teeny's tagged-variant runtime value: a
// single flat struct carrying a Tag plus the payload fields relevant
// to that tag, mirroring the flat design core/ast uses for AST nodes.
// Operators and builtins dispatch on Tag pairs rather than through
// subtype polymorphism.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Tag identifies which payload fields of a Value are meaningful.
type Tag int

const (
	TagNil Tag = iota
	TagNumber
	TagString
	TagRegex
	TagTable
	TagClosure
	TagBuiltin
	TagError
	TagValError
	TagUnderscore
	TagBubble
)

func (t Tag) String() string {
	switch t {
	case TagNil:
		return "Nil"
	case TagNumber:
		return "Number"
	case TagString:
		return "String"
	case TagRegex:
		return "Regex"
	case TagTable:
		return "Table"
	case TagClosure:
		return "Closure"
	case TagBuiltin:
		return "BuiltinClosure"
	case TagError:
		return "Error"
	case TagValError:
		return "ValError"
	case TagUnderscore:
		return "Underscore"
	case TagBubble:
		return "Bubble"
	default:
		return "?"
	}
}

// BubbleKind identifies the non-local control-flow variant carried by
// a TagBubble value.
type BubbleKind int

const (
	BubbleReturn BubbleKind = iota
	BubbleBreak
	BubbleContinue
)

// Value is Teeny's single runtime value representation. Only the
// fields relevant to Tag are populated; others are zero.
type Value struct {
	Tag Tag

	Num float64 // TagNumber
	Str string  // TagString / TagRegex payload

	ErrType string // TagError / TagValError
	ErrMsg  string // TagError / TagValError

	Table   *Table          // TagTable
	Closure *Closure        // TagClosure
	Builtin *BuiltinClosure // TagBuiltin

	BubbleKind BubbleKind // TagBubble
	BubbleVal  *Value     // TagBubble

	Meta map[string]*Value // per-instance method table (Table, String)
	ID   string            // stable identity (Table, Closure)
}

// Call is injected by runtime/interpreter at startup so value-level
// metatable methods (map/filter/sort predicates, etc.) can invoke
// closures without this package importing the interpreter, which
// would create an import cycle.
var Call func(fn *Value, args []*Value) *Value

var (
	nilSingleton        = &Value{Tag: TagNil}
	underscoreSingleton = &Value{Tag: TagUnderscore}
)

func Nil() *Value        { return nilSingleton }
func Underscore() *Value { return underscoreSingleton }

func Number(f float64) *Value { return &Value{Tag: TagNumber, Num: f} }

func Bool(b bool) *Value {
	if b {
		return Number(1)
	}
	return Number(0)
}

func String(s string) *Value {
	v := &Value{Tag: TagString, Str: s}
	v.Meta = stringMetatable(v)
	return v
}

func Regex(pattern string) *Value { return &Value{Tag: TagRegex, Str: pattern} }

func Error(typ, msg string) *Value {
	return &Value{Tag: TagError, ErrType: typ, ErrMsg: msg}
}

func ValError(typ, msg string) *Value {
	return &Value{Tag: TagValError, ErrType: typ, ErrMsg: msg}
}

func Bubble(kind BubbleKind, val *Value) *Value {
	if val == nil {
		val = Nil()
	}
	return &Value{Tag: TagBubble, BubbleKind: kind, BubbleVal: val}
}

func NewBuiltin(name string, hasEnv bool, fn BuiltinFunc) *Value {
	return &Value{Tag: TagBuiltin, Builtin: &BuiltinClosure{Name: name, HasEnv: hasEnv, Fn: fn}}
}

func newID() string { return uuid.NewString() }

// IsError reports whether v is a propagating Error (not a ValError).
func (v *Value) IsError() bool { return v != nil && v.Tag == TagError }

// IsBubble reports whether v is a non-local control-flow sentinel.
func (v *Value) IsBubble() bool { return v != nil && v.Tag == TagBubble }

// Short-circuits on the interpreter's calling convention: Error or
// Bubble must be returned unchanged by the caller.
func (v *Value) Propagates() bool { return v.IsError() || v.IsBubble() }

// Truthy implements spec's truthiness table: Nil, Number(0), empty
// String, empty Table are falsy; everything else (including all
// closures) is truthy.
func (v *Value) Truthy() bool {
	switch v.Tag {
	case TagNil:
		return false
	case TagNumber:
		return v.Num != 0
	case TagString:
		return v.Str != ""
	case TagTable:
		return v.Table.Len() != 0
	default:
		return true
	}
}

// Equal implements structural equality for Number/String/Table/Error
// and identity equality for Closure, per spec.md §3's "closure
// identity is the single exception to structural equality".
func Equal(a, b *Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagNil, TagUnderscore:
		return true
	case TagNumber:
		return a.Num == b.Num
	case TagString, TagRegex:
		return a.Str == b.Str
	case TagError, TagValError:
		return a.ErrType == b.ErrType && a.ErrMsg == b.ErrMsg
	case TagTable:
		return tableEqual(a.Table, b.Table)
	case TagClosure:
		return a.ID == b.ID
	case TagBuiltin:
		return a.Builtin == b.Builtin
	default:
		return a == b
	}
}

func tableEqual(a, b *Table) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, k := range a.order {
		entry := a.entries[k]
		bv, ok := b.Get(entry.Key)
		if !ok || !Equal(entry.Val, bv) {
			return false
		}
	}
	return true
}

// ToString renders v the way Teeny's print/toString does.
func ToString(v *Value) string {
	switch v.Tag {
	case TagNil:
		return "nil"
	case TagNumber:
		return formatNumber(v.Num)
	case TagString:
		return v.Str
	case TagRegex:
		return "`" + v.Str + "`"
	case TagTable:
		return tableToString(v.Table)
	case TagClosure:
		return fmt.Sprintf("Closure(%s)", v.ID)
	case TagBuiltin:
		return fmt.Sprintf("BuiltinClosure(%s)", v.Builtin.Name)
	case TagError:
		return fmt.Sprintf("Error(%s, %s)", v.ErrType, v.ErrMsg)
	case TagValError:
		return fmt.Sprintf("ValError(%s, %s)", v.ErrType, v.ErrMsg)
	case TagUnderscore:
		return "_"
	case TagBubble:
		return ToString(v.BubbleVal)
	default:
		return "?"
	}
}

// ToNumber implements the `number(v)` builtin: Numbers pass through,
// Strings parse as floats (or a Runtime Error on failure), anything
// else is a Runtime Error.
func ToNumber(v *Value) *Value {
	switch v.Tag {
	case TagNumber:
		return v
	case TagString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return Error("Runtime Error", "convert non-Number to Number")
		}
		return Number(f)
	default:
		return Error("Runtime Error", "convert non-Number to Number")
	}
}

// formatNumber prints integers without a decimal point and otherwise
// uses the shortest round-trip representation, resolving spec.md §9's
// open question on numeric printing.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
