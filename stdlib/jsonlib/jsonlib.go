// Package jsonlib implements the `json` global table (encode/decode,
// plus the stringnify/parse aliases original_source/src/teeny/
// glob.py defines) on top of encoding/json, converting between Go's
// generic any and Teeny's value.Value. No repo in the retrieved pack
// offers a lighter dynamic-JSON codec for a contract this thin, so
// encoding/json is the documented stdlib exception (see DESIGN.md).
package jsonlib

import (
	"encoding/json"

	"github.com/IANYEYZ/teeny/runtime/value"
)

// New builds the json table.
func New() *value.Value {
	t := value.NewTable()
	d := t.Table.Define

	encodeFn := value.NewBuiltin("encode", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 {
			return value.Error("JsonError", "encode requires a value")
		}
		return Encode(args[0])
	})
	decodeFn := value.NewBuiltin("decode", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 || args[0].Tag != value.TagString {
			return value.Error("JsonError", "decode requires a string")
		}
		return Decode(args[0].Str)
	})

	d(value.String("encode"), encodeFn)
	d(value.String("stringnify"), encodeFn)
	d(value.String("decode"), decodeFn)
	d(value.String("parse"), decodeFn)
	return t
}

// Encode renders v as a JSON string.
func Encode(v *value.Value) *value.Value {
	obj, err := ToAny(v)
	if err != nil {
		return value.Error("JsonError", err.Error())
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return value.Error("JsonError", err.Error())
	}
	return value.String(string(out))
}

// Decode parses a JSON string into a Teeny value.
func Decode(s string) *value.Value {
	var obj any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return value.Error("JsonError", err.Error())
	}
	return FromAny(obj)
}

// ToAny converts a Teeny value into a plain Go value suitable for
// json.Marshal (or for use as an HTTP request body/params), mirroring
// glob.py's makeObject.
func ToAny(v *value.Value) (any, error) {
	switch v.Tag {
	case value.TagNil:
		return nil, nil
	case value.TagNumber:
		return v.Num, nil
	case value.TagString, value.TagRegex:
		return v.Str, nil
	case value.TagTable:
		return tableToAny(v)
	case value.TagError, value.TagValError:
		return map[string]any{"type": v.ErrType, "value": v.ErrMsg}, nil
	default:
		return value.ToString(v), nil
	}
}

func tableToAny(v *value.Value) (any, error) {
	dense := true
	for i, k := range v.Table.Keys() {
		if k.Tag != value.TagNumber || k.Num != float64(i) {
			dense = false
			break
		}
	}
	if dense {
		out := make([]any, 0, v.Table.Len())
		for _, val := range v.Table.Values() {
			item, err := ToAny(val)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	}
	out := make(map[string]any, v.Table.Len())
	for _, k := range v.Table.Keys() {
		val, _ := v.Table.Get(k)
		item, err := ToAny(val)
		if err != nil {
			return nil, err
		}
		out[value.ToString(k)] = item
	}
	return out, nil
}

// FromAny converts a decoded JSON value (the any produced by
// json.Unmarshal into an interface{}) into a Teeny value, mirroring
// glob.py's makeTable: JSON arrays become dense integer-keyed Tables,
// objects become string-keyed Tables.
func FromAny(obj any) *value.Value {
	switch x := obj.(type) {
	case nil:
		return value.Nil()
	case bool:
		return value.Bool(x)
	case float64:
		return value.Number(x)
	case string:
		return value.String(x)
	case []any:
		out := value.NewTable()
		for _, item := range x {
			out.Table.Append(FromAny(item))
		}
		return out
	case map[string]any:
		out := value.NewTable()
		for k, item := range x {
			out.Table.Define(value.String(k), FromAny(item))
		}
		return out
	default:
		return value.Nil()
	}
}
