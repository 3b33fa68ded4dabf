package jsonlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IANYEYZ/teeny/runtime/value"
)

func TestEncodeDecodeArrayRoundTrip(t *testing.T) {
	tbl := value.NewTable()
	tbl.Table.Append(value.Number(1))
	tbl.Table.Append(value.Number(2))
	tbl.Table.Append(value.String("three"))

	encoded := Encode(tbl)
	require.False(t, encoded.IsError())

	decoded := Decode(encoded.Str)
	require.False(t, decoded.IsError())
	require.True(t, value.Equal(tbl, decoded))
}

func TestEncodeDecodeObjectRoundTrip(t *testing.T) {
	tbl := value.NewTable()
	tbl.Table.Define(value.String("name"), value.String("ada"))
	tbl.Table.Define(value.String("age"), value.Number(30))

	encoded := Encode(tbl)
	decoded := Decode(encoded.Str)
	require.True(t, value.Equal(tbl, decoded))
}

func TestDecodeInvalidJSONIsError(t *testing.T) {
	v := Decode("not json")
	require.True(t, v.IsError())
	require.Equal(t, "JsonError", v.ErrType)
}

func TestDecodeNestedStructures(t *testing.T) {
	v := Decode(`{"items": [1, 2, {"nested": true}], "count": 3}`)
	require.False(t, v.IsError())
	items, ok := v.Table.Get(value.String("items"))
	require.True(t, ok)
	require.Equal(t, 3, items.Table.Len())
}

func TestToAnyErrorValue(t *testing.T) {
	errv := value.Error("Runtime Error", "boom")
	out, err := ToAny(errv)
	require.NoError(t, err)
	m, ok := out.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Runtime Error", m["type"])
	require.Equal(t, "boom", m["value"])
}

func TestStringnifyAndParseAliases(t *testing.T) {
	m := New()
	stringnify, ok := m.Table.Get(value.String("stringnify"))
	require.True(t, ok)
	encode, ok := m.Table.Get(value.String("encode"))
	require.True(t, ok)
	require.Equal(t, stringnify.Builtin, encode.Builtin)

	parse, ok := m.Table.Get(value.String("parse"))
	require.True(t, ok)
	decode, ok := m.Table.Get(value.String("decode"))
	require.True(t, ok)
	require.Equal(t, parse.Builtin, decode.Builtin)
}
