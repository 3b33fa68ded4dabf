package fslib

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IANYEYZ/teeny/runtime/value"
)

func call(t *testing.T, tbl *value.Value, name string, args ...*value.Value) *value.Value {
	t.Helper()
	fn, ok := tbl.Table.Get(value.String(name))
	require.True(t, ok, "fs.%s is not defined", name)
	return fn.Builtin.Fn(args, nil)
}

func TestWriteThenReadText(t *testing.T) {
	dir := t.TempDir()
	fs := New(dir)

	wrote := call(t, fs, "writeText", value.String("hello.txt"), value.String("hi there"))
	require.False(t, wrote.IsError())

	read := call(t, fs, "readText", value.String("hello.txt"))
	require.Equal(t, "hi there", read.Str)
}

func TestWriteTextAppendMode(t *testing.T) {
	dir := t.TempDir()
	fs := New(dir)

	call(t, fs, "writeText", value.String("log.txt"), value.String("a"))
	call(t, fs, "writeText", value.String("log.txt"), value.String("b"), value.Number(1))

	read := call(t, fs, "readText", value.String("log.txt"))
	require.Equal(t, "ab", read.Str)
}

func TestJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs := New(dir)

	payload := value.NewTable()
	payload.Table.Define(value.String("k"), value.Number(42))

	wrote := call(t, fs, "writeJson", value.String("data.json"), payload)
	require.False(t, wrote.IsError())

	read := call(t, fs, "readJson", value.String("data.json"))
	require.False(t, read.IsError())
	v, ok := read.Table.Get(value.String("k"))
	require.True(t, ok)
	require.Equal(t, 42.0, v.Num)
}

func TestReadLinesAndWriteLines(t *testing.T) {
	dir := t.TempDir()
	fs := New(dir)

	lines := value.NewTable()
	lines.Table.Append(value.String("one"))
	lines.Table.Append(value.String("two"))
	call(t, fs, "writeLines", value.String("lines.txt"), lines)

	read := call(t, fs, "readLines", value.String("lines.txt"))
	require.Equal(t, 2, read.Table.Len())
	first, _ := read.Table.Get(value.Number(0))
	require.Equal(t, "one", first.Str)
}

func TestExistsIsFileIsDir(t *testing.T) {
	dir := t.TempDir()
	fs := New(dir)
	call(t, fs, "writeText", value.String("a.txt"), value.String("x"))
	call(t, fs, "mkdir", value.String("sub"))

	require.True(t, call(t, fs, "exists", value.String("a.txt")).Truthy())
	require.False(t, call(t, fs, "exists", value.String("missing.txt")).Truthy())
	require.True(t, call(t, fs, "isFile", value.String("a.txt")).Truthy())
	require.True(t, call(t, fs, "isDir", value.String("sub")).Truthy())
}

func TestListDirAndFindFiles(t *testing.T) {
	dir := t.TempDir()
	fs := New(dir)
	call(t, fs, "writeText", value.String("a.txt"), value.String("x"))
	call(t, fs, "writeText", value.String("b.log"), value.String("x"))

	listed := call(t, fs, "listDir", value.String("."))
	require.Equal(t, 2, listed.Table.Len())

	value.Call = func(fn *value.Value, args []*value.Value) *value.Value {
		return fn.Builtin.Fn(args, nil)
	}
	isTxt := value.NewBuiltin("isTxt", false, func(args []*value.Value, env *value.Env) *value.Value {
		return value.Bool(filepath.Ext(args[0].Str) == ".txt")
	})
	found := call(t, fs, "findFiles", value.String("."), isTxt)
	require.Equal(t, 1, found.Table.Len())
}

func TestCopyMoveAndFileSize(t *testing.T) {
	dir := t.TempDir()
	fs := New(dir)
	call(t, fs, "writeText", value.String("src.txt"), value.String("hello"))
	call(t, fs, "copy", value.String("src.txt"), value.String("dst.txt"))
	require.True(t, call(t, fs, "exists", value.String("dst.txt")).Truthy())

	size := call(t, fs, "fileSize", value.String("dst.txt"))
	require.Equal(t, 5.0, size.Num)

	call(t, fs, "move", value.String("dst.txt"), value.String("moved.txt"))
	require.False(t, call(t, fs, "exists", value.String("dst.txt")).Truthy())
	require.True(t, call(t, fs, "exists", value.String("moved.txt")).Truthy())
}

func TestJoinBuildsPath(t *testing.T) {
	fs := New("")
	parts := value.NewTable()
	parts.Table.Append(value.String("a"))
	parts.Table.Append(value.String("b"))
	parts.Table.Append(value.String("c.txt"))
	joined := call(t, fs, "join", parts)
	require.Equal(t, filepath.Join("a", "b", "c.txt"), joined.Str)
}

func TestReadTextMissingFileIsIOError(t *testing.T) {
	fs := New(t.TempDir())
	v := call(t, fs, "readText", value.String("nope.txt"))
	require.True(t, v.IsError())
	require.Equal(t, "IOError", v.ErrType)
}
