// Package fslib implements the `fs` global table: text/JSON/line file
// I/O and directory queries resolved relative to stdlib.Config's
// SourcePath, grounded on original_source/src/teeny/glob.py's Fs
// table. Every OS failure becomes an Error("IOError", ...) instead of
// propagating a Go panic.
package fslib

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/IANYEYZ/teeny/runtime/value"
	"github.com/IANYEYZ/teeny/stdlib/jsonlib"
)

// New builds the fs table. sourcePath is the base directory every
// path argument resolves against.
func New(sourcePath string) *value.Value {
	t := value.NewTable()
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(sourcePath, p)
	}
	d := t.Table.Define

	d(value.String("readText"), value.NewBuiltin("readText", false, func(args []*value.Value, env *value.Env) *value.Value {
		path, ok := stringArg(args, 0)
		if !ok {
			return value.Error("Runtime Error", "readText requires a path")
		}
		data, err := os.ReadFile(resolve(path))
		if err != nil {
			return ioError(err)
		}
		return value.String(string(data))
	}))
	d(value.String("writeText"), value.NewBuiltin("writeText", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 2 {
			return value.Error("Runtime Error", "writeText requires (path, content)")
		}
		content := strings.ReplaceAll(value.ToString(args[1]), "\\n", "\n")
		if err := writeFile(resolve(args[0].Str), content, appendFlag(args, 2)); err != nil {
			return ioError(err)
		}
		return args[1]
	}))
	d(value.String("readJson"), value.NewBuiltin("readJson", false, func(args []*value.Value, env *value.Env) *value.Value {
		path, ok := stringArg(args, 0)
		if !ok {
			return value.Error("Runtime Error", "readJson requires a path")
		}
		data, err := os.ReadFile(resolve(path))
		if err != nil {
			return ioError(err)
		}
		return jsonlib.Decode(string(data))
	}))
	d(value.String("writeJson"), value.NewBuiltin("writeJson", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 2 {
			return value.Error("Runtime Error", "writeJson requires (path, content)")
		}
		encoded := jsonlib.Encode(args[1])
		if encoded.IsError() {
			return encoded
		}
		if err := writeFile(resolve(args[0].Str), encoded.Str, appendFlag(args, 2)); err != nil {
			return ioError(err)
		}
		return args[1]
	}))
	d(value.String("readLines"), value.NewBuiltin("readLines", false, func(args []*value.Value, env *value.Env) *value.Value {
		path, ok := stringArg(args, 0)
		if !ok {
			return value.Error("Runtime Error", "readLines requires a path")
		}
		data, err := os.ReadFile(resolve(path))
		if err != nil {
			return ioError(err)
		}
		out := value.NewTable()
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			out.Table.Append(value.String(line))
		}
		return out
	}))
	d(value.String("writeLines"), value.NewBuiltin("writeLines", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 2 || args[1].Tag != value.TagTable {
			return value.Error("Runtime Error", "writeLines requires (path, table)")
		}
		var lines []string
		for _, v := range args[1].Table.Values() {
			lines = append(lines, value.ToString(v))
		}
		if err := writeFile(resolve(args[0].Str), strings.Join(lines, "\n"), appendFlag(args, 2)); err != nil {
			return ioError(err)
		}
		return args[1]
	}))
	d(value.String("exists"), value.NewBuiltin("exists", false, func(args []*value.Value, env *value.Env) *value.Value {
		path, ok := stringArg(args, 0)
		if !ok {
			return value.Error("Runtime Error", "exists requires a path")
		}
		_, err := os.Stat(resolve(path))
		return value.Bool(err == nil)
	}))
	d(value.String("listDir"), value.NewBuiltin("listDir", false, func(args []*value.Value, env *value.Env) *value.Value {
		path, ok := stringArg(args, 0)
		if !ok {
			return value.Error("Runtime Error", "listDir requires a path")
		}
		entries, err := os.ReadDir(resolve(path))
		if err != nil {
			return ioError(err)
		}
		out := value.NewTable()
		for _, e := range entries {
			out.Table.Append(value.String(e.Name()))
		}
		return out
	}))
	d(value.String("isFile"), value.NewBuiltin("isFile", false, func(args []*value.Value, env *value.Env) *value.Value {
		path, ok := stringArg(args, 0)
		if !ok {
			return value.Error("Runtime Error", "isFile requires a path")
		}
		info, err := os.Stat(resolve(path))
		if err != nil {
			return ioError(err)
		}
		return value.Bool(!info.IsDir())
	}))
	d(value.String("isDir"), value.NewBuiltin("isDir", false, func(args []*value.Value, env *value.Env) *value.Value {
		path, ok := stringArg(args, 0)
		if !ok {
			return value.Error("Runtime Error", "isDir requires a path")
		}
		info, err := os.Stat(resolve(path))
		if err != nil {
			return ioError(err)
		}
		return value.Bool(info.IsDir())
	}))
	d(value.String("copy"), value.NewBuiltin("copy", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 2 {
			return value.Error("Runtime Error", "copy requires (src, dst)")
		}
		data, err := os.ReadFile(resolve(args[0].Str))
		if err != nil {
			return ioError(err)
		}
		if err := os.WriteFile(resolve(args[1].Str), data, 0o644); err != nil {
			return ioError(err)
		}
		return value.Nil()
	}))
	d(value.String("move"), value.NewBuiltin("move", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 2 {
			return value.Error("Runtime Error", "move requires (src, dst)")
		}
		if err := os.Rename(resolve(args[0].Str), resolve(args[1].Str)); err != nil {
			return ioError(err)
		}
		return value.Nil()
	}))
	d(value.String("join"), value.NewBuiltin("join", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 || args[0].Tag != value.TagTable {
			return value.Error("Runtime Error", "join requires a table of path segments")
		}
		var parts []string
		for _, v := range args[0].Table.Values() {
			parts = append(parts, value.ToString(v))
		}
		return value.String(filepath.Join(parts...))
	}))
	d(value.String("mkdir"), value.NewBuiltin("mkdir", false, func(args []*value.Value, env *value.Env) *value.Value {
		path, ok := stringArg(args, 0)
		if !ok {
			return value.Error("Runtime Error", "mkdir requires a path")
		}
		if err := os.MkdirAll(resolve(path), 0o755); err != nil {
			return ioError(err)
		}
		return value.Nil()
	}))
	d(value.String("rmdir"), value.NewBuiltin("rmdir", false, func(args []*value.Value, env *value.Env) *value.Value {
		path, ok := stringArg(args, 0)
		if !ok {
			return value.Error("Runtime Error", "rmdir requires a path")
		}
		if err := os.Remove(resolve(path)); err != nil {
			return ioError(err)
		}
		return value.Nil()
	}))
	d(value.String("fileSize"), value.NewBuiltin("fileSize", false, func(args []*value.Value, env *value.Env) *value.Value {
		path, ok := stringArg(args, 0)
		if !ok {
			return value.Error("Runtime Error", "fileSize requires a path")
		}
		info, err := os.Stat(resolve(path))
		if err != nil {
			return ioError(err)
		}
		return value.Number(float64(info.Size()))
	}))
	d(value.String("findFiles"), value.NewBuiltin("findFiles", false, func(args []*value.Value, env *value.Env) *value.Value {
		path, ok := stringArg(args, 0)
		if !ok {
			return value.Error("Runtime Error", "findFiles requires a path")
		}
		entries, err := os.ReadDir(resolve(path))
		if err != nil {
			return ioError(err)
		}
		var check *value.Value
		if len(args) > 1 {
			check = args[1]
		}
		out := value.NewTable()
		for _, e := range entries {
			name := value.String(e.Name())
			if check != nil {
				if !value.Call(check, []*value.Value{name}).Truthy() {
					continue
				}
			}
			out.Table.Append(name)
		}
		return out
	}))

	return t
}

func stringArg(args []*value.Value, i int) (string, bool) {
	if i >= len(args) || args[i].Tag != value.TagString {
		return "", false
	}
	return args[i].Str, true
}

func appendFlag(args []*value.Value, i int) bool {
	return i < len(args) && args[i].Truthy()
}

func writeFile(path, content string, appendMode bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(content)
	return err
}

func ioError(err error) *value.Value {
	return value.Error("IOError", err.Error())
}
