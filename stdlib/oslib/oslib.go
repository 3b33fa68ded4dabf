// Package oslib implements the `os` global table: platform name,
// subprocess execution, and a line-oriented ".env" store, grounded on
// original_source/src/teeny/glob.py's Os table.
package oslib

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/IANYEYZ/teeny/runtime/value"
)

// New builds the os table. sourcePath is where the ".env" file lives.
func New(sourcePath string) *value.Value {
	t := value.NewTable()
	d := t.Table.Define
	envPath := filepath.Join(sourcePath, ".env")

	d(value.String("platform"), value.NewBuiltin("platform", false, func(args []*value.Value, env *value.Env) *value.Value {
		return value.String(runtime.GOOS)
	}))
	run := value.NewBuiltin("run", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 || args[0].Tag != value.TagString {
			return value.Error("OSError", "run requires a command string")
		}
		parts := strings.Fields(args[0].Str)
		if len(parts) == 0 {
			return value.String("")
		}
		cmd := exec.Command(parts[0], parts[1:]...)
		var out bytes.Buffer
		cmd.Stdout = &out
		if err := cmd.Run(); err != nil {
			return value.Error("OSError", err.Error())
		}
		return value.String(out.String())
	})
	d(value.String("run"), run)
	d(value.String("shell"), run)
	d(value.String("getEnv"), value.NewBuiltin("getEnv", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 || args[0].Tag != value.TagString {
			return value.Error("Runtime Error", "getEnv requires a name")
		}
		v, ok := readEnvFile(envPath)[args[0].Str]
		if !ok {
			return value.Nil()
		}
		return value.String(v)
	}))
	d(value.String("setEnv"), value.NewBuiltin("setEnv", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) < 2 || args[0].Tag != value.TagString {
			return value.Error("Runtime Error", "setEnv requires (name, value)")
		}
		entries := readEnvFile(envPath)
		entries[args[0].Str] = value.ToString(args[1])
		if err := writeEnvFile(envPath, entries); err != nil {
			return value.Error("IOError", err.Error())
		}
		return value.Nil()
	}))
	return t
}

func readEnvFile(path string) map[string]string {
	out := make(map[string]string)
	data, err := os.ReadFile(path)
	if err != nil {
		return out
	}
	for _, line := range strings.Split(string(data), "\n") {
		k, v, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		out[strings.TrimSpace(k)] = strings.Trim(strings.TrimSpace(v), "\"")
	}
	return out
}

func writeEnvFile(path string, entries map[string]string) error {
	var b strings.Builder
	for k, v := range entries {
		b.WriteString(k)
		b.WriteString(" = ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
