// Package stdlib seeds an interpreter's global environment with
// Teeny's standard globals: the bare builtins (print, type, table...)
// plus the math/fs/json/http/os/time/sql/benchmark/error/module
// tables, per spec.md §6.
package stdlib

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Config mirrors the teacher's flag-driven engine.Config: the handful
// of host paths and switches that seeding and the library tables
// themselves need, threaded down from cmd/teeny's flags.
type Config struct {
	// SourcePath is the directory fs.* and import resolve relative to.
	SourcePath string
	// GlobalPackagePath is searched by import after SourcePath, for
	// names not found locally. Defaults to $TEENY_HOME/lib or
	// ~/.teeny/lib.
	GlobalPackagePath string
	// SQLitePath overrides the path sql.init opens when non-empty;
	// otherwise the path a script passes to sql.init(path) is used
	// as-is.
	SQLitePath string
	// NoColor disables ANSI color in REPL/CLI output.
	NoColor bool
	// Argv is exposed to scripts as the "argv" global.
	Argv []string
	// Log is handed to the interpreter, which writes Debug records of
	// closure calls to it. Defaults to slog.Default(). The library
	// tables do not log; host-level failures (file I/O, HTTP, SQL)
	// only come back as Teeny Error values.
	Log *slog.Logger
}

// DefaultGlobalPackagePath resolves $TEENY_HOME/lib, falling back to
// ~/.teeny/lib when TEENY_HOME is unset.
func DefaultGlobalPackagePath() string {
	if home := os.Getenv("TEENY_HOME"); home != "" {
		return filepath.Join(home, "lib")
	}
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".teeny", "lib")
	}
	return "lib"
}

func (c *Config) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}
