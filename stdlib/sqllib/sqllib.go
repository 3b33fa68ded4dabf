// Package sqllib implements the `sql` global table: sql.init/
// sql.execute over a single process-wide connection, grounded on
// original_source/src/teeny/glob.py's Sqlite table (there
// sqlite3.connect backs the same shared-handle policy). The driver is
// modernc.org/sqlite, a pure-Go implementation avoiding cgo.
package sqllib

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/IANYEYZ/teeny/runtime/value"
)

// conn is the single process-wide connection spec.md §5's
// shared-resource policy requires: opened by sql.init (a later
// sql.init replaces it), reused by sql.execute until the process exits.
var (
	mu   sync.Mutex
	conn *sql.DB
)

// New builds the sql table. When pathOverride is non-empty, it
// replaces whatever path a script passes to sql.init(path) — the
// Config.SQLitePath host override spec.md §6 describes.
func New(pathOverride string) *value.Value {
	t := value.NewTable()
	d := t.Table.Define
	d(value.String("init"), value.NewBuiltin("init", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 || args[0].Tag != value.TagString {
			return value.Error("Runtime Error", "sql.init requires a path")
		}
		path := args[0].Str
		if pathOverride != "" {
			path = pathOverride
		}
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return value.Error("SQLError", err.Error())
		}
		mu.Lock()
		conn = db
		mu.Unlock()
		return value.Nil()
	}))
	d(value.String("execute"), value.NewBuiltin("execute", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 || args[0].Tag != value.TagString {
			return value.Error("Runtime Error", "sql.execute requires a query")
		}
		mu.Lock()
		db := conn
		mu.Unlock()
		if db == nil {
			return value.Error("SQLError", "sql.init must be called before sql.execute")
		}
		return execute(db, args[0].Str)
	}))
	return t
}

func execute(db *sql.DB, query string) *value.Value {
	rows, err := db.Query(query)
	if err != nil {
		if _, execErr := db.Exec(query); execErr != nil {
			return value.Error("SQLError", execErr.Error())
		}
		return value.String("")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return value.Error("SQLError", err.Error())
	}
	var lines []string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return value.Error("SQLError", err.Error())
		}
		parts := make([]string, len(cols))
		for i, v := range vals {
			parts[i] = fmt.Sprintf("%v", v)
		}
		lines = append(lines, "("+strings.Join(parts, ", ")+")")
	}
	if err := rows.Err(); err != nil {
		return value.Error("SQLError", err.Error())
	}
	return value.String(strings.Join(lines, "\n"))
}
