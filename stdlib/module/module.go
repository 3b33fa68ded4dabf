// Package module implements Teeny's module system: import/mix/include
// and the process-wide path→value cache spec.md §5 requires, grounded
// on original_source/src/teeny/glob.py's Import/Mix and
// teeny.runner.run. Running a module's source is injected via a
// Runner callback rather than imported directly, since doing the
// actual lex/parse/interpret work requires re-seeding a full global
// environment (including this very table) — importing stdlib here
// would cycle back into this package.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/IANYEYZ/teeny/runtime/value"
)

// Runner evaluates the Teeny source at path in a fresh global
// environment and returns the value bound to "export" in that env (or
// a propagating Error on failure).
type Runner func(path string) *value.Value

// Cache is the process-wide absolute-path→value cache spec.md §5
// describes: "re-imports return the same value". An optional
// fsnotify watch invalidates an entry when its backing file changes,
// so the REPL's :reload can pick up edited modules without a full
// process restart.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*value.Value
	watcher *fsnotify.Watcher
}

// NewCache builds an empty cache. No fsnotify watcher exists until the
// first Watch call, which importModule makes after every successful
// import, so a run that imports nothing never creates one.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*value.Value)}
}

func (c *Cache) get(path string) (*value.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[path]
	return v, ok
}

func (c *Cache) set(path string, v *value.Value) {
	c.mu.Lock()
	c.entries[path] = v
	c.mu.Unlock()
}

func (c *Cache) invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// InvalidateAll drops every cached import, so the next "import" of a
// given name re-reads and re-runs the file from disk. Backs the REPL's
// :reload directive.
func (c *Cache) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]*value.Value)
	return n
}

// Watch arms an fsnotify watch on path so a later write invalidates
// its cache entry. Safe to call more than once for the same path.
func (c *Cache) Watch(path string) error {
	c.mu.Lock()
	if c.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			c.mu.Unlock()
			return err
		}
		c.watcher = w
		go c.watchLoop(w)
	}
	w := c.watcher
	c.mu.Unlock()
	return w.Add(path)
}

func (c *Cache) watchLoop(w *fsnotify.Watcher) {
	for event := range w.Events {
		if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
			c.invalidate(event.Name)
		}
	}
}

// Close releases the fsnotify watcher, if one was armed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == nil {
		return nil
	}
	return c.watcher.Close()
}

// Resolver locates and runs named modules against SourcePath/
// GlobalPackagePath, per spec.md §5's "Module resolution": "./name",
// "./name/index.ty", "<global>/name", "<global>/name/index.ty".
type Resolver struct {
	SourcePath        string
	GlobalPackagePath string
	Cache             *Cache
	Run               Runner
}

func (r *Resolver) resolve(name string) (string, bool) {
	candidates := []string{
		filepath.Join(r.SourcePath, name),
		filepath.Join(r.SourcePath, name, "index.ty"),
		filepath.Join(r.GlobalPackagePath, name),
		filepath.Join(r.GlobalPackagePath, name, "index.ty"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

func (r *Resolver) importModule(name string) *value.Value {
	path, ok := r.resolve(name)
	if !ok {
		return value.Error("Import Error", fmt.Sprintf("module %q not found", name))
	}
	if v, ok := r.Cache.get(path); ok {
		return v
	}
	v := r.Run(path)
	if v.Propagates() {
		return v
	}
	r.Cache.set(path, v)
	// Best-effort: arm an fsnotify watch so a REPL session's cache
	// self-invalidates on disk edits even before :reload is typed.
	// Watch failures (e.g. no inotify support) are not fatal to import.
	_ = r.Cache.Watch(path)
	return v
}

// mix destructures a table's string keys into env, per spec.md §5
// "mix(table, env) — destructure table keys into caller env".
func mix(table *value.Value, env *value.Env) *value.Value {
	if table.Tag != value.TagTable {
		return value.Error("Runtime Error", "mix requires a table")
	}
	for _, k := range table.Table.Keys() {
		if k.Tag != value.TagString {
			continue
		}
		v, _ := table.Table.Get(k)
		env.Define(k.Str, v)
	}
	return value.Nil()
}

// New builds the module-related globals: import, importPython,
// importRaw, mix, include. Only import/mix/include are functional;
// importPython/importRaw are retained for parity with spec.md §6 but
// return Runtime Errors, since embedding a Python interpreter or
// importing arbitrary raw bytes as a value has no grounded Go
// dependency in the pack (see DESIGN.md).
func New(r *Resolver) map[string]*value.Value {
	out := make(map[string]*value.Value)
	out["import"] = value.NewBuiltin("import", false, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 || args[0].Tag != value.TagString {
			return value.Error("Runtime Error", "import requires a module name")
		}
		return r.importModule(args[0].Str)
	})
	out["importPython"] = value.NewBuiltin("importPython", false, func(args []*value.Value, env *value.Env) *value.Value {
		return value.Error("Runtime Error", "unsupported import kind")
	})
	out["importRaw"] = value.NewBuiltin("importRaw", false, func(args []*value.Value, env *value.Env) *value.Value {
		return value.Error("Runtime Error", "unsupported import kind")
	})
	out["mix"] = value.NewBuiltin("mix", true, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 {
			return value.Error("Runtime Error", "mix requires a table")
		}
		return mix(args[0], env)
	})
	out["include"] = value.NewBuiltin("include", true, func(args []*value.Value, env *value.Env) *value.Value {
		if len(args) == 0 || args[0].Tag != value.TagString {
			return value.Error("Runtime Error", "include requires a module name")
		}
		mod := r.importModule(args[0].Str)
		if mod.Propagates() {
			return mod
		}
		return mix(mod, env)
	})
	return out
}
