package value

import "github.com/IANYEYZ/teeny/internal/suggest"

// cell is the single mutable storage location behind one binding. Env
// frames map names to cells rather than values directly so Snapshot
// can share a binding's storage with whoever captured it while still
// letting the two sides diverge on which bindings exist going forward.
type cell struct {
	v *Value
}

// Env is one frame of Teeny's lexical scope chain: a flat name→cell
// map plus a pointer to the enclosing frame.
type Env struct {
	vars  map[string]*cell
	outer *Env
}

func NewEnv(outer *Env) *Env {
	return &Env{vars: make(map[string]*cell), outer: outer}
}

func (e *Env) find(name string) *cell {
	for cur := e; cur != nil; cur = cur.outer {
		if c, ok := cur.vars[name]; ok {
			return c
		}
	}
	return nil
}

// Read walks outward looking for name; missing names yield a Runtime
// Error carrying a "did you mean" suggestion when one of the visible
// names is a close match.
func (e *Env) Read(name string) *Value {
	if c := e.find(name); c != nil {
		return c.v
	}
	msg := "read from non-existing variable"
	if hint := suggest.Closest(name, e.visibleNames()); hint != "" {
		msg = msg + " (did you mean \"" + hint + "\"?)"
	}
	return Error("Runtime Error", msg+": "+name)
}

// Write updates the innermost frame defining name in place, mutating
// the shared cell rather than replacing a map entry; undefined names
// yield a Runtime Error, per spec.md §4.6.
func (e *Env) Write(name string, v *Value) *Value {
	if c := e.find(name); c != nil {
		c.v = v
		return v
	}
	return Error("Runtime Error", "assignment to undefined variable: "+name)
}

// Define always creates a fresh cell in the current frame, shadowing
// any binding of the same name visible from an outer frame.
func (e *Env) Define(name string, v *Value) {
	e.vars[name] = &cell{v: v}
}

// Has reports whether name is visible anywhere on the chain.
func (e *Env) Has(name string) bool {
	return e.find(name) != nil
}

// Names returns every name visible from e, for the REPL's :env
// directive and for suggest.Closest's "did you mean" candidate list.
func (e *Env) Names() []string {
	return e.visibleNames()
}

func (e *Env) visibleNames() []string {
	var out []string
	seen := make(map[string]bool)
	for cur := e; cur != nil; cur = cur.outer {
		for name := range cur.vars {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// Snapshot copies each frame's name→cell map into a new map, but the
// cell pointers inside it are the SAME cells as the live chain's. That
// gives lexical closures both of their defining properties:
//
//   - a mutation to a binding that existed at capture time (Write
//     mutates cell.v in place) is visible on both sides, since both
//     sides hold the same *cell — this is what makes
//     "a := 1; f := () => a = a + 1; f(); a" observe a == 2.
//   - a new binding introduced in the original frame after capture
//     (Define installs a new cell under that name) is invisible to
//     the snapshot, since the snapshot's copy of the map never gets
//     that entry.
//
// Dynamic (@) closures skip Snapshot and keep the live *Env, so they
// pick up both kinds of change instead.
func (e *Env) Snapshot() *Env {
	if e == nil {
		return nil
	}
	vars := make(map[string]*cell, len(e.vars))
	for k, c := range e.vars {
		vars[k] = c
	}
	return &Env{vars: vars, outer: e.outer.Snapshot()}
}
