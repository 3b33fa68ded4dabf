// Package processor is the post-parse AST walk spec.md §4.3 reserves
// for desugaring (e.g. folding "x.a = v" into a compound-assignment
// opcode). The shipped behavior is identity: Process returns its
// input unchanged. The seam is kept as an explicit stage, not deleted,
// so a future rewrite pass has somewhere to live without touching the
// parser or interpreter.
package processor

import "github.com/IANYEYZ/teeny/core/ast"

// Process returns n unchanged. Kept as a named stage rather than
// inlined so the pipeline (lexer -> parser -> processor -> interpreter)
// matches spec.md §2 exactly.
func Process(n *ast.Node) *ast.Node {
	return n
}

// ProcessAll applies Process to a whole parsed program.
func ProcessAll(nodes []*ast.Node) []*ast.Node {
	out := make([]*ast.Node, len(nodes))
	for i, n := range nodes {
		out[i] = Process(n)
	}
	return out
}
