package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/IANYEYZ/teeny/internal/suggest"
	"github.com/IANYEYZ/teeny/runtime/interpreter"
	"github.com/IANYEYZ/teeny/runtime/lexer"
	"github.com/IANYEYZ/teeny/runtime/parser"
	"github.com/IANYEYZ/teeny/runtime/processor"
	"github.com/IANYEYZ/teeny/runtime/value"
	"github.com/IANYEYZ/teeny/stdlib"
	"github.com/IANYEYZ/teeny/stdlib/module"
)

// historyFile matches the teacher's habit of keeping REPL history
// under the user's home directory rather than the working directory.
func historyFile() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".teeny_history")
	}
	return ".teeny_history"
}

// runREPL drives the interactive shell: accumulate input until
// brackets balance (spec.md §6), then lex/parse/evaluate against a
// persistent global Env shared across lines.
func runREPL(debug, noColor bool) int {
	useColor := ShouldUseColor(noColor)

	log := slog.Default()
	if debug {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	cwd, _ := os.Getwd()
	cfg := stdlib.Config{
		SourcePath:        cwd,
		GlobalPackagePath: globalPackagePath,
		NoColor:           noColor,
		Log:               log,
	}
	cache := module.NewCache()
	it := stdlib.Seed(cfg, cache)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          Colorize("teeny> ", ColorCyan, useColor),
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		FormatError(os.Stderr, &CLIError{Message: "cannot start REPL: " + err.Error()}, useColor)
		return exitRuntimeErr
	}
	defer rl.Close()

	fmt.Println(Colorize("teeny", ColorGreen, useColor) + " — :help for REPL directives, :exit to quit")

	var pending strings.Builder

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if pending.Len() == 0 {
				continue
			}
			pending.Reset()
			rl.SetPrompt(Colorize("teeny> ", ColorCyan, useColor))
			continue
		}
		if err == io.EOF {
			return exitOK
		}
		if err != nil {
			FormatError(os.Stderr, &CLIError{Message: err.Error()}, useColor)
			return exitRuntimeErr
		}

		if pending.Len() == 0 {
			if directive, ok := parseDirective(line); ok {
				if handleDirective(it, directive, cache, useColor) {
					return exitOK
				}
				continue
			}
		}

		if pending.Len() > 0 {
			pending.WriteByte('\n')
		}
		pending.WriteString(line)

		if !bracketsBalanced(pending.String()) {
			rl.SetPrompt(Colorize("  ... ", ColorGray, useColor))
			continue
		}

		source := pending.String()
		pending.Reset()
		rl.SetPrompt(Colorize("teeny> ", ColorCyan, useColor))
		if strings.TrimSpace(source) == "" {
			continue
		}
		evalAndPrint(it, source, useColor)
	}
}

// parseDirective recognizes a REPL directive line (":exit", ":? name",
// "...") and returns the whole trimmed line, argument included;
// handleDirective splits off the argument.
func parseDirective(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		return "", false
	}
	return trimmed, true
}

// handleDirective executes a REPL directive. Returns true when the
// REPL should exit.
func handleDirective(it *interpreter.Interpreter, directive string, cache *module.Cache, useColor bool) bool {
	switch {
	case directive == ":exit":
		return true
	case directive == ":help":
		fmt.Println("Directives: :exit :reload :env :help :? name :time expr :ast expr")
		return false
	case directive == ":env":
		for _, name := range it.Global.Names() {
			fmt.Println(name)
		}
		return false
	case directive == ":reload":
		n := cache.InvalidateAll()
		if n == 0 {
			fmt.Println("no imported modules to reload")
			return false
		}
		fmt.Printf("invalidated %d imported module(s); next import re-reads from disk\n", n)
		return false
	case strings.HasPrefix(directive, ":? "):
		name := strings.TrimSpace(strings.TrimPrefix(directive, ":? "))
		if it.Global.Has(name) {
			fmt.Println(value.ToString(it.Global.Read(name)))
			return false
		}
		if hint := suggest.Closest(name, it.Global.Names()); hint != "" {
			fmt.Printf("%q is not defined (did you mean %q?)\n", name, hint)
			return false
		}
		fmt.Printf("%q is not defined\n", name)
		return false
	case strings.HasPrefix(directive, ":time "):
		expr := strings.TrimPrefix(directive, ":time ")
		timeAndPrint(it, expr, useColor)
		return false
	case strings.HasPrefix(directive, ":ast "):
		expr := strings.TrimPrefix(directive, ":ast ")
		printAST(expr, useColor)
		return false
	default:
		fmt.Println("unknown directive:", directive)
		return false
	}
}

func evalAndPrint(it *interpreter.Interpreter, source string, useColor bool) {
	toks, err := lexer.Tokenize(source)
	if err != nil {
		FormatError(os.Stderr, err, useColor)
		return
	}
	program, err := parser.ParseProgram(toks)
	if err != nil {
		FormatError(os.Stderr, err, useColor)
		return
	}
	program = processor.ProcessAll(program)
	result := it.Run(program)
	if result.IsBubble() {
		result = result.BubbleVal
	}
	if result.IsError() {
		FormatRuntimeError(os.Stderr, result, useColor)
		return
	}
	if result.Tag != value.TagNil {
		fmt.Println(value.ToString(result))
	}
}

func timeAndPrint(it *interpreter.Interpreter, expr string, useColor bool) {
	toks, err := lexer.Tokenize(expr)
	if err != nil {
		FormatError(os.Stderr, err, useColor)
		return
	}
	program, err := parser.ParseProgram(toks)
	if err != nil {
		FormatError(os.Stderr, err, useColor)
		return
	}
	program = processor.ProcessAll(program)
	start := time.Now()
	result := it.Run(program)
	elapsed := time.Since(start)
	if result.IsError() {
		FormatRuntimeError(os.Stderr, result, useColor)
	} else if result.Tag != value.TagNil {
		fmt.Println(value.ToString(result))
	}
	fmt.Println(Colorize(fmt.Sprintf("(%s)", elapsed), ColorGray, useColor))
}

func printAST(expr string, useColor bool) {
	toks, err := lexer.Tokenize(expr)
	if err != nil {
		FormatError(os.Stderr, err, useColor)
		return
	}
	node, _, err := parser.ParseOne(toks)
	if err != nil {
		FormatError(os.Stderr, err, useColor)
		return
	}
	fmt.Println(node.String())
}

// bracketsBalanced reports whether every (), [], {} in src is closed,
// ignoring bracket characters inside quoted sections (tracking quotes
// rather than re-lexing, per spec.md §6).
func bracketsBalanced(src string) bool {
	depth := 0
	var quote rune
	escaped := false
	for _, r := range src {
		if escaped {
			escaped = false
			continue
		}
		if quote != 0 {
			switch r {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'', '`':
			quote = r
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return depth <= 0
}
