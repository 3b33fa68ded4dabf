package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/IANYEYZ/teeny/runtime/lexer"
	"github.com/IANYEYZ/teeny/runtime/parser"
	"github.com/IANYEYZ/teeny/runtime/processor"
	"github.com/IANYEYZ/teeny/stdlib"
	"github.com/IANYEYZ/teeny/stdlib/module"
)

// Exit codes for the three error tiers spec.md §7 distinguishes:
// lexical/syntax errors are fatal at the driver (distinct codes so
// scripts and CI can tell a malformed script from a failed run),
// runtime errors propagate a Teeny Error value and exit 1.
const (
	exitOK          = 0
	exitRuntimeErr  = 1
	exitLexicalErr  = 2
	exitSyntaxErr   = 3
)

// runFile lexes, parses, and evaluates the script at path, seeding a
// fresh global environment per spec.md §6's driver contract.
func runFile(path string, debug, noColor bool, extraArgs []string) int {
	useColor := ShouldUseColor(noColor)
	src, err := os.ReadFile(path)
	if err != nil {
		FormatError(os.Stderr, &CLIError{Message: fmt.Sprintf("cannot read %q: %v", path, err)}, useColor)
		return exitRuntimeErr
	}

	toks, err := lexer.Tokenize(string(src))
	if err != nil {
		FormatError(os.Stderr, err, useColor)
		return exitLexicalErr
	}

	program, err := parser.ParseProgram(toks)
	if err != nil {
		FormatError(os.Stderr, err, useColor)
		return exitSyntaxErr
	}
	program = processor.ProcessAll(program)

	log := slog.Default()
	if debug {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	cfg := stdlib.Config{
		SourcePath:        filepath.Dir(path),
		GlobalPackagePath: globalPackagePath,
		NoColor:           noColor,
		Argv:              extraArgs,
		Log:               log,
	}
	cache := module.NewCache()
	it := stdlib.Seed(cfg, cache)

	result := it.Run(program)
	if result.IsBubble() {
		result = result.BubbleVal
	}
	if result.IsError() {
		FormatRuntimeError(os.Stderr, result, useColor)
		return exitRuntimeErr
	}
	return exitOK
}
