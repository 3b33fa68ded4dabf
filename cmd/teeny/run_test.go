package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.ty")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunFileSuccessExitsZero(t *testing.T) {
	path := writeScript(t, "1 + 1")
	code := runFile(path, false, true, nil)
	require.Equal(t, exitOK, code)
}

func TestRunFileLexicalErrorExitsTwo(t *testing.T) {
	path := writeScript(t, `"unterminated`)
	code := runFile(path, false, true, nil)
	require.Equal(t, exitLexicalErr, code)
}

func TestRunFileSyntaxErrorExitsThree(t *testing.T) {
	path := writeScript(t, "1 +")
	code := runFile(path, false, true, nil)
	require.Equal(t, exitSyntaxErr, code)
}

func TestRunFileRuntimeErrorExitsOne(t *testing.T) {
	path := writeScript(t, "undefinedName")
	code := runFile(path, false, true, nil)
	require.Equal(t, exitRuntimeErr, code)
}

func TestRunFileMissingFileExitsOne(t *testing.T) {
	code := runFile(filepath.Join(t.TempDir(), "nope.ty"), false, true, nil)
	require.Equal(t, exitRuntimeErr, code)
}

func TestRunFileExposesArgv(t *testing.T) {
	path := writeScript(t, `argv[0]`)
	code := runFile(path, false, true, []string{"hello"})
	require.Equal(t, exitOK, code)
}
