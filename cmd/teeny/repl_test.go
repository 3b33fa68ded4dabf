package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBracketsBalancedSimpleCases(t *testing.T) {
	require.True(t, bracketsBalanced("1 + 1"))
	require.True(t, bracketsBalanced("fn(a, b) { a + b }"))
	require.False(t, bracketsBalanced("fn(a, b) { a + b"))
	require.False(t, bracketsBalanced("[1, 2"))
}

func TestBracketsBalancedIgnoresBracketsInsideStrings(t *testing.T) {
	require.True(t, bracketsBalanced(`"{ unbalanced"`))
	require.True(t, bracketsBalanced("`[nope`"))
}

func TestBracketsBalancedHandlesEscapedQuotes(t *testing.T) {
	require.True(t, bracketsBalanced(`"a \" { b"`))
}

func TestBracketsBalancedNegativeDepthStillReportsBalanced(t *testing.T) {
	require.True(t, bracketsBalanced(")"))
}

func TestParseDirectiveRecognizesColonPrefix(t *testing.T) {
	directive, ok := parseDirective("  :exit  ")
	require.True(t, ok)
	require.Equal(t, ":exit", directive)
}

func TestParseDirectiveRejectsNonDirectiveLine(t *testing.T) {
	_, ok := parseDirective("1 + 1")
	require.False(t, ok)
}
