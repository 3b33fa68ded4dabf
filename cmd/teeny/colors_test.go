package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColorizeWrapsWhenEnabled(t *testing.T) {
	require.Equal(t, "\x1b[31mboom\x1b[0m", Colorize("boom", ColorRed, true))
}

func TestColorizePassesThroughWhenDisabled(t *testing.T) {
	require.Equal(t, "boom", Colorize("boom", ColorRed, false))
}

func TestShouldUseColorRespectsNoColorFlag(t *testing.T) {
	require.False(t, ShouldUseColor(true))
}

func TestShouldUseColorRespectsNoColorEnvVar(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	require.False(t, ShouldUseColor(false))
}
