package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and returns what it wrote to
// stdout. Global flag variables are reset first so runs don't leak into
// each other.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, quiet, jsonOut, noColor, logLevel = false, false, false, false, ""
	stressOpts = defaultWorkloadOptions()
	mapOpts = mapDefaults()
	mapWidth = 64
	scenarioWidth = 32

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

// assertJSON checks that output is valid JSON and decodes it into v.
func assertJSON(t *testing.T, output string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(output), v), "output:\n%s", output)
}
