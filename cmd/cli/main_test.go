package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gora/internal/testkit"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFitCommand(t *testing.T) {
	path := writeFile(t, "abc.in", testkit.ABCInput(false))
	out, err := execute(t, "fit", path, "--", "-m", "AB:BC")
	require.NoError(t, err)
	assert.Contains(t, out, "### Basic statistics")
	assert.Contains(t, out, "### Model AB:BC")
}

func TestFitCommand_HTMLAndOptions(t *testing.T) {
	path := writeFile(t, "abc.in", testkit.ABCInput(false))
	yamlPath := writeFile(t, "opts.yaml", "short-model:\n  - AB:C\n  - A:B:C\n")
	out, err := execute(t, "fit", path, "--options-file", yamlPath, "--show-options", "--", "--html")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<h3")
	assert.Contains(t, out, "short-model")
}

func TestRunCommand_Action(t *testing.T) {
	path := writeFile(t, "abc.in", testkit.ABCInput(false, ":action", "search", ":search-levels", "1"))
	out, err := execute(t, "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "### Search results")
}

func TestSearchCommand_CSV(t *testing.T) {
	path := writeFile(t, "cases.csv", "color,size,sick\nred,big,yes\nred,small,no\nblue,big,no\nblue,big,yes\nred,big,yes\n")
	out, err := execute(t, "search", path, "--dv", "sick", "--", "-l", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "### Search results")
	assert.Contains(t, out, "IV:")
}

func TestStatsCommand(t *testing.T) {
	path := writeFile(t, "abc.in", testkit.ABCInput(true))
	out, err := execute(t, "stats", path)
	require.NoError(t, err)
	assert.Contains(t, out, "| System | directed |")
}

func TestOptionsCommand(t *testing.T) {
	out, err := execute(t, "options")
	require.NoError(t, err)
	assert.Contains(t, out, "--short-model")
	assert.Contains(t, out, "--search-width")
}

func TestCommandErrors(t *testing.T) {
	path := writeFile(t, "abc.in", testkit.ABCInput(false))

	_, err := execute(t, "fit", path, "--", "-m", "AB")
	assert.Error(t, err)

	_, err = execute(t, "fit", path, path)
	assert.Error(t, err)

	_, err = execute(t, "fit", filepath.Join(t.TempDir(), "missing.in"), "--", "-m", "AB:C")
	assert.Error(t, err)

	_, err = execute(t, "fit", path, "--save", "--", "-m", "AB:C")
	if os.Getenv("DATABASE_URL") == "" {
		assert.Error(t, err)
	}
}
