package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidvella/dupnum"
	"github.com/davidvella/dupnum/chunk"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestFindFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("in.txt", []byte("5\n5\n2\n2\n2\n9\n"), 0o600))

	for _, args := range [][]string{
		{"in.txt"},
		{"find", "in.txt", "--merge-strategy", "loser", "--run-format", "cbor"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			stdout, stderr, err := execute(t, append(args, "--temp-dir", t.TempDir())...)
			require.NoError(t, err)
			assert.Equal(t, "Duplicate number found: 2\nDuplicate number found: 5\n", stdout)
			assert.Contains(t, stderr, "search complete")
		})
	}
}

func TestFindQuietWithStats(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("in.txt", []byte("1\n1\n"), 0o600))

	stdout, stderr, err := execute(t, "in.txt", "-q", "--stats", "--log-level", "warn")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "duplicates: 1\n")
	assert.NotContains(t, stderr, "search complete")
}

func TestFindGeneratesInput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, _, err := execute(t, "--quiet", "--temp-dir", t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, defaultInput))
	require.NoError(t, err)
	assert.Equal(t, defaultCount, strings.Count(string(data), "\n"))
}

func TestGenerateThenFind(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := execute(t, "generate", "list", "3", "1", "3", "-o", "list.txt")
	require.NoError(t, err)
	stdout, _, err := execute(t, "list.txt")
	require.NoError(t, err)
	assert.Equal(t, "Duplicate number found: 3\n", stdout)

	_, _, err = execute(t, "generate", "sequential", "--max", "1000", "--dup", "7,700", "-o", "seq.txt")
	require.NoError(t, err)
	stdout, _, err = execute(t, "seq.txt")
	require.NoError(t, err)
	assert.Equal(t, "Duplicate number found: 7\nDuplicate number found: 700\n", stdout)

	_, _, err = execute(t, "generate", "random", "-n", "10", "--seed", "3", "-o", "random.txt")
	require.NoError(t, err)
	data, err := os.ReadFile("random.txt")
	require.NoError(t, err)
	assert.Equal(t, 10, strings.Count(string(data), "\n"))
}

func TestSelftest(t *testing.T) {
	for _, name := range []string{"selftest", "runtest"} {
		t.Run(name, func(t *testing.T) {
			stdout, _, err := execute(t, name, "--temp-dir", t.TempDir())
			require.NoError(t, err)
			assert.Equal(t, 4, strings.Count(stdout, ": Passed\n"))
		})
	}
}

func TestExitCodes(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("bad.txt", []byte("1\n12a\n"), 0o600))
	require.NoError(t, os.WriteFile("big.txt", []byte(strings.Repeat("1234567\n", 128)), 0o600))

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "unknown flag", args: []string{"--bogus"}, code: 2},
		{name: "too many args", args: []string{"a.txt", "b.txt"}, code: 2},
		{name: "bad size", args: []string{"bad.txt", "--memory-budget", "lots"}, code: 2},
		{name: "bad log level", args: []string{"bad.txt", "--log-level", "loud"}, code: 2},
		{name: "missing file", args: []string{"missing.txt"}, code: 3},
		{name: "parse", args: []string{"bad.txt"}, code: 4},
		{name: "capacity", args: []string{"big.txt", "--max-runs", "2", "--memory-budget", "16", "--memory-ceiling", "64"}, code: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append(tt.args, "--temp-dir", t.TempDir())...)
			require.Error(t, err)
			assert.Equal(t, tt.code, dupnum.ExitCode(err))
		})
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, &chunk.CapacityError{TotalBytes: 100, Share: 50, Ceiling: 10})
	assert.Contains(t, buf.String(), "Potential memory error may occur")

	buf.Reset()
	_, err := dupnum.FindFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	printError(&buf, err)
	assert.True(t, strings.HasPrefix(buf.String(), "File location or access error occurred: "))
}
