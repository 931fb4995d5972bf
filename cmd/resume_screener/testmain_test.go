package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/artifacts/artifactstest"
)

// TestMain disables ANSI colors so command output can be compared directly.
func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs a fresh command tree in-process from an empty working directory.
func execute(t *testing.T, stdin io.Reader, args ...string) result {
	t.Helper()
	return executeContext(t, context.Background(), stdin, args...)
}

func executeContext(t *testing.T, ctx context.Context, stdin io.Reader, args ...string) result {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// modelDir writes the fixture model and returns its directory. The working directory
// is moved to a fresh temp dir so no stray config file is picked up.
func modelDir(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	artifactstest.WriteModel(t, dir)
	return dir
}

func emptyModelDir(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	return t.TempDir()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
