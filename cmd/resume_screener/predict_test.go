package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/catalog"
	"github.com/jonathan/resume-screener/internal/inference"
)

func TestPredictCommand_Text(t *testing.T) {
	dir := modelDir(t)

	res := execute(t, nil, "predict", "--model-dir", dir, "Experience in Python, Machine Learning, and Data Analysis.")
	require.NoError(t, res.err, res.stderr)

	cat, err := catalog.LoadDefault()
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "Category:   Data Science")
	assert.Contains(t, res.stdout, "Suggestion: "+cat.Lookup("Data Science"))
}

func TestPredictCommand_JSON(t *testing.T) {
	dir := modelDir(t)

	res := execute(t, nil, "predict", "--model-dir", dir, "--json", "Java", "and", "Spring")
	require.NoError(t, res.err, res.stderr)

	var out predictOutput
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, "Java Developer", out.Category)
	assert.NotEmpty(t, out.Suggestion)
	assert.Empty(t, out.Error)
}

func TestPredictCommand_FileAndStdin(t *testing.T) {
	dir := modelDir(t)

	file := filepath.Join(t.TempDir(), "resume.md")
	writeFile(t, file, "# Jane Doe\n\n- Argued contract law cases before the High Court\n")

	res := execute(t, nil, "predict", "--model-dir", dir, "--file", file)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Category:   Advocate")

	res = execute(t, strings.NewReader("Spring Boot and Java microservices"), "predict", "--model-dir", dir, "-")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Category:   Java Developer")
}

func TestPredictCommand_Verbose(t *testing.T) {
	dir := modelDir(t)

	res := execute(t, nil, "predict", "--model-dir", dir, "-v", "python @recruiter #hiring learning")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "DOCUMENT")
	assert.Contains(t, res.stdout, "argument")
	assert.Contains(t, res.stdout, "CLEANED TEXT (2 words)")
	assert.Contains(t, res.stdout, "python learning")
	assert.Contains(t, res.stdout, "Category: Data Science")
}

func TestPredictCommand_ModelUnavailable(t *testing.T) {
	dir := emptyModelDir(t)

	res := execute(t, nil, "predict", "--model-dir", dir, "--json", "Python developer")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "model unavailable")
	assert.Contains(t, res.err.Error(), "file not found")

	var out predictOutput
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, inference.UnavailableCategory, out.Category)
	assert.Equal(t, inference.UnavailableSuggestion, out.Suggestion)
	assert.Equal(t, inference.UnavailableCategory, out.Error)
}

func TestPredictCommand_InputErrors(t *testing.T) {
	dir := modelDir(t)
	writeFile(t, "resume.exe", "MZ")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no input", args: []string{"predict", "--model-dir", dir}, want: "provide resume text"},
		{name: "file and url", args: []string{"predict", "--file", "a.txt", "--url", "http://example.com"}, want: "none of the others can be"},
		{name: "file and text", args: []string{"predict", "--model-dir", dir, "--file", "a.txt", "extra"}, want: "cannot be combined"},
		{name: "missing file", args: []string{"predict", "--model-dir", dir, "--file", "missing.txt"}, want: "file not found"},
		{name: "unsupported file", args: []string{"predict", "--model-dir", dir, "--file", "resume.exe"}, want: "unsupported document format"},
		{name: "browser without url", args: []string{"predict", "--model-dir", dir, "--browser", "java"}, want: "--browser only applies to --url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, nil, tt.args...)
			require.Error(t, res.err)
			assert.Contains(t, res.err.Error(), tt.want)
		})
	}
}

func TestPredictCommand_BadConfigFile(t *testing.T) {
	dir := modelDir(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "server: [port\n")

	res := execute(t, nil, "predict", "--config", path, "--model-dir", dir, "java")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "failed to read config file")
}

func TestPredictCommand_ConfigFileModelDir(t *testing.T) {
	dir := modelDir(t)
	writeFile(t, "resume-screener.yaml", "artifacts:\n  dir: "+dir+"\n")

	res := execute(t, nil, "predict", "java spring")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Java Developer")
}
