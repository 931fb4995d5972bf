package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/artifacts/artifactstest"
	"github.com/jonathan/resume-screener/internal/catalog"
)

func TestCleanCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	res := execute(t, nil, "clean", "Visit http://me.dev now! RT @bob #hire Python, SQL & ML.")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "Visit now Python SQL ML\n", res.stdout)
}

func TestCleanCommand_WritesOutput(t *testing.T) {
	t.Chdir(t.TempDir())
	file := filepath.Join(t.TempDir(), "resume.txt")
	writeFile(t, file, "Jane\r\n\r\n\r\nJava   developer!  \n")
	out := filepath.Join(t.TempDir(), "out")

	res := execute(t, nil, "clean", "--file", file, "--out", out, "--name", "jane")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "Jane Java developer\n", res.stdout)
	assert.Contains(t, res.stderr, "jane.cleaned.txt")

	cleaned, err := os.ReadFile(filepath.Join(out, "jane.cleaned.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Jane\n\nJava developer!", string(cleaned))

	meta, err := os.ReadFile(filepath.Join(out, "jane.meta.json"))
	require.NoError(t, err)
	assert.Contains(t, string(meta), `"format": "text"`)
}

func TestCleanCommand_URLWithBrowser(t *testing.T) {
	t.Chdir(t.TempDir())
	paragraph := strings.Repeat("Senior Go engineer building distributed systems. ", 12)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><main><p>%s</p></main></body></html>", paragraph)
	}))
	defer ts.Close()

	// The static page has enough text, so no browser is started.
	res := execute(t, nil, "clean", "--url", ts.URL+"/cv", "--browser")
	require.NoError(t, res.err, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "Senior Go engineer building distributed systems Senior Go"))
}

func TestCategoriesCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	res := execute(t, nil, "categories")
	require.NoError(t, res.err)

	cat, err := catalog.LoadDefault()
	require.NoError(t, err)
	for _, name := range cat.Names() {
		assert.Contains(t, res.stdout, name)
	}
	assert.Contains(t, res.stdout, "25 categories from embedded:resume_categories.json")
	assert.Contains(t, res.stdout, catalog.FallbackSuggestion)
}

func TestCategoriesCommand_CustomCatalog(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "catalog.json", `[{"name":"Astronaut","suggestion":"List flight hours."},{"name":"Pilot","suggestion":""}]`)

	res := execute(t, nil, "categories", "--catalog", "catalog.json")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Astronaut")
	assert.Contains(t, res.stdout, "1 categories from catalog.json")
	assert.Contains(t, res.stdout, "Skipped 1 entries")
}

func TestValidateCommand(t *testing.T) {
	dir := modelDir(t)

	res := execute(t, nil, "validate", "--model-dir", dir)
	require.NoError(t, res.err, res.stdout)
	assert.Contains(t, res.stdout, "vectorizer")
	assert.Contains(t, res.stdout, "3 labels")
	assert.Contains(t, res.stdout, "EVERY CATEGORY HAS A SUGGESTION")
}

func TestValidateCommand_ReportsCoverageGaps(t *testing.T) {
	dir := modelDir(t)
	writeFile(t, "catalog.json", `[{"name":"Advocate","suggestion":"Cite cases."}]`)

	res := execute(t, nil, "validate", "--model-dir", dir, "--catalog", "catalog.json")
	require.NoError(t, res.err, res.stdout)
	assert.Contains(t, res.stdout, "2 categories use the generic fallback")
	assert.Contains(t, res.stdout, "Data Science")
	assert.Contains(t, res.stdout, "Java Developer")
}

func TestValidateCommand_Failures(t *testing.T) {
	t.Run("schema", func(t *testing.T) {
		dir := modelDir(t)
		artifactstest.WriteFile(t, filepath.Join(dir, artifactstest.EncoderFile), `{"format":"label-encoder/v1"}`)

		res := execute(t, nil, "validate", "--model-dir", dir)
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "1 check(s) failed")
		assert.Contains(t, res.stdout, "FAIL")
	})

	t.Run("cross check", func(t *testing.T) {
		dir := modelDir(t)
		artifactstest.WriteFile(t, filepath.Join(dir, artifactstest.EncoderFile),
			`{"format":"label-encoder/v1","classes":["Advocate","Data Science"]}`)

		res := execute(t, nil, "validate", "--model-dir", dir)
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "model unavailable")
		assert.Contains(t, res.err.Error(), "has no label")
	})
}

func TestFetchArtifactsCommand(t *testing.T) {
	src := t.TempDir()
	artifactstest.WriteModel(t, src)

	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.ServeFile(w, r, filepath.Join(src, filepath.Base(r.URL.Path)))
	}))
	defer ts.Close()

	dest := emptyModelDir(t)
	t.Setenv("RESUME_SCREENER_ARTIFACTS_VECTORIZER_URL", ts.URL+"/"+artifactstest.VectorizerFile)
	t.Setenv("RESUME_SCREENER_ARTIFACTS_CLASSIFIER_URL", ts.URL+"/"+artifactstest.ClassifierFile)
	t.Setenv("RESUME_SCREENER_ARTIFACTS_ENCODER_URL", ts.URL+"/"+artifactstest.EncoderFile)

	res := execute(t, nil, "fetch-artifacts", "--model-dir", dest)
	require.NoError(t, res.err, res.stdout)
	assert.Equal(t, 3, strings.Count(res.stdout, "downloaded"))
	assert.Equal(t, int32(3), requests.Load())

	res = execute(t, nil, "validate", "--model-dir", dest)
	require.NoError(t, res.err, res.stdout)

	res = execute(t, nil, "fetch-artifacts", "--model-dir", dest)
	require.NoError(t, res.err)
	assert.Equal(t, 3, strings.Count(res.stdout, "exists"))
	assert.Equal(t, int32(3), requests.Load())

	res = execute(t, nil, "fetch-artifacts", "--model-dir", dest, "--force")
	require.NoError(t, res.err)
	assert.Equal(t, int32(6), requests.Load())
}

func TestFetchArtifactsCommand_Errors(t *testing.T) {
	t.Run("no sources", func(t *testing.T) {
		dest := emptyModelDir(t)
		res := execute(t, nil, "fetch-artifacts", "--model-dir", dest)
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "no artifact sources configured")
	})

	t.Run("placeholder source", func(t *testing.T) {
		dest := emptyModelDir(t)
		t.Setenv("RESUME_SCREENER_ARTIFACTS_VECTORIZER_URL", "YOUR_VECTORIZER_URL")

		res := execute(t, nil, "fetch-artifacts", "--model-dir", dest)
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "vectorizer")
		assert.Contains(t, res.stdout, "no source")
	})
}

func TestPredictCommand_DownloadsMissingArtifacts(t *testing.T) {
	src := t.TempDir()
	artifactstest.WriteModel(t, src)
	ts := httptest.NewServer(http.FileServer(http.Dir(src)))
	defer ts.Close()

	dest := emptyModelDir(t)
	t.Setenv("RESUME_SCREENER_ARTIFACTS_VECTORIZER_URL", ts.URL+"/"+artifactstest.VectorizerFile)
	t.Setenv("RESUME_SCREENER_ARTIFACTS_CLASSIFIER_URL", ts.URL+"/"+artifactstest.ClassifierFile)
	t.Setenv("RESUME_SCREENER_ARTIFACTS_ENCODER_URL", ts.URL+"/"+artifactstest.EncoderFile)

	res := execute(t, nil, "predict", "--model-dir", dest, "court")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Advocate")
	assert.FileExists(t, filepath.Join(dest, artifactstest.ClassifierFile))
}

func TestServeCommand(t *testing.T) {
	dir := modelDir(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan result, 1)
	go func() {
		done <- executeContext(t, ctx, nil, "serve", "--model-dir", dir, "--port", fmt.Sprint(port))
	}()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/ready")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Post(base+"/predict", "application/json", strings.NewReader(`{"resume":"java spring"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case res := <-done:
		assert.NoError(t, res.err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestVersionCommand(t *testing.T) {
	res := execute(t, nil, "version")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "resume_screener dev"))
}
