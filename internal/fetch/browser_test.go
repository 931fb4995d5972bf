package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldUseBrowser(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "empty", text: "", want: true},
		{name: "whitespace only", text: strings.Repeat(" \n", MinContentLength), want: true},
		{name: "one below", text: strings.Repeat("x", MinContentLength-1), want: true},
		{name: "padding does not count", text: "  " + strings.Repeat("x", MinContentLength-1) + "\n\n", want: true},
		{name: "at threshold", text: strings.Repeat("x", MinContentLength), want: false},
		{name: "long page", text: strings.Repeat("resume ", 200), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldUseBrowser(tt.text))
		})
	}
}

func TestNewBrowser_Defaults(t *testing.T) {
	b := NewBrowser(0, nil)
	assert.Equal(t, DefaultTimeout, b.Timeout)
	assert.Equal(t, DefaultSettleTime, b.Settle)

	b = NewBrowser(5*time.Second, nil)
	assert.Equal(t, 5*time.Second, b.Timeout)
}

func findChrome(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no Chrome or Chromium installed")
	return ""
}

func TestBrowser_RendersScriptContent(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a browser")
	}
	chrome := findChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><main id="app"></main>
<script>document.getElementById("app").textContent = "Rendered by script";</script>
</body></html>`))
	}))
	defer server.Close()

	b := NewBrowser(20*time.Second, nil)
	b.ExecPath = chrome
	b.Settle = 200 * time.Millisecond

	html, err := b.Render(context.Background(), server.URL)
	require.NoError(t, err)

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Rendered by script", text)
}

func TestBrowser_MissingExecutable(t *testing.T) {
	b := NewBrowser(5*time.Second, nil)
	b.ExecPath = "/nonexistent/chrome"

	_, err := b.Render(context.Background(), "http://127.0.0.1:1")
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "browser rendering failed", fetchErr.Message)
}
