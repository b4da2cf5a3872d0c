//go:build integration

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireChrome(t *testing.T) {
	t.Helper()
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("Chrome not installed, skipping render tier integration test")
}

func TestBrowserSession_RendersScriptContent(t *testing.T) {
	requireChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div id="c"></div>
			<script>document.getElementById("c").innerHTML = '<a href="mailto:js@acme.io">mail</a>';</script>
		</body></html>`))
	}))
	defer server.Close()

	session, err := NewChromeOpener(DefaultBrowserOptions()).Open(context.Background())
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	for i := 0; i < 2; i++ {
		result, err := session.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, TierRender, result.Tier)
		assert.Contains(t, result.HTML, "mailto:js@acme.io")
	}
}
