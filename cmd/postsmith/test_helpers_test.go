package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const profilePage = `<html><body>
<div class="pv-text-details__left-panel"><div class="text-body-medium break-words">Staff Engineer at Acme</div></div>
<section>
  <div id="about"></div>
  <div class="display-flex full-width"><div class="pv-shared-text-with-see-more"><span>I build reliable systems.</span></div></div>
</section>
</body></html>`

// fakeOpenAI records prompts and answers with numbered completions.
type fakeOpenAI struct {
	mu      sync.Mutex
	prompts []string
	server  *httptest.Server
}

func newFakeOpenAI(t *testing.T) *fakeOpenAI {
	t.Helper()
	f := &fakeOpenAI{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.prompts = append(f.prompts, gjson.GetBytes(raw, "messages.0.content").String())
		n := len(f.prompts)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"c%d","object":"chat.completion","created":1,"model":"gpt-4o",`+
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Post number %d"}}]}`, n, n)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeOpenAI) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// testEnv is a temp directory holding a config file, a key file path and a saved page.
type testEnv struct {
	dir      string
	config   string
	keysFile string
	page     string
}

func newTestEnv(t *testing.T, openAIBaseURL string) *testEnv {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SCRAPINGBEE_API_KEY", "")

	dir := t.TempDir()
	env := &testEnv{
		dir:      dir,
		config:   filepath.Join(dir, "config.yaml"),
		keysFile: filepath.Join(dir, "keys.yaml"),
		page:     filepath.Join(dir, "profile.html"),
	}

	cfg := fmt.Sprintf("provider: openai\nkeys_file: %s\nlog:\n  level: error\n", env.keysFile)
	if openAIBaseURL != "" {
		cfg += fmt.Sprintf("llm:\n  openai_base_url: %s\n", openAIBaseURL)
	}
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o600))
	require.NoError(t, os.WriteFile(env.page, []byte(profilePage), 0o600))
	return env
}

// execute runs the CLI in-process and returns stdout.
func execute(t *testing.T, env *testEnv, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", env.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
