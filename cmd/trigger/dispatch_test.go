package main

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hn-digest/trigger/internal/github"
)

func setupEnv(t *testing.T, apiURL string) {
	t.Helper()
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_REPO", "octo/digest")
	t.Setenv("WORKFLOW_FILE", "digest.yml")
	t.Setenv("GITHUB_API_URL", apiURL)
	t.Setenv("DOTENV_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
}

func TestDispatchCmd_Success(t *testing.T) {
	var gotPath, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotPath, gotBody = r.URL.Path, string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()
	setupEnv(t, upstream.URL)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"dispatch"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("dispatch want nil got %v", err)
	}
	if gotPath != "/repos/octo/digest/actions/workflows/digest.yml/dispatches" {
		t.Errorf("path got %s", gotPath)
	}
	if strings.TrimSpace(gotBody) != `{"ref":"main","inputs":{"story_count":"20"}}` {
		t.Errorf("body got %s", gotBody)
	}
}

func TestDispatchCmd_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Server Error"}`, http.StatusInternalServerError)
	}))
	defer upstream.Close()
	setupEnv(t, upstream.URL)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"dispatch"})
	err := cmd.Execute()
	var dErr *github.DispatchError
	if !errors.As(err, &dErr) || dErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("want DispatchError 500 got %v", err)
	}
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	setupEnv(t, "")
	t.Setenv("GITHUB_TOKEN", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"dispatch"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "GITHUB_TOKEN") {
		t.Fatalf("want configuration error got %v", err)
	}
}

func TestRootCmd_EnvFileFlag(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()
	setupEnv(t, upstream.URL)
	os.Unsetenv("WORKFLOW_FILE")

	path := filepath.Join(t.TempDir(), "trigger.env")
	if err := os.WriteFile(path, []byte("WORKFLOW_FILE=digest.yml\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("WORKFLOW_FILE") })

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--env-file", path, "dispatch"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("dispatch want nil got %v", err)
	}
}
