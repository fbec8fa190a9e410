package github

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var digestRequest = DispatchRequest{Ref: "main", Inputs: map[string]string{"story_count": "20"}}

type capturedRequest struct {
	method string
	path   string
	header http.Header
	body   string
}

func newTestClient(t *testing.T, status int, respBody string) (*Client, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.path = r.URL.EscapedPath()
		got.header = r.Header.Clone()
		got.body = string(b)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{Token: " ghp_test ", UserAgent: "hn-digest-trigger", BaseURL: srv.URL})
	require.NoError(t, err)
	return c, got
}

func TestClient_DispatchWorkflow_Success(t *testing.T) {
	c, got := newTestClient(t, http.StatusNoContent, "")

	err := c.DispatchWorkflow(context.Background(), "octo", "digest", "digest.yml", digestRequest)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/repos/octo/digest/actions/workflows/digest.yml/dispatches", got.path)
	assert.Equal(t, "Bearer ghp_test", got.header.Get("Authorization"))
	assert.Equal(t, "application/vnd.github.v3+json", got.header.Get("Accept"))
	assert.Equal(t, "hn-digest-trigger", got.header.Get("User-Agent"))
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Equal(t, `{"ref":"main","inputs":{"story_count":"20"}}`, strings.TrimSpace(got.body))
}

func TestClient_DispatchWorkflow_AcceptedIsSuccess(t *testing.T) {
	c, _ := newTestClient(t, http.StatusAccepted, "")

	err := c.DispatchWorkflow(context.Background(), "octo", "digest", "digest.yml", digestRequest)
	assert.NoError(t, err)
}

func TestClient_DispatchWorkflow_EscapesWorkflowID(t *testing.T) {
	c, got := newTestClient(t, http.StatusNoContent, "")

	err := c.DispatchWorkflow(context.Background(), "octo", "digest", "nightly digest.yml", digestRequest)
	require.NoError(t, err)
	assert.Equal(t, "/repos/octo/digest/actions/workflows/nightly%20digest.yml/dispatches", got.path)
}

func TestClient_DispatchWorkflow_RejectedCarriesStatusAndBody(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusBadGateway} {
		respBody := `{"message":"No ref found for: main"}`
		c, _ := newTestClient(t, status, respBody)

		err := c.DispatchWorkflow(context.Background(), "octo", "digest", "digest.yml", digestRequest)
		require.Error(t, err)

		var dErr *DispatchError
		require.True(t, errors.As(err, &dErr), "want *DispatchError got %T", err)
		assert.Equal(t, status, dErr.StatusCode)
		assert.Equal(t, respBody, dErr.Body)
		assert.Contains(t, err.Error(), strconv.Itoa(status))
	}
}

func TestClient_DispatchWorkflow_RateLimitedDoesNotBlockNextCall(t *testing.T) {
	hits := 0
	respBody := `{"message":"API rate limit exceeded"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(respBody))
	}))
	defer srv.Close()
	c, err := NewClient(ClientConfig{Token: "t", BaseURL: srv.URL})
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		err := c.DispatchWorkflow(context.Background(), "octo", "digest", "digest.yml", digestRequest)
		var dErr *DispatchError
		require.True(t, errors.As(err, &dErr), "call %d: want *DispatchError got %v", i, err)
		assert.Equal(t, http.StatusForbidden, dErr.StatusCode)
		assert.Equal(t, respBody, dErr.Body, "call %d must carry the upstream body", i)
		assert.Equal(t, i, hits, "call %d must reach the API", i)
	}
}

func TestClient_DispatchWorkflow_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := NewClient(ClientConfig{Token: "t", BaseURL: srv.URL})
	require.NoError(t, err)

	err = c.DispatchWorkflow(context.Background(), "octo", "digest", "digest.yml", digestRequest)
	require.Error(t, err)
	var dErr *DispatchError
	assert.False(t, errors.As(err, &dErr), "transport failure has no status")
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{Token: "t", BaseURL: "://bad"})
	assert.Error(t, err)
}

func TestDispatchError_Error(t *testing.T) {
	err := &DispatchError{StatusCode: 401, Body: "Bad credentials"}
	assert.Equal(t, "GitHub API error: 401", err.Error())
}
