package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	client := New(nil)
	require.NotNil(t, client, "expected non-nil client")
	assert.Equal(t, DefaultTimeout, client.defaultTimeout, "expected default timeout")
	assert.Equal(t, defaultUserAgent, client.userAgent, "expected default user agent")
}

func TestNewWithConfig(t *testing.T) {
	t.Parallel()

	client := New(&Config{DefaultTimeout: 5 * time.Second, UserAgent: "TestAgent/1.0"})
	assert.Equal(t, 5*time.Second, client.defaultTimeout, "expected timeout 5s")
	assert.Equal(t, "TestAgent/1.0", client.userAgent, "expected user agent 'TestAgent/1.0'")
}

func TestGet(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method, "expected GET method")
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"), "expected injected user agent")
		_, _ = w.Write([]byte("success"))
	}))
	defer server.Close()

	client := New(nil)
	defer client.Close()

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err, "request failed")
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected status 200")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read body")
	assert.Equal(t, "success", string(body), "expected body 'success'")
}

func TestPostMarshalsJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"), "expected JSON content type")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err, "failed to read request body")
		assert.JSONEq(t, `{"camera_id":2}`, string(body), "expected marshaled struct body")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(nil)
	defer client.Close()

	resp, err := client.Post(context.Background(), server.URL, "", struct {
		CameraID int `json:"camera_id"`
	}{CameraID: 2})
	require.NoError(t, err, "request failed")
	_ = resp.Body.Close()
}

func TestContextCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := New(nil)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err, "failed to create request")

	//nolint:bodyclose // no response on error
	_, err = client.Do(ctx, req)
	require.Error(t, err, "expected error from cancelled context")
	assert.ErrorIs(t, err, context.Canceled, "expected context.Canceled error")
}

func TestNilRequest(t *testing.T) {
	t.Parallel()

	client := New(nil)
	//nolint:bodyclose // no response on error
	_, err := client.Do(context.Background(), nil)
	require.Error(t, err, "expected error for nil request")
}
