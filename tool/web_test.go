package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebFetch(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
	<title>Test Page</title>
	<script>console.log('test');</script>
	<style>body { color: blue; }</style>
</head>
<body>
	<h1>Test Content</h1>
	<p>This is a   test paragraph.</p>
	<script>alert('test');</script>
</body>
</html>`))
	}))
	defer server.Close()

	result, err := WebFetch(ctx, server.URL)
	require.NoError(t, err)
	assert.Contains(t, result, "Test Content")
	assert.Contains(t, result, "This is a test paragraph")
	assert.NotContains(t, result, "console.log")
	assert.NotContains(t, result, "alert")
	assert.NotContains(t, result, "color: blue")

	errorServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer errorServer.Close()

	_, err = WebFetch(ctx, errorServer.URL)
	assert.ErrorContains(t, err, "status code 404")

	emptyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer emptyServer.Close()

	_, err = WebFetch(ctx, emptyServer.URL)
	assert.ErrorContains(t, err, "no text content found")
}

func TestWebFetchInvalidURL(t *testing.T) {
	_, err := WebFetch(context.Background(), "invalid-url")
	require.Error(t, err)
	assert.True(t,
		strings.Contains(err.Error(), "failed to create request") ||
			strings.Contains(err.Error(), "failed to fetch URL"),
		"unexpected error: %v", err)
}

func TestWebFetchTool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>hello tool</p></body></html>"))
	}))
	defer server.Close()

	tl := WebFetchTool()
	out, err := tl.Call(context.Background(), map[string]any{"url": server.URL})
	require.NoError(t, err)
	assert.Equal(t, "hello tool", out)

	_, err = tl.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
}
