package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "http://secure.local:3129", "internal.example")

	req := &http.Request{URL: &url.URL{Scheme: "https", Host: "datasets.example"}}
	got, err := proxy(req)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "secure.local:3129", got.Host)

	req = &http.Request{URL: &url.URL{Scheme: "http", Host: "datasets.example"}}
	got, err = proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:3128", got.Host)

	req = &http.Request{URL: &url.URL{Scheme: "https", Host: "internal.example"}}
	got, err = proxy(req)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRobotsChecker_Allowed(t *testing.T) {
	var robotsHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits++
			_, _ = w.Write([]byte("User-agent: labeleval\nDisallow: /private/\nCrawl-delay: 2\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "labeleval/0.1 (+https://example.com)")
	ctx := context.Background()

	allowed, delay, err := checker.Allowed(ctx, server.URL+"/public/corpus.csv")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 2*time.Second, delay)

	allowed, _, err = checker.Allowed(ctx, server.URL+"/private/corpus.csv")
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.Equal(t, 1, robotsHits, "robots.txt should be fetched once per host")
}

func TestRobotsChecker_MissingRobots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "labeleval")
	allowed, _, err := checker.Allowed(context.Background(), server.URL+"/corpus.csv")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestProductToken(t *testing.T) {
	assert.Equal(t, "labeleval", ProductToken("labeleval/0.1 (+https://x)"))
	assert.Equal(t, "", ProductToken(""))
}
