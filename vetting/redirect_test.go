package vetting

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// countingTransport records every outbound request.
type countingTransport struct {
	calls atomic.Int32
	next  http.RoundTripper
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	if c.next == nil {
		return nil, errors.New("network disabled in test")
	}
	return c.next.RoundTrip(req)
}

func TestRedirectExpander_NonShortenerMakesNoCall(t *testing.T) {
	t.Parallel()
	rt := &countingTransport{}
	e := NewRedirectExpander(&http.Client{Transport: rt}, Shorteners, time.Second)

	for _, u := range []string{"https://example.com/a", "https://www.bit.ly/x", "not a url", ""} {
		if got := e.Expand(context.Background(), u); got != u {
			t.Errorf("Expand(%q) = %q, want unchanged", u, got)
		}
	}
	if n := rt.calls.Load(); n != 0 {
		t.Errorf("made %d network calls, want 0", n)
	}
}

func TestRedirectExpander_TransportFailureReturnsInput(t *testing.T) {
	t.Parallel()
	rt := &countingTransport{}
	e := NewRedirectExpander(&http.Client{Transport: rt}, Shorteners, time.Second)

	in := "https://bit.ly/abc"
	if got := e.Expand(context.Background(), in); got != in {
		t.Errorf("Expand = %q, want %q", got, in)
	}
	if n := rt.calls.Load(); n != 1 {
		t.Errorf("made %d calls, want exactly 1", n)
	}
}

func TestRedirectExpander_ResolvesOneHop(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		switch r.URL.Path {
		case "/abs":
			w.Header().Set("Location", "https://destination.example/landing?id=7")
			w.WriteHeader(http.StatusMovedPermanently)
		case "/rel":
			w.Header().Set("Location", "/next/hop")
			w.WriteHeader(http.StatusFound)
		case "/chain":
			// Points back at the shortener: must not be followed.
			w.Header().Set("Location", "/abs")
			w.WriteHeader(http.StatusFound)
		case "/nolocation":
			w.WriteHeader(http.StatusFound)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	e := NewRedirectExpander(srv.Client(), []string{"127.0.0.1"}, 2*time.Second)
	ctx := context.Background()

	tests := []struct {
		path string
		want string
	}{
		{"/abs", "https://destination.example/landing?id=7"},
		{"/rel", srv.URL + "/next/hop"},
		{"/chain", srv.URL + "/abs"},
		{"/nolocation", srv.URL + "/nolocation"},
		{"/ok", srv.URL + "/ok"},
	}
	for _, tt := range tests {
		if got := e.Expand(ctx, srv.URL+tt.path); got != tt.want {
			t.Errorf("Expand(%s) = %q, want %q", tt.path, got, tt.want)
		}
	}
	if n := hits.Load(); n != int32(len(tests)) {
		t.Errorf("server saw %d requests, want %d (one per expansion)", n, len(tests))
	}
}

func TestRedirectExpander_Timeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	e := NewRedirectExpander(srv.Client(), []string{"127.0.0.1"}, 50*time.Millisecond)
	in := srv.URL + "/slow"
	start := time.Now()
	if got := e.Expand(context.Background(), in); got != in {
		t.Errorf("Expand = %q, want %q", got, in)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expand took %s, expected the timeout to bound it", elapsed)
	}
}
