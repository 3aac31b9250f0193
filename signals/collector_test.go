package signals

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestCollector(render func(context.Context, string) (string, error)) *Collector {
	c := NewCollector(false, "")
	c.render = render
	return c
}

func TestCollector_HTTPFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing user agent")
		}
		_, _ = w.Write([]byte(`<html><body><form><input type="password"></form>Please login</body></html>`))
	}))
	defer srv.Close()

	c := newTestCollector(func(context.Context, string) (string, error) {
		t.Error("renderer used although HTTP succeeded")
		return "", nil
	})
	got, err := c.Collect(context.Background(), srv.URL+"/", false)
	if err != nil {
		t.Fatal(err)
	}
	if got.PasswordForms != 1 || len(got.BodyKeywords) != 1 || got.BodyKeywords[0] != "login" {
		t.Errorf("got %+v", got)
	}
}

func TestCollector_FallsBackToRenderer(t *testing.T) {
	shell := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="root"></div><script src="/app.js"></script></body></html>`))
	}))
	defer shell.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer broken.Close()

	for _, target := range []string{shell.URL + "/", broken.URL + "/"} {
		var rendered string
		c := newTestCollector(func(_ context.Context, rawURL string) (string, error) {
			rendered = rawURL
			return `<html><body><form><input type="password"><input type="password"></form></body></html>`, nil
		})
		got, err := c.Collect(context.Background(), target, false)
		if err != nil {
			t.Fatalf("%s: %v", target, err)
		}
		if rendered != target || got.PasswordForms != 2 {
			t.Errorf("%s: rendered=%q got %+v", target, rendered, got)
		}
	}
}

func TestCollector_ForceRender(t *testing.T) {
	t.Parallel()
	called := false
	c := newTestCollector(func(context.Context, string) (string, error) {
		called = true
		return `<html><body>verify</body></html>`, nil
	})
	got, err := c.Collect(context.Background(), "https://never-fetched.example/", true)
	if err != nil || !called || len(got.BodyKeywords) != 1 {
		t.Errorf("got %+v, %v (called=%v)", got, err, called)
	}
}

func TestCollector_Errors(t *testing.T) {
	t.Parallel()
	if _, err := NewCollector(true, "").Collect(context.Background(), "relative/path", false); err == nil {
		t.Error("expected error for relative URL")
	}
	if _, err := NewCollector(true, "").Collect(context.Background(), "https://x.example/", true); err == nil {
		t.Error("expected error when rendering is disabled")
	}
	c := newTestCollector(func(context.Context, string) (string, error) { return "", errors.New("no chrome") })
	if _, err := c.Collect(context.Background(), "https://x.example/", true); err == nil {
		t.Error("expected renderer error")
	}
}
