package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTMXMiddleware(t *testing.T) {
	var got HTMXInfo
	var fragment bool
	handler := HTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = HTMXInfoFromContext(r.Context())
		fragment = WantsFragment(r.Context())
	}))

	t.Run("plain request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/w/abc", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if got.IsHTMX || fragment {
			t.Fatalf("expected non-htmx request, got %+v", got)
		}
		if rr.Header().Get("Vary") != "HX-Request" {
			t.Fatalf("expected Vary header, got %q", rr.Header().Get("Vary"))
		}
	})

	t.Run("htmx request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/w/abc/clear", nil)
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Target", "dex-widget")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if !got.IsHTMX || !fragment {
			t.Fatalf("expected htmx fragment request, got %+v", got)
		}
		if got.Target != "dex-widget" {
			t.Fatalf("unexpected target %q", got.Target)
		}
	})

	t.Run("history restore wants full page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/w/abc", nil)
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-History-Restore-Request", "true")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if fragment {
			t.Fatal("expected full page for history restore")
		}
	})
}

func TestNoStore(t *testing.T) {
	handler := NoStore()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("expected no-store, got %q", rr.Header().Get("Cache-Control"))
	}
}
