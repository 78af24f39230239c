package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGETWithBaseURLAndDefaultHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/ping" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Referer"); got != "https://finance.yahoo.com/" {
			t.Errorf("expected default Referer header, got %q", got)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	opts := []ClientOption{WithBaseURL(srv.URL)}
	for k, v := range YahooFinanceHeaders() {
		opts = append(opts, WithHeader(k, v))
	}
	c := NewClient(opts...)

	resp, err := c.GET(context.Background(), "/v8/ping")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		OK bool `json:"ok"`
	}
	if err := resp.ParseJSON(&body); err != nil {
		t.Fatal(err)
	}
	if !body.OK {
		t.Error("expected ok response")
	}
}

func TestGETPerRequestHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept-Language"); got != "en-US,en;q=0.9" {
			t.Errorf("expected browser Accept-Language, got %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient()
	if _, err := c.GET(context.Background(), srv.URL, BrowserHeaders()); err != nil {
		t.Fatal(err)
	}
}

func TestDoWithRetryRecovers(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(2 * time.Second))
	req := NewRequest(http.MethodGet, srv.URL).WithContext(context.Background())
	resp, err := c.DoWithRetry(req, 10*time.Second)
	if err != nil {
		t.Fatalf("expected retries to recover: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestDoReportsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient()
	if _, err := c.GET(context.Background(), srv.URL); err == nil {
		t.Error("expected error for a 404 response")
	}
}
