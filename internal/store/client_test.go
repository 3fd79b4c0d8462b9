package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(url string) *Client {
	return NewClient(Config{
		BaseURL:    url,
		Attempts:   2,
		RetryDelay: time.Millisecond,
	})
}

func TestTitleExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/content/count" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("title") == "EPA Enforcement - Acme Corp" {
			w.Write([]byte(`{"count":1}`))
			return
		}
		w.Write([]byte(`{"count":0}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	exists, err := c.TitleExists(context.Background(), "EPA Enforcement - Acme Corp")
	if err != nil {
		t.Fatalf("TitleExists() error = %v", err)
	}
	if !exists {
		t.Fatal("TitleExists() = false, want true")
	}

	exists, err = c.TitleExists(context.Background(), "never seen")
	if err != nil {
		t.Fatalf("TitleExists() error = %v", err)
	}
	if exists {
		t.Fatal("TitleExists() = true, want false")
	}
}

func TestTitleExistsNeverFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	_, err := c.TitleExists(context.Background(), "anything")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("TitleExists() error = %v, want ErrUnreachable (never a silent false negative)", err)
	}
}

func TestEnvironmentalIssues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/taxonomy/environmental_issues/terms" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"terms":[{"name":"Air"},{"name":"Water"}]}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).EnvironmentalIssues(context.Background())
	if err != nil {
		t.Fatalf("EnvironmentalIssues() error = %v", err)
	}
	if len(got) != 2 || got[0] != "Air" || got[1] != "Water" {
		t.Fatalf("EnvironmentalIssues() = %v, want [Air Water] in store order", got)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "transient", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"count":0}`))
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).TitleExists(context.Background(), "x"); err != nil {
		t.Fatalf("TitleExists() error = %v, want retry to succeed", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("server saw %d calls, want 2", calls.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).TitleExists(context.Background(), "x"); err == nil {
		t.Fatal("TitleExists() expected error for 400")
	}
	if calls.Load() != 1 {
		t.Fatalf("server saw %d calls, want 1 (4xx is not retryable)", calls.Load())
	}
}
