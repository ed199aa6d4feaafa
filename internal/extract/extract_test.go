package extract

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/extract" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("content type = %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "%PDF-fake" {
			t.Errorf("body = %q", body)
		}
		// JSON wrapped in prose, as the collaborator tends to respond
		io.WriteString(w, "Extracted the following:\n```json\n"+
			`{"orders":[{"vendorCode":"susm","orderNum":10042,"customerName":"Smith"}]}`+
			"\n```")
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	recs, err := c.Extract(context.Background(), []byte("%PDF-fake"), "application/pdf")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d", len(recs))
	}
	if string(recs[0].VendorCode) != "susm" || string(recs[0].OrderNum) != "10042" {
		t.Fatalf("record mismatch: %+v", recs[0])
	}
}

func TestClient_ExtractNoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "I could not read this document.")
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Extract(context.Background(), []byte("x"), ""); err == nil {
		t.Fatal("expected error for prose-only response")
	}
}

func TestClient_ExtractBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Extract(context.Background(), []byte("x"), ""); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
