package insights

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"novareg/internal/model"
)

func TestProject(t *testing.T) {
	got := Project([]model.Order{{
		ID:           "rec-1",
		LineNumber:   "7",
		EstNum:       "E-55",
		VendorCode:   "SUSM",
		CustomerName: "Smith Plumbing",
		Status:       "In transit",
	}})
	if len(got) != 1 {
		t.Fatalf("digests = %d", len(got))
	}
	if got[0].VendorCode != "SUSM" || got[0].Status != "In transit" {
		t.Fatalf("digest mismatch: %+v", got[0])
	}
	// internal identifiers never leave the process
	b, _ := json.Marshal(got[0])
	for _, leak := range []string{"rec-1", "E-55", `"7"`} {
		if strings.Contains(string(b), leak) {
			t.Fatalf("digest leaks %s: %s", leak, b)
		}
	}
}

func TestClient_Report(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/insights" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req struct {
			Orders []Digest `json:"orders"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Orders) != 2 {
			t.Errorf("orders = %d", len(req.Orders))
		}
		io.WriteString(w, `Summary below. {"summary":"Two open orders.","insights":[{"title":"Aging","content":"One order overdue.","category":"warning"}]}`)
	}))
	defer srv.Close()

	rep, err := NewClient(srv.URL).Report(context.Background(), []Digest{{VendorCode: "A"}, {VendorCode: "B"}})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.Summary != "Two open orders." || len(rep.Insights) != 1 {
		t.Fatalf("report mismatch: %+v", rep)
	}
	if rep.Insights[0].Category != CategoryWarning {
		t.Fatalf("category = %s", rep.Insights[0].Category)
	}
}

func TestClient_ReportBadCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"summary":"x","insights":[{"title":"t","content":"c","category":"catastrophic"}]}`)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Report(context.Background(), nil); err == nil {
		t.Fatal("expected shape error")
	}
}

func TestClient_ReportEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Report(context.Background(), nil); err == nil {
		t.Fatal("expected shape error for empty report")
	}
}
