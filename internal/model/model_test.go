package model

import "testing"

func TestNaturalKeyMatches(t *testing.T) {
	base := Order{ID: "rec-1", VendorCode: "SUSM", OrderNum: "1001", CustomerName: "Smith"}

	same := Order{ID: "rec-2", VendorCode: "SUSM", OrderNum: "1001", CustomerName: "Smith", Status: "Received"}
	if !base.NaturalKeyMatches(same) {
		t.Fatal("identical key should match regardless of id and status")
	}

	for _, other := range []Order{
		{VendorCode: "GGLH", OrderNum: "1001", CustomerName: "Smith"},
		{VendorCode: "SUSM", OrderNum: "1002", CustomerName: "Smith"},
		{VendorCode: "SUSM", OrderNum: "1001", CustomerName: "Jones"},
	} {
		if base.NaturalKeyMatches(other) {
			t.Fatalf("unexpected match: %+v", other)
		}
	}
}

func TestShortName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Smith Plumbing - 123 Main St", "Smith Plumbing"},
		{"Smith Plumbing", "Smith Plumbing"},
		{" Jones HVAC - unit 4 - rear", "Jones HVAC"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := (Order{CustomerName: tc.in}).ShortName(); got != tc.want {
			t.Fatalf("ShortName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
