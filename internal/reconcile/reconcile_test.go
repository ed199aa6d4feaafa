package reconcile

import (
	"testing"

	"novareg/internal/model"
)

func order(id, vendor, customer, num string) model.Order {
	return model.Order{ID: id, VendorCode: vendor, CustomerName: customer, OrderNum: num}
}

func TestPartition_MatchesNaturalKey(t *testing.T) {
	existing := []model.Order{order("e1", "SUSM", "Acme", "1001")}
	batch := []model.Order{
		order("n1", "SUSM", "Acme", "1001"), // exact triple match
		order("n2", "SUSM", "Acme", "1002"), // different order number
		order("n3", "SUSM", "Beta", "1001"), // different customer
	}
	pendings := Partition(existing, batch)
	if len(pendings) != 3 {
		t.Fatalf("want 3 pendings, got %d", len(pendings))
	}
	if !pendings[0].IsDuplicate || pendings[0].ExistingID != "e1" {
		t.Fatalf("first should duplicate e1: %+v", pendings[0])
	}
	if pendings[1].IsDuplicate || pendings[2].IsDuplicate {
		t.Fatalf("non-matching records flagged: %+v", pendings[1:])
	}
}

func TestPartition_IntraBatchDuplicatesNotFlagged(t *testing.T) {
	// two batch records duplicating each other but nothing in the registry
	batch := []model.Order{
		order("n1", "SUSM", "Acme", "1001"),
		order("n2", "SUSM", "Acme", "1001"),
	}
	pendings := Partition(nil, batch)
	for i, p := range pendings {
		if p.IsDuplicate {
			t.Fatalf("batch record %d flagged against its own batch", i)
		}
	}
	adds, held := Split(pendings)
	if len(adds) != 2 || len(held) != 0 {
		t.Fatalf("both should auto-accept: adds=%d held=%d", len(adds), len(held))
	}
}

func TestSplit_PreservesBatchOrder(t *testing.T) {
	existing := []model.Order{order("e1", "V", "C", "1")}
	batch := []model.Order{
		order("a", "V", "C", "1"),
		order("b", "V", "C", "2"),
		order("c", "V", "C", "1"),
		order("d", "V", "C", "3"),
	}
	adds, held := Split(Partition(existing, batch))
	if len(adds) != 2 || adds[0].ID != "b" || adds[1].ID != "d" {
		t.Fatalf("adds wrong: %+v", adds)
	}
	if len(held) != 2 || held[0].NewOrder.ID != "a" || held[1].NewOrder.ID != "c" {
		t.Fatalf("held wrong: %+v", held)
	}
}

func TestResolve(t *testing.T) {
	held := []model.PendingImport{
		{NewOrder: order("a", "V", "C", "1"), IsDuplicate: true, ExistingID: "e1"},
		{NewOrder: order("b", "V", "C", "1"), IsDuplicate: true, ExistingID: "e1"},
	}
	if got := Resolve(held, Skip); len(got) != 0 {
		t.Fatalf("skip should discard all, got %d", len(got))
	}
	kept := Resolve(held, Keep)
	if len(kept) != 2 || kept[0].ID != "a" || kept[1].ID != "b" {
		t.Fatalf("keep should return every held order: %+v", kept)
	}
}

func TestDecisionValid(t *testing.T) {
	if !Keep.Valid() || !Skip.Valid() {
		t.Fatal("keep/skip should be valid")
	}
	if Decision("merge").Valid() {
		t.Fatal("unknown decision should be invalid")
	}
}
