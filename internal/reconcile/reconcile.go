package reconcile

import "novareg/internal/model"

// Decision resolves one held duplicate set as a whole. There is no
// per-record granularity.
type Decision string

const (
	Keep Decision = "keep"
	Skip Decision = "skip"
)

// Valid reports whether d names a known decision.
func (d Decision) Valid() bool { return d == Keep || d == Skip }

// Partition compares an incoming batch against the pre-batch registry and
// produces one PendingImport per incoming record, in batch order. Matching
// is only against the existing registry: two batch records that duplicate
// each other but nothing in the registry are both non-duplicates. That is
// intentional and observable; do not extend matching to intra-batch pairs.
func Partition(existing, batch []model.Order) []model.PendingImport {
	pendings := make([]model.PendingImport, 0, len(batch))
	for _, in := range batch {
		p := model.PendingImport{NewOrder: in}
		for _, ex := range existing {
			if ex.NaturalKeyMatches(in) {
				p.IsDuplicate = true
				p.ExistingID = ex.ID
				break
			}
		}
		pendings = append(pendings, p)
	}
	return pendings
}

// Split separates the auto-accepted orders (no match, appended immediately)
// from the duplicates held for a decision.
func Split(pendings []model.PendingImport) (adds []model.Order, held []model.PendingImport) {
	for _, p := range pendings {
		if p.IsDuplicate {
			held = append(held, p)
		} else {
			adds = append(adds, p.NewOrder)
		}
	}
	return adds, held
}

// Resolve applies the decision to the entire held set. Keep returns every
// held order for appending as a new entry; existing rows are never merged
// or overwritten. Skip returns nothing.
func Resolve(held []model.PendingImport, d Decision) []model.Order {
	if d != Keep {
		return nil
	}
	orders := make([]model.Order, 0, len(held))
	for _, p := range held {
		orders = append(orders, p.NewOrder)
	}
	return orders
}
