package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"novareg/internal/changelog"
	"novareg/internal/classify"
	"novareg/internal/metrics"
	"novareg/internal/model"
	"novareg/internal/reconcile"
)

// HistoryCap bounds the deletion history, most-recent-first.
const HistoryCap = 50

var ErrNotFound = errors.New("order not found")

// View selects which slice of the registry a read returns.
type View string

const (
	ViewAll     View = "all"
	ViewPending View = "pending"
	ViewLate    View = "late"
)

// Ledger owns the live order collection, the deletion history and the
// processed-file log. Every mutation runs as one discrete step under the
// lock and replaces whole values; there is no partial, field-level shared
// mutation.
type Ledger struct {
	store Store
	log   *slog.Logger
	audit changelog.Writer
	met   *metrics.Registry

	mu        sync.Mutex
	orders    []model.Order
	history   []model.Order
	processed []string
	held      []model.PendingImport
}

// NewLedger wires the ledger to its store. audit and met may be nil.
func NewLedger(store Store, log *slog.Logger, audit changelog.Writer, met *metrics.Registry) *Ledger {
	if audit == nil {
		audit = changelog.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{store: store, log: log, audit: audit, met: met}
}

// Load rehydrates all three slots. A slot that fails to parse, or parses to
// the wrong shape, resets to its empty default and is logged; it never
// fails the load. Only backend read errors propagate.
func (l *Ledger) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var orders, history []model.Order
	var processed []string
	if ok, err := l.loadSlot(SlotOrders, &orders); err != nil {
		return err
	} else if ok {
		l.orders = orders
	}
	if ok, err := l.loadSlot(SlotHistory, &history); err != nil {
		return err
	} else if ok {
		l.history = history
	}
	if ok, err := l.loadSlot(SlotFiles, &processed); err != nil {
		return err
	} else if ok {
		l.processed = processed
	}
	l.setSizeGauge()
	return nil
}

// loadSlot decodes one slot into dst. It reports false when the slot is
// absent or fails to decode; dst may then hold a partial decode and the
// caller must discard it so the slot falls back to its empty default.
func (l *Ledger) loadSlot(slot string, dst any) (bool, error) {
	raw, found, err := l.store.Get(slot)
	if err != nil {
		return false, fmt.Errorf("load slot %s: %w", slot, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		l.log.Warn("slot failed to parse, reset to empty default", "slot", slot, "error", err)
		return false, nil
	}
	return true, nil
}

// Orders returns a snapshot copy of the live registry.
func (l *Ledger) Orders() []model.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Order(nil), l.orders...)
}

// Size returns the current registry length.
func (l *Ledger) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.orders)
}

// History returns a snapshot copy of the deletion history.
func (l *Ledger) History() []model.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Order(nil), l.history...)
}

// Held returns the duplicates currently awaiting a decision.
func (l *Ledger) Held() []model.PendingImport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.PendingImport(nil), l.held...)
}

// Vendors returns the distinct non-empty vendor codes, sorted.
func (l *Ledger) Vendors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, o := range l.orders {
		if o.VendorCode == "" || seen[o.VendorCode] {
			continue
		}
		seen[o.VendorCode] = true
		out = append(out, o.VendorCode)
	}
	sort.Strings(out)
	return out
}

// Search filters the registry by free-text query, vendor and view. The
// query matches customer name, vendor code, order number or description.
func (l *Ledger) Search(query, vendor string, view View) []model.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := strings.ToLower(query)
	var out []model.Order
	for _, o := range l.orders {
		// Order numbers match case-sensitively against the lowercased
		// query on purpose; they are numeric in practice and this keeps
		// the long-standing search behavior intact.
		if q != "" &&
			!strings.Contains(strings.ToLower(o.CustomerName), q) &&
			!strings.Contains(strings.ToLower(o.VendorCode), q) &&
			!strings.Contains(o.OrderNum, q) &&
			!strings.Contains(strings.ToLower(o.Description), q) {
			continue
		}
		if vendor != "" && vendor != "all" && o.VendorCode != vendor {
			continue
		}
		switch view {
		case ViewPending:
			if classify.IsFulfilled(o.Status) {
				continue
			}
		case ViewLate:
			if !classify.IsLate(o.Status, o.ExpectedRecvDate) {
				continue
			}
		}
		out = append(out, o)
	}
	return out
}

// UpdateDescription edits the only post-import mutable field.
func (l *Ledger) UpdateDescription(id, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.orders {
		if l.orders[i].ID != id {
			continue
		}
		l.orders[i].Description = text
		if err := l.persistOrders(); err != nil {
			return err
		}
		l.emit(changelog.OpEdit, l.orders[i])
		return nil
	}
	return ErrNotFound
}

// Delete moves an order into the deletion history, most-recent-first,
// dropping the oldest entry beyond the cap.
func (l *Ledger) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.orders {
		if l.orders[i].ID != id {
			continue
		}
		deleted := l.orders[i]
		l.orders = append(l.orders[:i], l.orders[i+1:]...)
		l.history = append([]model.Order{deleted}, l.history...)
		if len(l.history) > HistoryCap {
			l.history = l.history[:HistoryCap]
		}
		if err := l.persistOrders(); err != nil {
			return err
		}
		if err := l.persistHistory(); err != nil {
			return err
		}
		if l.met != nil {
			l.met.Deletes.Inc()
		}
		l.setSizeGauge()
		l.emit(changelog.OpDelete, deleted)
		return nil
	}
	return ErrNotFound
}

// Restore reinstates an order from the deletion history at the head of the
// live registry and removes it from history.
func (l *Ledger) Restore(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.history {
		if l.history[i].ID != id {
			continue
		}
		restored := l.history[i]
		l.history = append(l.history[:i], l.history[i+1:]...)
		l.orders = append([]model.Order{restored}, l.orders...)
		if err := l.persistOrders(); err != nil {
			return err
		}
		if err := l.persistHistory(); err != nil {
			return err
		}
		if l.met != nil {
			l.met.Restores.Inc()
		}
		l.setSizeGauge()
		l.emit(changelog.OpRestore, restored)
		return nil
	}
	return ErrNotFound
}

// IsProcessed reports whether a source file name was already ingested. The
// log is a confirmation gate only, never a correctness guarantee; callers
// may always force a re-import.
func (l *Ledger) IsProcessed(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, n := range l.processed {
		if n == name {
			return true
		}
	}
	return false
}

// MarkProcessed records a source file name in the processed-file log.
func (l *Ledger) MarkProcessed(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, n := range l.processed {
		if n == name {
			return nil
		}
	}
	l.processed = append(l.processed, name)
	return l.persistSlot(SlotFiles, l.processed)
}

// ImportBatch reconciles a normalized batch against the current registry.
// Non-duplicates append immediately in batch order; duplicates replace any
// previously held set and wait for one ResolveHeld decision. Matching is
// against the pre-batch registry only.
func (l *Ledger) ImportBatch(batch []model.Order) (added, held int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pendings := reconcile.Partition(l.orders, batch)
	adds, dups := reconcile.Split(pendings)
	l.orders = append(l.orders, adds...)
	l.held = dups
	if len(adds) > 0 {
		if err := l.persistOrders(); err != nil {
			return 0, 0, err
		}
	}
	for _, o := range adds {
		l.emit(changelog.OpAdd, o)
	}
	if l.met != nil {
		l.met.ImportsTotal.Inc()
		l.met.RecordsAccepted.Add(float64(len(adds)))
		l.met.DuplicatesHeld.Add(float64(len(dups)))
	}
	l.setSizeGauge()
	return len(adds), len(dups), nil
}

// ResolveHeld applies the duplicate decision to the entire held set
// atomically. Keep appends every held order as a new entry; skip discards
// them all. Either way the held set empties.
func (l *Ledger) ResolveHeld(d reconcile.Decision) (added int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	held := l.held
	l.held = nil
	kept := reconcile.Resolve(held, d)
	if len(kept) > 0 {
		l.orders = append(l.orders, kept...)
		if err := l.persistOrders(); err != nil {
			return 0, err
		}
	}
	for _, p := range held {
		if d == reconcile.Keep {
			l.emit(changelog.OpDupKeep, p.NewOrder)
		} else {
			l.emit(changelog.OpDupSkip, p.NewOrder)
		}
	}
	if l.met != nil {
		if d == reconcile.Keep {
			l.met.DuplicatesKept.Add(float64(len(held)))
		} else {
			l.met.DuplicatesSkipped.Add(float64(len(held)))
		}
	}
	l.setSizeGauge()
	return len(kept), nil
}

// Reset clears every slot and all in-memory state.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Clear(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	l.orders = nil
	l.history = nil
	l.processed = nil
	l.held = nil
	l.setSizeGauge()
	l.emitEvent(changelog.Event{Op: changelog.OpReset, TS: changelog.NowUnix()})
	return nil
}

func (l *Ledger) persistOrders() error  { return l.persistSlot(SlotOrders, l.orders) }
func (l *Ledger) persistHistory() error { return l.persistSlot(SlotHistory, l.history) }

func (l *Ledger) persistSlot(slot string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal slot %s: %w", slot, err)
	}
	if err := l.store.Set(slot, raw); err != nil {
		return fmt.Errorf("persist slot %s: %w", slot, err)
	}
	return nil
}

func (l *Ledger) emit(op changelog.Op, o model.Order) {
	l.emitEvent(changelog.Event{
		Op:       op,
		OrderID:  o.ID,
		Vendor:   o.VendorCode,
		OrderNum: o.OrderNum,
		TS:       changelog.NowUnix(),
	})
}

// emitEvent appends to the audit feed best-effort; a feed failure never
// fails the mutation that produced it.
func (l *Ledger) emitEvent(e changelog.Event) {
	if err := l.audit.Append(e); err != nil {
		l.log.Warn("audit append failed", "op", string(e.Op), "error", err)
	}
}

func (l *Ledger) setSizeGauge() {
	if l.met != nil {
		l.met.RegistrySize.Set(float64(len(l.orders)))
	}
}
