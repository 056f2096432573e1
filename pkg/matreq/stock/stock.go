package stock

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Entry is the stock position of one material.
type Entry struct {
	Quantity     decimal.Decimal
	Unit         string
	Location     string
	Code         string
	ReorderLevel decimal.Decimal // zero when the supplier sets none
}

// Snapshot is a read-only, point-in-time view of inventory keyed by
// canonical material name. The engine never writes to it.
type Snapshot map[string]Entry

// Source supplies inventory snapshots. Implementations own freshness; the
// engine asks for a new snapshot on every request.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

type static struct {
	s Snapshot
}

// Static wraps a fixed snapshot as a Source.
func Static(s Snapshot) Source {
	return static{s: s}
}

func (st static) Snapshot(context.Context) (Snapshot, error) {
	return st.s, nil
}

// Lookup finds name in the snapshot. An exact key wins; otherwise keys are
// compared case-insensitively in sorted order.
func (s Snapshot) Lookup(name string) (Entry, bool) {
	if e, ok := s[name]; ok {
		return e, true
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, name) {
			return s[k], true
		}
	}
	return Entry{}, false
}

// Availability is the result of checking one line item against a snapshot.
// Quantities are expressed in the requested unit.
type Availability struct {
	Found        bool
	Requested    decimal.Decimal
	Available    decimal.Decimal
	Unit         string
	StockUnit    string
	Location     string
	Code         string
	UnitMismatch bool
	ReorderLevel decimal.Decimal
}

// Shortage is the unmet part of the request, never negative.
func (a Availability) Shortage() decimal.Decimal {
	return Shortage(a.Requested, a.Available)
}

// Remaining is what would be left in stock after issuing the request.
func (a Availability) Remaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, a.Available.Sub(a.Requested))
}

// Shortage returns max(0, requested - available).
func Shortage(requested, available decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, requested.Sub(available))
}

// Check looks name up in s and reports what is available in unit uom. An
// absent material has nothing available. When the snapshot keeps the
// material in another unit of the same dimension the quantity is converted;
// an incompatible unit counts as nothing available and sets UnitMismatch.
func Check(s Snapshot, name string, requested decimal.Decimal, uom string) Availability {
	a := Availability{
		Requested: requested,
		Available: decimal.Zero,
		Unit:      uom,
	}
	e, ok := s.Lookup(name)
	if !ok {
		return a
	}
	a.Found = true
	a.StockUnit = e.Unit
	a.Location = e.Location
	a.Code = e.Code

	if e.Unit == "" || uom == "" || e.Unit == uom {
		a.Available = nonNegative(e.Quantity)
		a.ReorderLevel = nonNegative(e.ReorderLevel)
		return a
	}
	qty, ok := Convert(e.Quantity, e.Unit, uom)
	if !ok {
		a.UnitMismatch = true
		return a
	}
	a.Available = nonNegative(qty)
	if lvl, ok := Convert(e.ReorderLevel, e.Unit, uom); ok {
		a.ReorderLevel = nonNegative(lvl)
	}
	return a
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
