package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cognicore/matreq/pkg/matreq/stock"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "inventory.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	entry := stock.Entry{
		Quantity:     decimal.RequireFromString("200.125"),
		Unit:         "kg",
		Location:     "Store A1",
		Code:         "FAB-COT-001",
		ReorderLevel: decimal.RequireFromString("40"),
	}
	if err := st.Upsert(ctx, "Cotton Fabric", entry); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	snap, err := st.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	got, ok := snap["Cotton Fabric"]
	if !ok {
		t.Fatal("Cotton Fabric missing from snapshot")
	}
	if !got.Quantity.Equal(entry.Quantity) {
		t.Errorf("quantity %s, want %s (decimal text must survive storage)", got.Quantity, entry.Quantity)
	}
	if got.Unit != "kg" || got.Location != "Store A1" || got.Code != "FAB-COT-001" {
		t.Errorf("unexpected entry %+v", got)
	}
	if !got.ReorderLevel.Equal(entry.ReorderLevel) {
		t.Errorf("reorder level %s, want 40", got.ReorderLevel)
	}
}

func TestStoreUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	if err := st.Upsert(ctx, "Chemical", stock.Entry{Quantity: decimal.NewFromInt(10), Unit: "L"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := st.Upsert(ctx, "Chemical", stock.Entry{Quantity: decimal.NewFromInt(3), Unit: "L"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	snap, err := st.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap) != 1 || !snap["Chemical"].Quantity.Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected one updated row, got %+v", snap)
	}
}

func TestStoreSeedAndCheck(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	seed := stock.Snapshot{
		"Cotton Fabric": {Quantity: decimal.NewFromInt(20), Unit: "kg"},
		"Elastic Band":  {Quantity: decimal.NewFromInt(50), Unit: "m"},
	}
	if err := st.Seed(ctx, seed); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	var src stock.Source = st
	snap, err := src.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	a := stock.Check(snap, "Cotton Fabric", decimal.NewFromInt(50), "kg")
	if !a.Shortage().Equal(decimal.NewFromInt(30)) {
		t.Errorf("shortage %s, want 30", a.Shortage())
	}
}

func TestStoreEmpty(t *testing.T) {
	snap, err := openTestStore(t).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap) != 0 {
		t.Errorf("expected empty snapshot, got %d rows", len(snap))
	}
}
