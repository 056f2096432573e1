package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/cognicore/matreq/pkg/matreq/stock"
)

// Store reads inventory snapshots from a SQLite table. The engine only ever
// reads; Upsert exists for seeding and for the system that owns the stock.
type Store struct {
	db *sql.DB
}

var _ stock.Source = (*Store)(nil)

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// inventory table if needed.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL lets snapshot reads run alongside the writer that owns stock
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS inventory (
	name TEXT PRIMARY KEY,
	code TEXT NOT NULL DEFAULT '',
	quantity TEXT NOT NULL,
	unit TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	reorder_level TEXT NOT NULL DEFAULT '0',
	updated_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

const upsertInventory = `
INSERT INTO inventory (name, code, quantity, unit, location, reorder_level, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	code=excluded.code,
	quantity=excluded.quantity,
	unit=excluded.unit,
	location=excluded.location,
	reorder_level=excluded.reorder_level,
	updated_at=excluded.updated_at;
`

// Upsert inserts or replaces the stock position of one material.
// Quantities are stored as decimal text so no precision is lost.
func (s *Store) Upsert(ctx context.Context, name string, e stock.Entry) error {
	_, err := s.db.ExecContext(ctx, upsertInventory,
		name,
		e.Code,
		e.Quantity.String(),
		e.Unit,
		e.Location,
		e.ReorderLevel.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Snapshot reads the whole inventory table in one query.
func (s *Store) Snapshot(ctx context.Context) (stock.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, code, quantity, unit, location, reorder_level
FROM inventory
ORDER BY name;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := make(stock.Snapshot)
	for rows.Next() {
		var name, code, qty, unit, location, reorder string
		if err := rows.Scan(&name, &code, &qty, &unit, &location, &reorder); err != nil {
			return nil, err
		}
		q, err := decimal.NewFromString(qty)
		if err != nil {
			return nil, fmt.Errorf("inventory %s: quantity %q: %w", name, qty, err)
		}
		r, err := decimal.NewFromString(reorder)
		if err != nil {
			return nil, fmt.Errorf("inventory %s: reorder level %q: %w", name, reorder, err)
		}
		snap[name] = stock.Entry{
			Quantity:     q,
			Unit:         unit,
			Location:     location,
			Code:         code,
			ReorderLevel: r,
		}
	}
	return snap, rows.Err()
}

// Seed upserts every entry of snap in one transaction.
func (s *Store) Seed(ctx context.Context, snap stock.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for name, e := range snap {
		if _, err := tx.ExecContext(ctx, upsertInventory,
			name, e.Code, e.Quantity.String(), e.Unit, e.Location, e.ReorderLevel.String(), now,
		); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
	}
	return tx.Commit()
}
