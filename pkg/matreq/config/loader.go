// Package config assembles the engine's static tables, templates and
// inventory source from files and the environment.
package config

import (
	"context"
	"fmt"

	"github.com/cognicore/matreq/pkg/matreq/compose"
	"github.com/cognicore/matreq/pkg/matreq/lexicon"
	"github.com/cognicore/matreq/pkg/matreq/stock"
	"github.com/cognicore/matreq/pkg/matreq/stock/sqlite"
)

// Loader loads all configuration files and constructs components. Empty
// paths select the built-in defaults.
type Loader struct {
	TablesDir     string
	TemplatesDir  string
	InventoryPath string // YAML inventory
	DBPath        string // SQLite inventory, preferred over InventoryPath
}

// Components holds all loaded configuration components.
type Components struct {
	Tables    *lexicon.Tables
	Composer  *compose.Composer
	Inventory stock.Source // nil when no inventory was configured
	store     *sqlite.Store
}

// Close releases the inventory database, if one was opened.
func (c *Components) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// Load reads all configuration and returns initialized components.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	comp := &Components{}

	var err error
	if l.TablesDir != "" {
		comp.Tables, err = lexicon.LoadDir(l.TablesDir)
	} else {
		comp.Tables, err = lexicon.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}

	if l.TemplatesDir != "" {
		comp.Composer, err = compose.LoadDir(l.TemplatesDir)
	} else {
		comp.Composer, err = compose.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	switch {
	case l.DBPath != "":
		store, err := sqlite.OpenSQLite(ctx, l.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open inventory db: %w", err)
		}
		comp.store = store
		comp.Inventory = store
	case l.InventoryPath != "":
		// fail early on a broken file; FileSource re-reads it per request
		if _, err := stock.LoadFile(l.InventoryPath); err != nil {
			return nil, fmt.Errorf("load inventory: %w", err)
		}
		comp.Inventory = stock.FileSource{Path: l.InventoryPath}
	}

	return comp, nil
}
