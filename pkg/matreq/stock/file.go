package stock

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/matreq/pkg/matreq/internalerr"
)

// fileEntry is one material in an inventory YAML file:
//
//	inventory:
//	  Cotton Fabric:
//	    code: FAB-COT-001
//	    qty: 200
//	    unit: kg
//	    location: Store A1
type fileEntry struct {
	Code         string  `yaml:"code"`
	Quantity     float64 `yaml:"qty"`
	Unit         string  `yaml:"unit"`
	Location     string  `yaml:"location"`
	ReorderLevel float64 `yaml:"reorder_level"`
}

type inventoryFile struct {
	Inventory map[string]fileEntry `yaml:"inventory"`
}

// ParseYAML decodes an inventory document.
func ParseYAML(data []byte) (Snapshot, error) {
	var f inventoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}
	snap := make(Snapshot, len(f.Inventory))
	for name, e := range f.Inventory {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: inventory entry without a name", internalerr.ErrInvalidConfig)
		}
		if e.Quantity < 0 || e.ReorderLevel < 0 {
			return nil, fmt.Errorf("%w: %s: negative quantity", internalerr.ErrInvalidConfig, name)
		}
		snap[name] = Entry{
			Quantity:     decimal.NewFromFloat(e.Quantity),
			Unit:         e.Unit,
			Location:     e.Location,
			Code:         e.Code,
			ReorderLevel: decimal.NewFromFloat(e.ReorderLevel),
		}
	}
	return snap, nil
}

// LoadFile reads an inventory YAML file.
func LoadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	snap, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// FileSource re-reads an inventory YAML file for every snapshot, so edits
// to the file are picked up without a restart.
type FileSource struct {
	Path string
}

// Snapshot implements Source.
func (f FileSource) Snapshot(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(f.Path)
}
