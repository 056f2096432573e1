package lexicon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/matreq/pkg/matreq/internalerr"
	"github.com/cognicore/matreq/pkg/matreq/lang"
)

func TestDefaultTables(t *testing.T) {
	tables, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if tables.Version == "" || tables.Version == "unversioned" {
		t.Errorf("embedded tables should carry a version, got %q", tables.Version)
	}
	if tables.Materials.Len() == 0 || tables.Units.Len() == 0 || tables.Departments.Len() == 0 {
		t.Fatal("core tables must not be empty")
	}

	again, _ := Default()
	if again != tables {
		t.Error("Default should return the shared instance")
	}

	wantDepts := []string{"Cutting", "Sewing", "Finishing", "QC", "Packing", "Maintenance", "Store"}
	for _, d := range wantDepts {
		if _, ok := tables.Departments.Entry(d); !ok {
			t.Errorf("department %s missing", d)
		}
	}
}

func TestDefaultTablesCoverEveryLanguage(t *testing.T) {
	tables, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	cotton, ok := tables.Materials.Entry("Cotton Fabric")
	if !ok {
		t.Fatal("Cotton Fabric missing from catalog")
	}
	kg, _ := tables.Units.Entry("kg")
	for _, code := range lang.Supported() {
		if len(cotton.Aliases[code]) == 0 {
			t.Errorf("Cotton Fabric has no %s alias", code)
		}
		if len(kg.Aliases[code]) == 0 {
			t.Errorf("kg has no %s alias", code)
		}
	}
}

func TestDefaultUnitsResolveSynonyms(t *testing.T) {
	tables, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	cases := map[string]string{
		"kg":     "kg",
		"kilo":   "kg",
		"किलो":   "kg",
		"metres": "m",
		"मीटर":   "m",
		"litres": "L",
		"लीटर":   "L",
		"units":  "pcs",
		"नग":     "pcs",
	}
	for surface, want := range cases {
		m, ok := tables.Units.Best(toks(surface), "", nil)
		if !ok || m.Canonical != want {
			t.Errorf("%q: expected %s, got %+v ok=%v", surface, want, m, ok)
		}
	}
}

func writeTable(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const minimalTables = `
version: "test-1"
materials:
  - name: Rib Fabric
    aliases:
      en: [rib]
units:
  - name: kg
    aliases:
      en: [kilo]
departments:
  - name: Cutting
urgency:
  en: [urgent]
`

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "all.yaml", minimalTables)

	tables, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if tables.Version != "test-1" {
		t.Errorf("expected version test-1, got %q", tables.Version)
	}
	if tables.SKUs.Len() != 0 {
		t.Errorf("absent table should load empty, got %d entries", tables.SKUs.Len())
	}
	if _, ok := tables.Urgency.Best([]string{"urgent"}, "", nil); !ok {
		t.Error("urgency keyword not indexed")
	}
}

func TestLoadDirRejectsDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "a.yaml", minimalTables)
	writeTable(t, dir, "b.yaml", "units:\n  - name: g\n")

	_, err := LoadDir(dir)
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadDirRejectsConflictingAliases(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "all.yaml", `
materials:
  - name: Rib Fabric
    aliases:
      en: [rib]
  - name: Ribbon
    aliases:
      en: [RIB]
units:
  - name: kg
departments:
  - name: Cutting
`)
	_, err := LoadDir(dir)
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadDirRequiresCoreTables(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "all.yaml", "units:\n  - name: kg\n")
	if _, err := LoadDir(dir); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	if _, err := LoadDir(t.TempDir()); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("empty dir: expected ErrInvalidConfig, got %v", err)
	}
	if _, err := LoadDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestMarkers(t *testing.T) {
	tables, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	cases := []struct {
		text     string
		span     Span
		to, from bool
	}{
		{"to sewing", Span{Start: 1, End: 2}, true, false},
		{"from cutting to sewing", Span{Start: 1, End: 2}, false, true},
		{"सिलाई के लिए धागा", Span{Start: 0, End: 1}, true, false},
		{"कटिंग से", Span{Start: 0, End: 1}, false, true},
		{"cutting", Span{Start: 0, End: 1}, false, false},
	}
	for _, tc := range cases {
		tokens := toks(tc.text)
		if got := tables.Destination.Marks(tokens, tc.span); got != tc.to {
			t.Errorf("%q: destination=%v, want %v", tc.text, got, tc.to)
		}
		if got := tables.Source.Marks(tokens, tc.span); got != tc.from {
			t.Errorf("%q: source=%v, want %v", tc.text, got, tc.from)
		}
	}
}

func TestLoadDirWithoutMarkers(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "all.yaml", minimalTables)
	tables, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if tables.Destination.Marks([]string{"to", "cutting"}, Span{Start: 1, End: 2}) {
		t.Error("tables without locations should mark nothing")
	}
}
