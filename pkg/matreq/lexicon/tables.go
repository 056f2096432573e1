package lexicon

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/matreq/pkg/matreq/internalerr"
	"github.com/cognicore/matreq/pkg/matreq/lang"
)

// Keywords is a flat per-language word list.
type Keywords map[lang.Code][]string

// MarkerWords lists the words that tie a department to a direction.
// Prepositions come before the department ("to Sewing"), postpositions
// after it ("Sewing को").
type MarkerWords struct {
	Before Keywords `yaml:"before"`
	After  Keywords `yaml:"after"`
}

func (w MarkerWords) empty() bool {
	return len(w.Before) == 0 && len(w.After) == 0
}

// Markers is the compiled form of MarkerWords.
type Markers struct {
	Before *Index
	After  *Index
}

// Marks reports whether span is directly preceded by a Before word or
// directly followed by an After word.
func (m Markers) Marks(tokens []string, span Span) bool {
	if m.After != nil {
		if _, ok := m.After.LongestAt(tokens, span.End, nil); ok {
			return true
		}
	}
	if m.Before != nil {
		for n := 1; n <= m.Before.MaxLen() && n <= span.Start; n++ {
			if w, ok := m.Before.LongestAt(tokens, span.Start-n, nil); ok && w.Span.End == span.Start {
				return true
			}
		}
	}
	return false
}

// Tables holds every lookup table the engine reads. Tables are loaded once
// at startup and never mutated, so one value can be shared by any number of
// concurrent requests.
type Tables struct {
	Version      string
	Materials    *Index
	Units        *Index
	Departments  *Index
	RequestTypes *Index
	Purposes     *Index
	SKUs         *Index
	Urgency      *Index
	Conjunctions *Index
	Fillers      *Index
	Destination  Markers
	Source       Markers
}

// tableFile is the on-disk layout. Tables may be split across any number of
// YAML files in one directory; each file sets some of the keys.
type tableFile struct {
	Version      string       `yaml:"version"`
	Materials    []Entry      `yaml:"materials"`
	Units        []Entry      `yaml:"units"`
	Departments  []Entry      `yaml:"departments"`
	RequestTypes []Entry      `yaml:"request_types"`
	Purposes     []Entry      `yaml:"purposes"`
	SKUs         []Entry      `yaml:"skus"`
	Urgency      Keywords     `yaml:"urgency"`
	Conjunctions Keywords     `yaml:"conjunctions"`
	Fillers      Keywords     `yaml:"fillers"`
	Locations    locationFile `yaml:"locations"`
}

type locationFile struct {
	To   MarkerWords `yaml:"to"`
	From MarkerWords `yaml:"from"`
}

//go:embed tables/*.yaml
var embeddedTables embed.FS

var (
	defaultOnce   sync.Once
	defaultTables *Tables
	defaultErr    error
)

// Default returns the tables compiled into the binary. They are parsed on
// first use and shared afterwards.
func Default() (*Tables, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embeddedTables, "tables")
		if err != nil {
			defaultErr = err
			return
		}
		defaultTables, defaultErr = LoadFS(sub)
	})
	return defaultTables, defaultErr
}

// LoadDir loads tables from every *.yaml file in dir.
func LoadDir(dir string) (*Tables, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS loads tables from every *.yaml file at the root of fsys. Files are
// read in name order; a key set by two files is a configuration error.
func LoadFS(fsys fs.FS) (*Tables, error) {
	paths, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob tables: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no table files found", internalerr.ErrInvalidConfig)
	}
	sort.Strings(paths)

	var merged tableFile
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var f tableFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := merge(&merged, f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return assemble(merged)
}

func assemble(f tableFile) (*Tables, error) {
	if len(f.Materials) == 0 {
		return nil, fmt.Errorf("%w: material catalog is empty", internalerr.ErrInvalidConfig)
	}
	if len(f.Units) == 0 {
		return nil, fmt.Errorf("%w: unit table is empty", internalerr.ErrInvalidConfig)
	}
	if len(f.Departments) == 0 {
		return nil, fmt.Errorf("%w: department table is empty", internalerr.ErrInvalidConfig)
	}

	t := &Tables{Version: strings.TrimSpace(f.Version)}
	if t.Version == "" {
		t.Version = "unversioned"
	}

	var err error
	build := func(name string, entries []Entry) *Index {
		if err != nil {
			return nil
		}
		var ix *Index
		ix, err = NewIndex(entries)
		if err != nil {
			err = fmt.Errorf("%s: %w", name, err)
		}
		return ix
	}
	keywords := func(name string, kw Keywords) *Index {
		if err != nil {
			return nil
		}
		var ix *Index
		ix, err = newIndex([]Entry{{Canonical: name, Aliases: kw}}, false)
		if err != nil {
			err = fmt.Errorf("%s: %w", name, err)
		}
		return ix
	}

	t.Materials = build("materials", f.Materials)
	t.Units = build("units", f.Units)
	t.Departments = build("departments", f.Departments)
	t.RequestTypes = build("request_types", f.RequestTypes)
	t.Purposes = build("purposes", f.Purposes)
	t.SKUs = build("skus", f.SKUs)
	t.Urgency = keywords("urgent", f.Urgency)
	t.Conjunctions = keywords("and", f.Conjunctions)
	t.Fillers = keywords("filler", f.Fillers)
	t.Destination = Markers{
		Before: keywords("to", f.Locations.To.Before),
		After:  keywords("to", f.Locations.To.After),
	}
	t.Source = Markers{
		Before: keywords("from", f.Locations.From.Before),
		After:  keywords("from", f.Locations.From.After),
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func merge(dst *tableFile, src tableFile) error {
	setOnce := func(key string, isSet, incoming bool) error {
		if isSet && incoming {
			return fmt.Errorf("%w: %q defined more than once", internalerr.ErrInvalidConfig, key)
		}
		return nil
	}
	checks := []struct {
		key      string
		have     bool
		incoming bool
	}{
		{"version", dst.Version != "", src.Version != ""},
		{"materials", len(dst.Materials) > 0, len(src.Materials) > 0},
		{"units", len(dst.Units) > 0, len(src.Units) > 0},
		{"departments", len(dst.Departments) > 0, len(src.Departments) > 0},
		{"request_types", len(dst.RequestTypes) > 0, len(src.RequestTypes) > 0},
		{"purposes", len(dst.Purposes) > 0, len(src.Purposes) > 0},
		{"skus", len(dst.SKUs) > 0, len(src.SKUs) > 0},
		{"urgency", len(dst.Urgency) > 0, len(src.Urgency) > 0},
		{"conjunctions", len(dst.Conjunctions) > 0, len(src.Conjunctions) > 0},
		{"fillers", len(dst.Fillers) > 0, len(src.Fillers) > 0},
		{"locations.to", !dst.Locations.To.empty(), !src.Locations.To.empty()},
		{"locations.from", !dst.Locations.From.empty(), !src.Locations.From.empty()},
	}
	for _, c := range checks {
		if err := setOnce(c.key, c.have, c.incoming); err != nil {
			return err
		}
	}

	if src.Version != "" {
		dst.Version = src.Version
	}
	dst.Materials = append(dst.Materials, src.Materials...)
	dst.Units = append(dst.Units, src.Units...)
	dst.Departments = append(dst.Departments, src.Departments...)
	dst.RequestTypes = append(dst.RequestTypes, src.RequestTypes...)
	dst.Purposes = append(dst.Purposes, src.Purposes...)
	dst.SKUs = append(dst.SKUs, src.SKUs...)
	if len(src.Urgency) > 0 {
		dst.Urgency = src.Urgency
	}
	if len(src.Conjunctions) > 0 {
		dst.Conjunctions = src.Conjunctions
	}
	if len(src.Fillers) > 0 {
		dst.Fillers = src.Fillers
	}
	if !src.Locations.To.empty() {
		dst.Locations.To = src.Locations.To
	}
	if !src.Locations.From.empty() {
		dst.Locations.From = src.Locations.From
	}
	return nil
}
