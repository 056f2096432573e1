package lexicon

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/matreq/pkg/matreq/internalerr"
	"github.com/cognicore/matreq/pkg/matreq/lang"
	"github.com/cognicore/matreq/pkg/matreq/normalize"
)

// Entry is one canonical entity with its surface forms per language.
//
// The same shape serves materials, units, departments, request types,
// purposes and SKUs:
//
//	- name: Cotton Fabric
//	  code: FAB-COT-001
//	  aliases:
//	    en: [cotton, cotton fabric]
//	    hi: [कपास, सूती कपड़ा]
type Entry struct {
	Canonical string                 `yaml:"name"`
	Code      string                 `yaml:"code,omitempty"`
	Ceiling   float64                `yaml:"ceiling,omitempty"`
	Aliases   map[lang.Code][]string `yaml:"aliases"`
}

// Span is a half-open token range [Start, End).
type Span struct {
	Start int
	End   int
}

// Len returns the number of tokens covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// Match is one alias occurrence in a token sequence.
type Match struct {
	Canonical string
	Alias     string    // normalized alias text
	Lang      lang.Code // empty when the canonical name itself matched
	Span      Span
	order     int
}

// Order is the position of the matched entry in its table.
func (m Match) Order() int {
	return m.order
}

// Phrase is one searchable surface form, used for approximate matching.
type Phrase struct {
	Text      string
	Canonical string
	Lang      lang.Code
	Order     int
}

type target struct {
	entry int
	lang  lang.Code
}

// Index recognizes aliases in token sequences using greedy longest match.
// An Index is read-only once built and safe for concurrent use.
type Index struct {
	entries []Entry
	byName  map[string]int
	phrases map[string][]target
	keys    []string // sorted phrase keys, for deterministic iteration
	maxLen  int
}

// NewIndex builds an index over entries. The canonical name of each entry is
// searchable as well as its aliases. Aliases are normalized with
// normalize.Text, so they match exactly what the input normalizer produces.
func NewIndex(entries []Entry) (*Index, error) {
	return newIndex(entries, true)
}

func newIndex(entries []Entry, withCanonical bool) (*Index, error) {
	ix := &Index{
		entries: make([]Entry, len(entries)),
		byName:  make(map[string]int, len(entries)),
		phrases: make(map[string][]target),
		maxLen:  1,
	}
	copy(ix.entries, entries)

	for i, e := range ix.entries {
		name := strings.TrimSpace(e.Canonical)
		if name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", internalerr.ErrInvalidConfig, i)
		}
		if _, dup := ix.byName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %q", internalerr.ErrInvalidConfig, name)
		}
		ix.byName[name] = i

		if withCanonical {
			if err := ix.add(name, i, ""); err != nil {
				return nil, err
			}
		}
		// iterate languages in a fixed order so conflicts report stably
		for _, code := range sortedCodes(e.Aliases) {
			if !lang.IsSupported(code) {
				return nil, fmt.Errorf("%w: entry %q: unsupported language %q", internalerr.ErrInvalidConfig, name, code)
			}
			for _, alias := range e.Aliases[code] {
				if err := ix.add(alias, i, code); err != nil {
					return nil, err
				}
			}
		}
	}

	ix.keys = make([]string, 0, len(ix.phrases))
	for k := range ix.phrases {
		ix.keys = append(ix.keys, k)
	}
	sort.Strings(ix.keys)
	return ix, nil
}

func (ix *Index) add(surface string, entry int, code lang.Code) error {
	key := normalize.Text(surface)
	if key == "" {
		return nil
	}
	targets := ix.phrases[key]
	for _, t := range targets {
		if t.entry != entry {
			return fmt.Errorf("%w: alias %q maps to both %q and %q", internalerr.ErrInvalidConfig,
				surface, ix.entries[t.entry].Canonical, ix.entries[entry].Canonical)
		}
		if t.lang == code {
			return nil
		}
	}
	ix.phrases[key] = append(targets, target{entry: entry, lang: code})
	if n := len(normalize.Tokens(key)); n > ix.maxLen {
		ix.maxLen = n
	}
	return nil
}

// Best returns the single best alias match in tokens. Longer aliases win;
// ties go to the preferred language, then the earliest position, then the
// entry listed first. Tokens flagged in mask are never part of a match.
func (ix *Index) Best(tokens []string, prefer lang.Code, mask []bool) (Match, bool) {
	var best Match
	found := false
	for start := range tokens {
		m, ok := ix.longestAt(tokens, start, prefer, mask)
		if !ok {
			continue
		}
		if !found || better(m, best, prefer) {
			best = m
			found = true
		}
	}
	return best, found
}

// All returns non-overlapping matches scanning left to right, taking the
// longest alias at each position.
func (ix *Index) All(tokens []string, mask []bool) []Match {
	var out []Match
	for i := 0; i < len(tokens); {
		m, ok := ix.longestAt(tokens, i, "", mask)
		if !ok {
			i++
			continue
		}
		out = append(out, m)
		i = m.Span.End
	}
	return out
}

// First returns the match whose entry is listed first in the table,
// regardless of where it occurs in the text.
func (ix *Index) First(tokens []string, mask []bool) (Match, bool) {
	matches := ix.All(tokens, mask)
	if len(matches) == 0 {
		return Match{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.order < best.order {
			best = m
		}
	}
	return best, true
}

// LongestAt returns the longest match starting exactly at start.
func (ix *Index) LongestAt(tokens []string, start int, mask []bool) (Match, bool) {
	return ix.longestAt(tokens, start, "", mask)
}

func (ix *Index) longestAt(tokens []string, start int, prefer lang.Code, mask []bool) (Match, bool) {
	if start < 0 || start >= len(tokens) || masked(mask, start) {
		return Match{}, false
	}
	limit := ix.maxLen
	if remaining := len(tokens) - start; limit > remaining {
		limit = remaining
	}
	// never extend a phrase over a masked token
	for n := 1; n < limit; n++ {
		if masked(mask, start+n) {
			limit = n
			break
		}
	}
	for n := limit; n >= 1; n-- {
		key := strings.Join(tokens[start:start+n], " ")
		targets, ok := ix.phrases[key]
		if !ok {
			continue
		}
		t := pick(targets, prefer)
		return Match{
			Canonical: ix.entries[t.entry].Canonical,
			Alias:     key,
			Lang:      t.lang,
			Span:      Span{Start: start, End: start + n},
			order:     t.entry,
		}, true
	}
	return Match{}, false
}

// Entry returns the entry with the given canonical name.
func (ix *Index) Entry(canonical string) (Entry, bool) {
	i, ok := ix.byName[canonical]
	if !ok {
		return Entry{}, false
	}
	return ix.entries[i], true
}

// Phrases returns every searchable surface form in a stable order.
func (ix *Index) Phrases() []Phrase {
	out := make([]Phrase, 0, len(ix.keys))
	for _, k := range ix.keys {
		t := ix.phrases[k][0]
		out = append(out, Phrase{
			Text:      k,
			Canonical: ix.entries[t.entry].Canonical,
			Lang:      t.lang,
			Order:     t.entry,
		})
	}
	return out
}

// MaxLen is the token length of the longest phrase.
func (ix *Index) MaxLen() int {
	return ix.maxLen
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

func better(a, b Match, prefer lang.Code) bool {
	la, lb := utf8.RuneCountInString(a.Alias), utf8.RuneCountInString(b.Alias)
	if la != lb {
		return la > lb
	}
	if prefer != "" && (a.Lang == prefer) != (b.Lang == prefer) {
		return a.Lang == prefer
	}
	if a.Span.Start != b.Span.Start {
		return a.Span.Start < b.Span.Start
	}
	return a.order < b.order
}

func pick(targets []target, prefer lang.Code) target {
	if prefer != "" {
		for _, t := range targets {
			if t.lang == prefer {
				return t
			}
		}
	}
	return targets[0]
}

func masked(mask []bool, i int) bool {
	return i < len(mask) && mask[i]
}

func sortedCodes(m map[lang.Code][]string) []lang.Code {
	codes := make([]lang.Code, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
