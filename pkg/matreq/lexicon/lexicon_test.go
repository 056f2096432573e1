package lexicon

import (
	"errors"
	"testing"

	"github.com/cognicore/matreq/pkg/matreq/internalerr"
	"github.com/cognicore/matreq/pkg/matreq/lang"
	"github.com/cognicore/matreq/pkg/matreq/normalize"
)

func threadIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := NewIndex([]Entry{
		{Canonical: "Thread (White)", Aliases: map[lang.Code][]string{
			lang.English: {"thread", "white thread"},
			lang.Hindi:   {"धागा"},
		}},
		{Canonical: "Thread (Black)", Aliases: map[lang.Code][]string{
			lang.English: {"black thread"},
			lang.Hindi:   {"काला धागा"},
		}},
		{Canonical: "Cotton Fabric", Aliases: map[lang.Code][]string{
			lang.English: {"cotton"},
			lang.Hindi:   {"कपास"},
		}},
	})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return ix
}

func toks(s string) []string {
	return normalize.Tokens(normalize.Text(s))
}

func TestBestLongestAliasWins(t *testing.T) {
	ix := threadIndex(t)

	m, ok := ix.Best(toks("need 2 cones black thread"), lang.English, nil)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Canonical != "Thread (Black)" {
		t.Errorf("expected Thread (Black), got %s (alias %q)", m.Canonical, m.Alias)
	}
	if m.Span != (Span{Start: 3, End: 5}) {
		t.Errorf("unexpected span %+v", m.Span)
	}
}

func TestBestIsTokenBounded(t *testing.T) {
	ix := threadIndex(t)
	if m, ok := ix.Best(toks("threaded needle"), lang.English, nil); ok {
		t.Errorf("thread must not match inside threaded, got %+v", m)
	}
}

func TestBestCanonicalName(t *testing.T) {
	ix := threadIndex(t)
	m, ok := ix.Best(toks("Cotton Fabric for cutting"), lang.English, nil)
	if !ok {
		t.Fatal("expected a match")
	}
	// "cotton" alias matches too; the canonical "cotton fabric" is longer
	if m.Canonical != "Cotton Fabric" || m.Alias != "cotton fabric" {
		t.Errorf("expected canonical phrase match, got %+v", m)
	}
	if m.Lang != "" {
		t.Errorf("canonical name match should carry no language, got %q", m.Lang)
	}
}

func TestBestCodeSwitched(t *testing.T) {
	ix := threadIndex(t)
	m, ok := ix.Best(toks("Cutting को 20 kg कपास भेज दो"), lang.Hindi, nil)
	if !ok || m.Canonical != "Cotton Fabric" {
		t.Fatalf("expected Cotton Fabric, got %+v ok=%v", m, ok)
	}
	if m.Lang != lang.Hindi {
		t.Errorf("expected hi alias, got %q", m.Lang)
	}
}

func TestBestTieBreaksOnPosition(t *testing.T) {
	ix := threadIndex(t)
	// equal alias lengths, neither in the preferred language
	m, ok := ix.Best(toks("cotton thread"), lang.Tamil, nil)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Canonical != "Cotton Fabric" {
		t.Errorf("earliest of equal-length matches should win, got %s", m.Canonical)
	}
}

func TestMaskedTokensNeverMatch(t *testing.T) {
	ix := threadIndex(t)
	tokens := toks("black thread and cotton")
	mask := []bool{true, false, false, false}

	m, ok := ix.Best(tokens, lang.English, mask)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Canonical == "Thread (Black)" {
		t.Error("masked token must not be part of a match")
	}
	// "thread" (6 runes) and "cotton" (6 runes) tie; earliest wins
	if m.Canonical != "Thread (White)" {
		t.Errorf("expected Thread (White), got %s", m.Canonical)
	}
}

func TestAllNonOverlapping(t *testing.T) {
	ix := threadIndex(t)
	matches := ix.All(toks("white thread, black thread and cotton"), nil)
	want := []string{"Thread (White)", "Thread (Black)", "Cotton Fabric"}
	if len(matches) != len(want) {
		t.Fatalf("expected %d matches, got %+v", len(want), matches)
	}
	for i, m := range matches {
		if m.Canonical != want[i] {
			t.Errorf("match %d: expected %s, got %s", i, want[i], m.Canonical)
		}
	}
}

func TestFirstUsesTableOrder(t *testing.T) {
	ix := threadIndex(t)
	m, ok := ix.First(toks("cotton then thread"), nil)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Canonical != "Thread (White)" || m.Order() != 0 {
		t.Errorf("expected first table entry, got %+v", m)
	}
}

func TestNewIndexRejectsConflicts(t *testing.T) {
	cases := []struct {
		name    string
		entries []Entry
	}{
		{"empty name", []Entry{{Canonical: " "}}},
		{"duplicate", []Entry{{Canonical: "Rib"}, {Canonical: "Rib"}}},
		{"unsupported language", []Entry{{Canonical: "Rib", Aliases: map[lang.Code][]string{"fr": {"côte"}}}}},
		{"alias conflict", []Entry{
			{Canonical: "Cotton Fabric", Aliases: map[lang.Code][]string{lang.English: {"cotton"}}},
			{Canonical: "Cotton Thread", Aliases: map[lang.Code][]string{lang.English: {"Cotton"}}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewIndex(tc.entries)
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSharedAliasAcrossLanguages(t *testing.T) {
	ix, err := NewIndex([]Entry{{Canonical: "Thread (White)", Aliases: map[lang.Code][]string{
		lang.Hindi:   {"धागा"},
		lang.Marathi: {"धागा"},
	}}})
	if err != nil {
		t.Fatalf("same alias for one entry in two languages should load: %v", err)
	}
	m, ok := ix.Best([]string{"धागा"}, lang.Marathi, nil)
	if !ok || m.Lang != lang.Marathi {
		t.Errorf("expected the preferred language to be reported, got %+v", m)
	}
}

func TestPhrasesStable(t *testing.T) {
	ix := threadIndex(t)
	a, b := ix.Phrases(), ix.Phrases()
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("unexpected phrase lists: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("phrase order changed at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
	if ix.MaxLen() != 2 {
		t.Errorf("expected max phrase length 2, got %d", ix.MaxLen())
	}
}
