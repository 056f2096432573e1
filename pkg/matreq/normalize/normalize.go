package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// scripts recognised for boundary splitting. A change of script between two
// letters marks a word boundary, which code-switched input often omits.
var scripts = []*unicode.RangeTable{
	unicode.Latin,
	unicode.Devanagari,
	unicode.Gujarati,
	unicode.Gurmukhi,
	unicode.Kannada,
	unicode.Tamil,
	unicode.Telugu,
	unicode.Bengali,
	unicode.Malayalam,
	unicode.Oriya,
}

// zero code points of the native decimal digit blocks.
var nativeZeros = []rune{0x0966, 0x09E6, 0x0A66, 0x0AE6, 0x0B66, 0x0BE6, 0x0C66, 0x0CE6, 0x0D66}

type class int

const (
	classNone class = iota
	classLetter
	classDigit
	classJoin // '.' or ',' inside a number, '-' inside a word
)

// Text normalizes raw operator input for matching: markup is stripped,
// compatibility forms folded, Latin diacritics removed, everything is
// lowercased and punctuation noise becomes single spaces. Indic combining
// marks are kept, and both scripts of a code-switched sentence survive.
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	s := StripMarkup(raw)
	s = norm.NFKC.String(s)
	s = foldLatin(s)
	return clean(s)
}

// Tokens splits normalized text into tokens.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// foldLatin removes combining marks that sit on Latin letters (mètre -> metre)
// and leaves marks on every other script alone, since Indic vowel signs are
// combining marks too.
func foldLatin(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	latinBase := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			if latinBase {
				continue
			}
			b.WriteRune(r)
			continue
		}
		latinBase = unicode.Is(unicode.Latin, r)
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

func clean(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	prev := classNone
	prevScript := -1
	pendingSpace := false

	emit := func(r rune) {
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}

	for i := 0; i < len(rs); i++ {
		r := unicode.ToLower(asciiDigit(rs[i]))
		if unicode.Is(unicode.Cf, r) {
			// zero-width joiners and friends carry no matching value
			continue
		}
		switch {
		case r >= '0' && r <= '9':
			if prev == classLetter {
				pendingSpace = true
			}
			emit(r)
			prev = classDigit
		case unicode.IsLetter(r):
			sc := scriptOf(r)
			if prev == classDigit || (prev == classLetter && sc != prevScript && sc >= 0 && prevScript >= 0) {
				pendingSpace = true
			}
			emit(r)
			prev = classLetter
			prevScript = sc
		case unicode.IsMark(r):
			if prev == classLetter {
				emit(r)
			}
		case (r == '.' || r == ',') && prev == classDigit && nextIsDigit(rs, i):
			emit(r)
			prev = classJoin
		case r == '-' && (prev == classLetter || prev == classDigit) && nextJoins(rs, i, prev):
			emit(r)
			prev = classJoin
		default:
			pendingSpace = true
			prev = classNone
			prevScript = -1
		}
	}
	return b.String()
}

func nextIsDigit(rs []rune, i int) bool {
	if i+1 >= len(rs) {
		return false
	}
	r := asciiDigit(rs[i+1])
	return r >= '0' && r <= '9'
}

// nextJoins decides whether a hyphen stays inside a token. Hyphens survive
// in words (t-shirt), codes (ts-001, po-1001) and digit runs, but not between
// a number and the unit that follows it (20-kg).
func nextJoins(rs []rune, i int, prev class) bool {
	if i+1 >= len(rs) {
		return false
	}
	next := asciiDigit(rs[i+1])
	if next >= '0' && next <= '9' {
		return true
	}
	return unicode.IsLetter(next) && prev == classLetter
}

func asciiDigit(r rune) rune {
	if r < 0x0966 {
		return r
	}
	for _, zero := range nativeZeros {
		if r >= zero && r <= zero+9 {
			return '0' + (r - zero)
		}
	}
	return r
}

func scriptOf(r rune) int {
	for i, tbl := range scripts {
		if unicode.Is(tbl, r) {
			return i
		}
	}
	return -1
}
