package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cognicore/matreq/pkg/matreq/lexicon"
)

// Quantity is a number paired with a canonical unit.
type Quantity struct {
	Value decimal.Decimal
	Unit  string
	Span  lexicon.Span
}

var (
	plainNumber   = regexp.MustCompile(`^\d+(\.\d+)?$`)
	westernGroups = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)
	indianGroups  = regexp.MustCompile(`^\d{1,2}(,\d{2})*,\d{3}(\.\d+)?$`) // 1,50,000
	decimalComma  = regexp.MustCompile(`^\d+,\d{1,2}$`)                   // 2,5
)

// ParseNumber reads a numeric token. Thousands separators in western and
// Indian grouping are accepted, as is a decimal comma with one or two
// fraction digits.
func ParseNumber(tok string) (decimal.Decimal, bool) {
	var s string
	switch {
	case plainNumber.MatchString(tok):
		s = tok
	case westernGroups.MatchString(tok), indianGroups.MatchString(tok):
		s = strings.ReplaceAll(tok, ",", "")
	case decimalComma.MatchString(tok):
		s = strings.Replace(tok, ",", ".", 1)
	default:
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// FindQuantity returns the first number/unit pair in tokens. Pairs are
// ordered by where they start; at one position "<number> <unit>" is tried
// before "<unit> <number>". Masked tokens are skipped.
func FindQuantity(tokens []string, units *lexicon.Index, mask []bool) (Quantity, bool) {
	for i := range tokens {
		if isMasked(mask, i) {
			continue
		}
		if v, ok := ParseNumber(tokens[i]); ok {
			if u, ok := units.LongestAt(tokens, i+1, mask); ok {
				return Quantity{Value: v, Unit: u.Canonical, Span: lexicon.Span{Start: i, End: u.Span.End}}, true
			}
		}
		if u, ok := units.LongestAt(tokens, i, mask); ok {
			j := u.Span.End
			if j < len(tokens) && !isMasked(mask, j) {
				if v, ok := ParseNumber(tokens[j]); ok {
					return Quantity{Value: v, Unit: u.Canonical, Span: lexicon.Span{Start: i, End: j + 1}}, true
				}
			}
		}
	}
	return Quantity{}, false
}

func isMasked(mask []bool, i int) bool {
	return i < len(mask) && mask[i]
}
