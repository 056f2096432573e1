package extract

import (
	"regexp"

	"github.com/cognicore/matreq/pkg/matreq/lexicon"
)

// Reference is a production order reference such as PO-1001.
type Reference struct {
	ID   string
	Span lexicon.Span
}

var (
	joinedRef = regexp.MustCompile(`^po-?(\d+)$`)
	digitsRef = regexp.MustCompile(`^\d+$`)
)

// FindReference returns the first order reference in normalized tokens.
// The normalizer has already turned separators such as '#', ':' or '/'
// into spaces and split "po1001" into two tokens, so both the joined form
// (po-1001) and the split form (po 1001) are covered.
func FindReference(tokens []string) (Reference, bool) {
	for i, tok := range tokens {
		if m := joinedRef.FindStringSubmatch(tok); m != nil {
			return Reference{ID: "PO-" + m[1], Span: lexicon.Span{Start: i, End: i + 1}}, true
		}
		if tok == "po" && i+1 < len(tokens) && digitsRef.MatchString(tokens[i+1]) {
			return Reference{ID: "PO-" + tokens[i+1], Span: lexicon.Span{Start: i, End: i + 2}}, true
		}
	}
	return Reference{}, false
}
